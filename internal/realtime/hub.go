// Package realtime implements the websocket chat channel: a hub that owns the
// connected clients and a broadcaster that appends to the chat history and
// fans the stored message out to every client.
package realtime

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/edgard/construfacil/internal/store"
)

// ErrHubClosed is returned when broadcasting after the hub has stopped.
var ErrHubClosed = errors.New("realtime hub closed")

// SnapshotFunc returns the chat history replayed to a newly connected client
// and the append sequence number it covers.
type SnapshotFunc func() ([]store.ChatMessage, uint64)

// outbound is a broadcast frame. A non-zero seq is the append sequence of
// the message it carries.
type outbound struct {
	seq   uint64
	frame []byte
}

type unicast struct {
	client *Client
	frame  []byte
}

// Hub tracks connected clients. The client set is owned by the Run goroutine;
// every other method communicates with it over channels.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	direct     chan unicast
	done       chan struct{}
	count      chan chan int

	snapshot SnapshotFunc
	log      *slog.Logger
}

// NewHub creates a hub. snapshot may be nil, in which case new clients get an
// empty history.
func NewHub(snapshot SnapshotFunc, log *slog.Logger) *Hub {
	if snapshot == nil {
		snapshot = func() ([]store.ChatMessage, uint64) { return nil, 0 }
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 256),
		direct:     make(chan unicast, 64),
		done:       make(chan struct{}),
		count:      make(chan chan int),
		snapshot:   snapshot,
		log:        log.With("component", "realtime_hub"),
	}
}

// Run processes hub events until ctx is cancelled, then disconnects every
// client. It always returns nil so it can run inside an errgroup.
func (h *Hub) Run(ctx context.Context) error {
	h.log.InfoContext(ctx, "Realtime hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, c := range h.clients {
				delete(h.clients, id)
				close(c.send)
			}
			h.log.InfoContext(ctx, "Realtime hub stopped")
			return nil

		case c := <-h.register:
			h.clients[c.ID] = c
			h.log.DebugContext(ctx, "Client registered", "client_id", c.ID, "clients", len(h.clients))
			h.sendHistory(ctx, c)

		case c := <-h.unregister:
			if _, ok := h.clients[c.ID]; ok {
				delete(h.clients, c.ID)
				close(c.send)
				h.log.DebugContext(ctx, "Client unregistered", "client_id", c.ID, "clients", len(h.clients))
			}

		case out := <-h.broadcast:
			for id, c := range h.clients {
				// Already part of the history this client received.
				if out.seq != 0 && out.seq <= c.historySeq {
					continue
				}
				select {
				case c.send <- out.frame:
				default:
					delete(h.clients, id)
					close(c.send)
					h.log.WarnContext(ctx, "Dropping slow client", "client_id", id)
				}
			}

		case u := <-h.direct:
			if _, ok := h.clients[u.client.ID]; !ok {
				continue
			}
			select {
			case u.client.send <- u.frame:
			default:
				delete(h.clients, u.client.ID)
				close(u.client.send)
				h.log.WarnContext(ctx, "Dropping slow client", "client_id", u.client.ID)
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

func (h *Hub) sendHistory(ctx context.Context, c *Client) {
	history, seq := h.snapshot()
	c.historySeq = seq
	if history == nil {
		history = []store.ChatMessage{}
	}
	frame, err := Encode(EventChatHistory, history)
	if err != nil {
		h.log.ErrorContext(ctx, "Failed to encode chat history", "client_id", c.ID, "error", err)
		return
	}
	select {
	case c.send <- frame:
	default:
		h.log.WarnContext(ctx, "Client buffer full, history not sent", "client_id", c.ID)
	}
}

// Register adds c to the hub. It reports false when the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c from the hub. It is safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues frame for every registered client. Frames are delivered
// in the order Broadcast is called. seq is the append sequence of the chat
// message in frame, or 0; a client whose connect-time history already covers
// seq does not get the frame again.
func (h *Hub) Broadcast(ctx context.Context, seq uint64, frame []byte) error {
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}

	select {
	case h.broadcast <- outbound{seq: seq, frame: frame}:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendTo queues frame for a single client.
func (h *Hub) SendTo(c *Client, frame []byte) {
	select {
	case h.direct <- unicast{client: c, frame: frame}:
	case <-h.done:
	}
}

// ClientCount returns the number of registered clients, or 0 once the hub
// has stopped.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

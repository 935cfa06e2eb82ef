package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/edgard/construfacil/internal/config"
)

// FrameHandler processes one inbound frame from c.
type FrameHandler func(ctx context.Context, c *Client, frame []byte)

// Client is one websocket connection registered with a Hub.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	cfg  config.ChatConfig
	log  *slog.Logger

	// historySeq is the append sequence covered by the history sent on
	// connect. Only the hub goroutine touches it.
	historySeq uint64
}

// NewClient wraps conn. The client is not registered until Serve is called.
func NewClient(hub *Hub, conn *websocket.Conn, cfg config.ChatConfig) *Client {
	id := uuid.New().String()
	cfg = withTransportDefaults(cfg)
	return &Client{
		ID:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, cfg.SendBuffer),
		cfg:  cfg,
		log:  hub.log.With("client_id", id),
	}
}

func withTransportDefaults(cfg config.ChatConfig) config.ChatConfig {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = config.DefaultChatSendBuffer
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = config.DefaultChatWriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = config.DefaultChatPongWait
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = config.DefaultChatMaxMessageSize
	}
	return cfg
}

// Serve registers the client and starts its pumps. It returns immediately;
// the pumps stop when the connection fails or the hub shuts down.
func (c *Client) Serve(ctx context.Context, onFrame FrameHandler) {
	if !c.hub.Register(c) {
		c.log.WarnContext(ctx, "Hub stopped, rejecting connection")
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(c.cfg.WriteWait))
		_ = c.conn.Close()
		return
	}

	go c.writePump(ctx)
	go c.readPump(ctx, onFrame)
}

// Send queues frame for this client only.
func (c *Client) Send(frame []byte) {
	c.hub.SendTo(c, frame)
}

func (c *Client) readPump(ctx context.Context, onFrame FrameHandler) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.WarnContext(ctx, "Websocket read error", "error", err)
			} else {
				c.log.DebugContext(ctx, "Websocket closed", "error", err)
			}
			return
		}
		onFrame(ctx, c, frame)
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.DebugContext(ctx, "Websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.DebugContext(ctx, "Websocket ping failed", "error", err)
				return
			}
		}
	}
}

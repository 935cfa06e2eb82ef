package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/edgard/construfacil/internal/logger"
	"github.com/edgard/construfacil/internal/store"
)

// Broadcaster appends inbound chat messages to the history and fans them out
// through the hub.
type Broadcaster struct {
	// mu spans append and enqueue so broadcast order equals append order.
	mu      sync.Mutex
	history *store.ChatHistory
	hub     *Hub
}

// NewBroadcaster creates a Broadcaster over history and hub.
func NewBroadcaster(history *store.ChatHistory, hub *Hub) *Broadcaster {
	return &Broadcaster{history: history, hub: hub}
}

// Send stores msg and queues a receive_message frame for every client,
// the sender included. The stored message is returned even when the hub
// could not take the frame.
func (b *Broadcaster) Send(ctx context.Context, msg store.NewChatMessage) (store.ChatMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored, seq := b.history.AppendSeq(msg)

	frame, err := Encode(EventReceiveMessage, stored)
	if err != nil {
		return stored, err
	}
	if err := b.hub.Broadcast(ctx, seq, frame); err != nil {
		return stored, fmt.Errorf("failed to broadcast message %s: %w", stored.ID, err)
	}
	return stored, nil
}

// HandleFrame is the FrameHandler for chat clients.
func (b *Broadcaster) HandleFrame(ctx context.Context, c *Client, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.log.DebugContext(ctx, "Invalid websocket frame", "error", err)
		c.Send(errorFrame("Formato de mensagem inválido"))
		return
	}

	switch env.Event {
	case EventSendMessage:
		var msg store.NewChatMessage
		if len(env.Data) == 0 || json.Unmarshal(env.Data, &msg) != nil {
			c.Send(errorFrame("Mensagem inválida"))
			return
		}

		stored, err := b.Send(ctx, msg)
		if err != nil {
			c.log.WarnContext(ctx, "Chat message stored but not broadcast", "message_id", stored.ID, "error", err)
			return
		}
		c.log.DebugContext(ctx, "Chat message broadcast",
			"message_id", stored.ID, "nickname", stored.Nickname, "content", logger.Preview(stored.Content))

	default:
		c.Send(errorFrame("Evento desconhecido: " + env.Event))
	}
}

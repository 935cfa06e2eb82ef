package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/edgard/construfacil/internal/config"
	"github.com/edgard/construfacil/internal/store"
)

func TestHub_DropsSlowClient(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Run(ctx) }()

	// Nothing drains this client, so the history frame fills its buffer.
	slow := NewClient(hub, nil, config.ChatConfig{SendBuffer: 1})
	if !hub.Register(slow) {
		t.Fatal("Register() = false on a running hub")
	}
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("ClientCount() = %d, want 1", got)
	}

	if err := hub.Broadcast(ctx, 0, []byte(`{"event":"receive_message"}`)); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, ok := <-slow.send; !ok {
		t.Fatal("expected the buffered history frame before close")
	}
	if _, ok := <-slow.send; ok {
		t.Fatal("send channel still open after drop")
	}
}

func TestWithTransportDefaults(t *testing.T) {
	t.Parallel()

	cfg := withTransportDefaults(config.ChatConfig{})
	if cfg.SendBuffer != config.DefaultChatSendBuffer ||
		cfg.WriteWait != config.DefaultChatWriteWait ||
		cfg.PongWait != config.DefaultChatPongWait ||
		cfg.MaxMessageSize != config.DefaultChatMaxMessageSize {
		t.Errorf("withTransportDefaults() = %+v", cfg)
	}
	if cfg.PingInterval() >= cfg.PongWait {
		t.Errorf("PingInterval() = %v, want less than PongWait %v", cfg.PingInterval(), cfg.PongWait)
	}
}

func TestHub_QueuedBroadcastsNotRepeatedAfterHistory(t *testing.T) {
	t.Parallel()

	history := store.NewChatHistory(store.ChatOptions{})
	hub := NewHub(history.SnapshotSeq, nil)
	b := NewBroadcaster(history, hub)

	// The hub is not running yet, so these frames stay queued.
	const queued = 50
	for i := 0; i < queued; i++ {
		if _, err := b.Send(context.Background(), store.NewChatMessage{Content: strconv.Itoa(i)}); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Run(ctx) }()

	c := NewClient(hub, nil, config.ChatConfig{SendBuffer: 2 * queued})
	if !hub.Register(c) {
		t.Fatal("Register() = false on a running hub")
	}

	last, err := b.Send(context.Background(), store.NewChatMessage{Content: "depois"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	var received []store.ChatMessage
	var historyLen int
	for {
		var frame []byte
		select {
		case frame = <-c.send:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for frames")
		}

		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		switch env.Event {
		case EventChatHistory:
			var msgs []store.ChatMessage
			if err := json.Unmarshal(env.Data, &msgs); err != nil {
				t.Fatalf("decode history: %v", err)
			}
			historyLen = len(msgs)
			received = append(received, msgs...)
		case EventReceiveMessage:
			var msg store.ChatMessage
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				t.Fatalf("decode message: %v", err)
			}
			received = append(received, msg)
		}
		if len(received) > 0 && received[len(received)-1].ID == last.ID {
			break
		}
	}

	if historyLen == 0 {
		t.Fatal("history frame not received")
	}
	seen := make(map[string]bool, len(received))
	for _, m := range received {
		if seen[m.ID] {
			t.Errorf("message %s (%q) delivered twice", m.ID, m.Content)
		}
		seen[m.ID] = true
	}
	if len(received) != queued+1 {
		t.Errorf("received %d messages, want %d", len(received), queued+1)
	}
	if n := len(c.send); n != 0 {
		t.Errorf("%d extra frames queued after the last message", n)
	}
}

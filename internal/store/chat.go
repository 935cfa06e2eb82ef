package store

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ChatMessage is a stored chat message. It is immutable once appended.
type ChatMessage struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsUser    bool      `json:"isUser"`
}

// NewChatMessage is the inbound payload of a "send message" event.
type NewChatMessage struct {
	Nickname string `json:"nickname"`
	Content  string `json:"content"`
	Avatar   string `json:"avatar"`
}

// ChatOptions configures a ChatHistory. Zero values fall back to defaults.
type ChatOptions struct {
	Limit             int
	TTL               time.Duration
	DefaultNickname   string
	AvatarURLTemplate string
	Now               func() time.Time
}

const (
	defaultChatLimit    = 100
	defaultChatTTL      = 24 * time.Hour
	defaultNickname     = "Anônimo"
	defaultAvatarFormat = "https://api.dicebear.com/7.x/avataaars/svg?seed=%s"
)

// ChatHistory is a bounded, time-windowed sequence of chat messages, oldest first.
type ChatHistory struct {
	mu       sync.RWMutex
	messages []ChatMessage
	// seq counts every append, including messages later dropped.
	seq uint64

	limit          int
	ttl            time.Duration
	nickname       string
	avatarTemplate string
	now            func() time.Time
}

// NewChatHistory creates an empty history.
func NewChatHistory(opts ChatOptions) *ChatHistory {
	h := &ChatHistory{
		limit:          opts.Limit,
		ttl:            opts.TTL,
		nickname:       opts.DefaultNickname,
		avatarTemplate: opts.AvatarURLTemplate,
		now:            opts.Now,
	}
	if h.limit <= 0 {
		h.limit = defaultChatLimit
	}
	if h.ttl <= 0 {
		h.ttl = defaultChatTTL
	}
	if h.nickname == "" {
		h.nickname = defaultNickname
	}
	if h.avatarTemplate == "" {
		h.avatarTemplate = defaultAvatarFormat
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Append stores msg and returns the normalized copy that was stored. Once
// the history exceeds its limit the oldest messages are dropped.
func (h *ChatHistory) Append(msg NewChatMessage) ChatMessage {
	stored, _ := h.AppendSeq(msg)
	return stored
}

// AppendSeq is Append that also returns the append sequence number of the
// stored message. Sequence numbers start at 1 and never repeat.
func (h *ChatHistory) AppendSeq(msg NewChatMessage) (ChatMessage, uint64) {
	nickname := strings.TrimSpace(msg.Nickname)
	if nickname == "" {
		nickname = h.nickname
	}
	avatar := strings.TrimSpace(msg.Avatar)
	if avatar == "" {
		avatar = AvatarURL(h.avatarTemplate, nickname)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now().UTC()
	stored := ChatMessage{
		ID:        NewID(now),
		Nickname:  nickname,
		Avatar:    avatar,
		Content:   msg.Content,
		Timestamp: now,
		IsUser:    false,
	}

	h.seq++
	h.messages = append(h.messages, stored)
	if over := len(h.messages) - h.limit; over > 0 {
		// Copy so the dropped prefix does not pin the backing array.
		kept := make([]ChatMessage, h.limit, h.limit+1)
		copy(kept, h.messages[over:])
		h.messages = kept
	}

	return stored, h.seq
}

// Snapshot returns a copy of the current history, oldest first.
func (h *ChatHistory) Snapshot() []ChatMessage {
	out, _ := h.SnapshotSeq()
	return out
}

// SnapshotSeq returns a copy of the current history together with the
// sequence number of the last append it reflects.
func (h *ChatHistory) SnapshotSeq() ([]ChatMessage, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ChatMessage, len(h.messages))
	copy(out, h.messages)
	return out, h.seq
}

// Len returns the number of stored messages.
func (h *ChatHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// EvictExpired removes every message older than the TTL at now and returns
// how many were removed.
func (h *ChatHistory) EvictExpired(now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.messages[:0]
	for _, m := range h.messages {
		if !Expired(m.Timestamp, now, h.ttl) {
			kept = append(kept, m)
		}
	}
	removed := len(h.messages) - len(kept)
	clear(h.messages[len(kept):])
	h.messages = kept
	return removed
}

// AvatarURL derives a deterministic avatar URL for nickname from template,
// which must contain a single %s verb.
func AvatarURL(template, nickname string) string {
	return fmt.Sprintf(template, url.QueryEscape(nickname))
}

// Package handlers implements the HTTP and websocket endpoints of the
// ConstruFácil backend.
package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/construfacil/internal/config"
	"github.com/edgard/construfacil/internal/gemini"
	"github.com/edgard/construfacil/internal/realtime"
	"github.com/edgard/construfacil/internal/store"
)

// Completer answers a free-text prompt. *gemini.Gateway satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (gemini.Result, error)
}

// HandlerDeps provides dependencies for the request handlers.
type HandlerDeps struct {
	Logger      *slog.Logger
	Config      *config.Config
	Completer   Completer
	Directory   store.Directory
	Chat        *store.ChatHistory
	Hub         *realtime.Hub
	Broadcaster *realtime.Broadcaster
}

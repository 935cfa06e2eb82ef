// Package tasks implements the scheduled tasks of the ConstruFácil backend:
// TTL eviction of the chat history and the professional directory, and
// optional SQLite maintenance.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/construfacil/internal/store"
)

// SQLMaintainer is implemented by stores that can compact their database.
type SQLMaintainer interface {
	RunSQLMaintenance(ctx context.Context) error
}

// TaskDeps contains the dependencies of scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Chat      *store.ChatHistory
	Directory store.Directory
	// Maintainer is nil when the directory is kept in memory.
	Maintainer SQLMaintainer
	// Now defaults to time.Now.
	Now func() time.Time
}

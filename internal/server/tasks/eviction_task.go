package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/construfacil/internal/config"
)

// newChatEvictionTask drops chat messages older than the chat TTL.
func newChatEvictionTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", config.TaskChatEviction)

	return func(ctx context.Context) error {
		if deps.Chat == nil {
			return fmt.Errorf("chat history not configured")
		}
		removed := deps.Chat.EvictExpired(deps.Now())
		if removed > 0 {
			log.InfoContext(ctx, "Evicted expired chat messages", "removed", removed, "remaining", deps.Chat.Len())
		} else {
			log.DebugContext(ctx, "No expired chat messages")
		}
		return nil
	}
}

// newDirectoryEvictionTask drops professional listings older than the
// directory TTL.
func newDirectoryEvictionTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", config.TaskDirectoryEviction)

	return func(ctx context.Context) error {
		if deps.Directory == nil {
			return fmt.Errorf("directory not configured")
		}
		startTime := time.Now()

		removed, err := deps.Directory.EvictExpired(ctx, deps.Now())
		if err != nil {
			log.ErrorContext(ctx, "Directory eviction failed", "error", err)
			return fmt.Errorf("directory eviction failed: %w", err)
		}

		if removed > 0 {
			log.InfoContext(ctx, "Evicted expired professionals", "removed", removed, "duration", time.Since(startTime))
		} else {
			log.DebugContext(ctx, "No expired professionals")
		}
		return nil
	}
}

package store

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID returns a lexicographically time-ordered, collision resistant id for
// something created at t.
func NewID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}

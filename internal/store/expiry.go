// Package store holds the in-memory state of the backend: the chat history
// and the professional directory. Every store guards its own collection with
// a mutex; callers only see copies.
package store

import "time"

// Expired reports whether something created at ts is older than ttl at now.
// An entry exactly ttl old is still alive.
func Expired(ts, now time.Time, ttl time.Duration) bool {
	return now.Sub(ts) > ttl
}

// Package storage is the durable client-side key-value store backing the
// session: one value per key, persisted across restarts, with change
// notification that fires only for writes made by other processes. It
// mirrors the semantics of web localStorage plus its storage event.
package storage

// Keys shared with the web client.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Event describes a change made by another execution context.
type Event struct {
	Key      string
	NewValue string
	Removed  bool
}

type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error

	// Subscribe registers fn for changes made by other execution
	// contexts. A write through this Store must never notify its own
	// subscribers; that rule is what keeps the session's cross-context
	// resync from looping on its own writes.
	Subscribe(fn func(Event)) (cancel func())
}

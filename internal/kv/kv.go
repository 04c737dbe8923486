// Package kv provides the durable key-value space backing the session store:
// string keys, string values, no coordination beyond process-local locking.
// The libsql-backed store is the durable implementation; the memory store is
// the substitutable fake for tests and ephemeral runs.
package kv

// Store is a flat string-to-string keyspace.
type Store interface {
	// Get returns the value for key. The second return is false when the key
	// is absent; absence is not an error.
	Get(key string) (string, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error

	Close() error
}

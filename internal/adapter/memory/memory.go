// Package memory implements an in-memory durable slot for development and
// testing.
package memory

import (
	"context"
	"sync"

	"periodtracker/internal/domain"
)

// DB implements an in-memory key-value slot store.
type DB struct {
	mu    sync.Mutex
	slots map[string][]byte
}

// New creates a new in-memory store.
func New() *DB {
	return &DB{slots: make(map[string][]byte)}
}

// Ensure interfaces are met.
var _ domain.SlotStore = (*DB)(nil)

// Get returns a copy of the value stored under key, or nil if absent.
func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	v, ok := db.slots[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

// Set stores a copy of value under key.
func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.slots[key] = append([]byte{}, value...)
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (db *DB) Delete(ctx context.Context, key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.slots, key)
	return nil
}

// Len returns the number of stored keys.
func (db *DB) Len() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.slots)
}

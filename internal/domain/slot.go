// Package domain contains the core entities, the cycle derivation and the
// storage port.
package domain

import "context"

// DefaultSlotKey names the durable slot holding the serialized AppData.
const DefaultSlotKey = "period-tracker-data"

// SlotStore is the port for a durable key-value medium. Get returns nil, nil
// when the key is absent.
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

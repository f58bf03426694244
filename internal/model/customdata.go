package model

import "context"

// CustomDataStore is the orchestrator's per-node custom data slot, typed over the
// value stored in it. The orchestrator persists the value as-is and never inspects it.
type CustomDataStore[T any] interface {
	// LoadCustomData returns the node's value, or nil when nothing was stored yet.
	LoadCustomData(ctx context.Context, nodeID uint64) (*T, error)
	// StoreCustomData replaces the node's value.
	StoreCustomData(ctx context.Context, nodeID uint64, v *T) error
	// UpdateCustomData replaces the node's value with fn applied to the current
	// one, nil when nothing was stored yet. No other writer of the slot runs
	// between the read and the write. Nothing is written when fn fails.
	UpdateCustomData(ctx context.Context, nodeID uint64, fn func(*T) (*T, error)) (*T, error)
}

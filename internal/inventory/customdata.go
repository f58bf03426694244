package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PolyhedraZK/nbnet/internal/model"
)

// CustomData exposes the nodes' custom data slots holding values of type T.
type CustomData[T any] struct {
	inv *Inventory
}

var _ model.CustomDataStore[struct{}] = (*CustomData[struct{}])(nil)

// NewCustomData returns the custom data store of inv.
func NewCustomData[T any](inv *Inventory) *CustomData[T] {
	return &CustomData[T]{inv: inv}
}

// LoadCustomData reads the node's value from the file, nil if none was stored.
func (c *CustomData[T]) LoadCustomData(ctx context.Context, nodeID uint64) (*T, error) {
	if _, ok := c.inv.Node(nodeID); !ok {
		return nil, fmt.Errorf("node %d: %w", nodeID, ErrNodeNotFound)
	}
	f, err := c.inv.read(ctx)
	if err != nil {
		return nil, err
	}
	return decodeCustomData[T](f, nodeID)
}

// StoreCustomData replaces the node's value in the file.
func (c *CustomData[T]) StoreCustomData(ctx context.Context, nodeID uint64, v *T) error {
	_, err := c.UpdateCustomData(ctx, nodeID, func(*T) (*T, error) {
		return v, nil
	})
	return err
}

// UpdateCustomData applies fn to the node's value and writes the result back,
// both under the exclusive file lock, so a change another process made since
// the last read is what fn sees.
func (c *CustomData[T]) UpdateCustomData(ctx context.Context, nodeID uint64, fn func(*T) (*T, error)) (*T, error) {
	if _, ok := c.inv.Node(nodeID); !ok {
		return nil, fmt.Errorf("node %d: %w", nodeID, ErrNodeNotFound)
	}

	var (
		next *T
		size int
	)
	err := c.inv.update(ctx, func(f *File) error {
		current, err := decodeCustomData[T](f, nodeID)
		if err != nil {
			return err
		}
		next, err = fn(current)
		if err != nil {
			return err
		}

		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode custom data of node %d: %w", nodeID, err)
		}
		if f.CustomData == nil {
			f.CustomData = make(map[uint64]json.RawMessage)
		}
		f.CustomData[nodeID] = raw
		size = len(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.inv.logger.Debug().Uint64("node_id", nodeID).Int("bytes", size).Msg("custom data stored")
	return next, nil
}

func decodeCustomData[T any](f *File, nodeID uint64) (*T, error) {
	raw, ok := f.CustomData[nodeID]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decode custom data of node %d: %w", nodeID, err)
	}
	return v, nil
}

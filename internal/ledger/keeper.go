package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/rs/zerolog"
)

// Keeper runs read-transform-write cycles against the orchestrator's custom data
// slot, with at most one cycle in flight per node within this process.
// Cross-process exclusion comes from the store's UpdateCustomData.
type Keeper struct {
	logger zerolog.Logger
	store  model.CustomDataStore[Blob]

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewKeeper creates a Keeper persisting through store.
func NewKeeper(logger zerolog.Logger, store model.CustomDataStore[Blob]) *Keeper {
	return &Keeper{
		logger: logger.With().Str("component", "ledger-keeper").Logger(),
		store:  store,
		locks:  make(map[uint64]*sync.Mutex),
	}
}

func (k *Keeper) nodeLock(nodeID uint64) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.locks[nodeID]
	if !ok {
		l = &sync.Mutex{}
		k.locks[nodeID] = l
	}
	return l
}

// Load returns the node's blob, nil if none was stored yet.
func (k *Keeper) Load(ctx context.Context, nodeID uint64) (*Blob, error) {
	b, err := k.store.LoadCustomData(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load ledger of node %d: %w", nodeID, err)
	}
	return b, nil
}

// Update applies fn to the node's blob and stores the result in one store
// cycle, so writers in other processes cannot interleave. Nothing is written
// when fn fails.
func (k *Keeper) Update(ctx context.Context, nodeID uint64, fn func(*Blob) (*Blob, error)) (*Blob, error) {
	l := k.nodeLock(nodeID)
	l.Lock()
	defer l.Unlock()

	next, err := k.store.UpdateCustomData(ctx, nodeID, fn)
	if err != nil {
		return nil, fmt.Errorf("update ledger of node %d: %w", nodeID, err)
	}
	return next, nil
}

// Append records deposited indices for the node.
func (k *Keeper) Append(ctx context.Context, nodeID uint64, entries Deposits) error {
	_, err := k.Update(ctx, nodeID, func(b *Blob) (*Blob, error) {
		return AppendDeposits(b, entries), nil
	})
	if err != nil {
		return err
	}

	k.logger.Debug().Uint64("node_id", nodeID).Int("mnemonics", len(entries)).Msg("deposits recorded")
	return nil
}

// Remove drops one deposited index and reports whether it was present.
func (k *Keeper) Remove(ctx context.Context, nodeID uint64, mnemonic string, index uint16) (bool, error) {
	var removed bool
	_, err := k.Update(ctx, nodeID, func(b *Blob) (*Blob, error) {
		next, ok, err := RemoveDeposit(b, mnemonic, index)
		if err != nil {
			return nil, fmt.Errorf("remove index %d of node %d: %w", index, nodeID, err)
		}
		removed = ok
		return next, nil
	})
	if err != nil {
		return false, err
	}

	k.logger.Debug().Uint64("node_id", nodeID).Uint16("index", index).Bool("removed", removed).Msg("deposit removed")
	return removed, nil
}

// SetKind switches the node's execution client kind, keeping its deposits.
func (k *Keeper) SetKind(ctx context.Context, nodeID uint64, kind model.ExecutionClientKind) error {
	_, err := k.Update(ctx, nodeID, func(b *Blob) (*Blob, error) {
		return SetKind(b, kind), nil
	})
	return err
}

// Prune rewrites the node's blob without empty index sets.
func (k *Keeper) Prune(ctx context.Context, nodeID uint64) error {
	_, err := k.Update(ctx, nodeID, func(b *Blob) (*Blob, error) {
		return Prune(b), nil
	})
	return err
}

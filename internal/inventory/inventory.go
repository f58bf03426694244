// Package inventory is a file-backed view of a running environment: its nodes,
// which of them are online, the premined funding accounts and each node's
// custom data slot. Several processes may share one file; writes are serialized
// by an advisory lock next to it.
package inventory

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// SelectAll selects every node that is not reserved.
const SelectAll = "all"

// lockRetryDelay is the wait between two attempts to take the file lock.
const lockRetryDelay = 50 * time.Millisecond

var (
	// ErrNodeNotFound is returned for node ids the environment does not know.
	ErrNodeNotFound = errors.New("node not found")
	// ErrReservedNode is returned when a reserved node is selected explicitly.
	ErrReservedNode = errors.New("reserved node cannot be selected")
	// ErrNoAccount is returned when the environment has no premined account.
	ErrNoAccount = errors.New("no premined account")
)

// Account is a premined funding account.
type Account struct {
	Address common.Address `json:"address"`
	// SecretKey is the hex encoded private key, with or without "0x".
	SecretKey string `json:"secret_key" validate:"required"`
}

// File is the on-disk layout of an environment.
type File struct {
	Nodes []model.Node `json:"nodes" validate:"dive"`
	// Online lists the nodes currently running.
	Online   []uint64  `json:"online"`
	Accounts []Account `json:"premined_accounts" validate:"dive"`
	// CustomData holds each node's opaque custom data value.
	CustomData map[uint64]json.RawMessage `json:"custom_data,omitempty"`
}

// Inventory serves node lookups from the snapshot read at Open and goes to
// the file for every custom data access.
type Inventory struct {
	logger zerolog.Logger
	path   string

	// mu serializes file access within the process; lock does so across processes.
	mu   sync.Mutex
	lock *flock.Flock

	nodes    map[uint64]model.Node
	online   []uint64
	accounts []Account
}

// Open reads the environment file at path.
func Open(logger zerolog.Logger, path string) (*Inventory, error) {
	inv := &Inventory{
		logger: logger.With().Str("component", "inventory").Str("path", path).Logger(),
		path:   path,
		lock:   flock.New(path + ".lock"),
	}

	f, err := inv.read(context.Background())
	if err != nil {
		return nil, err
	}

	inv.nodes = make(map[uint64]model.Node, len(f.Nodes))
	for _, n := range f.Nodes {
		if _, dup := inv.nodes[n.ID]; dup {
			return nil, fmt.Errorf("environment %s: duplicate node id %d", path, n.ID)
		}
		inv.nodes[n.ID] = n
	}
	for _, id := range f.Online {
		if _, ok := inv.nodes[id]; !ok {
			return nil, fmt.Errorf("environment %s: online node %d: %w", path, id, ErrNodeNotFound)
		}
	}
	inv.online = slices.Clone(f.Online)
	slices.Sort(inv.online)
	inv.online = slices.Compact(inv.online)
	inv.accounts = f.Accounts

	inv.logger.Debug().Int("nodes", len(inv.nodes)).Int("online", len(inv.online)).Msg("environment loaded")
	return inv, nil
}

// Path returns the environment file path.
func (inv *Inventory) Path() string {
	return inv.path
}

// OnlineNodeIDs returns the ids of the running nodes, ascending.
func (inv *Inventory) OnlineNodeIDs() []uint64 {
	return slices.Clone(inv.online)
}

// Node returns the node with the given id.
func (inv *Inventory) Node(id uint64) (model.Node, bool) {
	n, ok := inv.nodes[id]
	return n, ok
}

// Nodes returns every node, reserved ones included, ordered by id.
func (inv *Inventory) Nodes() []model.Node {
	out := make([]model.Node, 0, len(inv.nodes))
	for _, n := range inv.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b model.Node) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Select resolves a node selector: SelectAll, or a comma separated list of ids.
// Reserved nodes are left out of SelectAll and rejected when named.
func (inv *Inventory) Select(selector string) ([]model.Node, error) {
	selector = strings.TrimSpace(selector)
	if selector == SelectAll {
		var out []model.Node
		for _, n := range inv.Nodes() {
			if !n.Reserved {
				out = append(out, n)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("select %q: %w", selector, ErrNodeNotFound)
		}
		return out, nil
	}

	var out []model.Node
	seen := make(map[uint64]struct{})
	for _, field := range strings.Split(selector, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid node id %q: %w", field, err)
		}
		n, ok := inv.nodes[id]
		if !ok {
			return nil, fmt.Errorf("node %d: %w", id, ErrNodeNotFound)
		}
		if n.Reserved {
			return nil, fmt.Errorf("node %d: %w", id, ErrReservedNode)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

// DefaultAccount returns the key of the first premined account.
func (inv *Inventory) DefaultAccount(context.Context) (*ecdsa.PrivateKey, error) {
	if len(inv.accounts) == 0 {
		return nil, ErrNoAccount
	}
	acc := inv.accounts[0]
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(acc.SecretKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse premined account key: %w", err)
	}
	if got := crypto.PubkeyToAddress(key.PublicKey); acc.Address != (common.Address{}) && got != acc.Address {
		return nil, fmt.Errorf("premined account key belongs to %s, not %s", got.Hex(), acc.Address.Hex())
	}
	return key, nil
}

// read loads the file under a shared lock.
func (inv *Inventory) read(ctx context.Context) (*File, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	ok, err := inv.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil || !ok {
		return nil, fmt.Errorf("lock environment %s: %w", inv.path, lockError(ctx, err))
	}
	defer inv.unlock()

	return ReadFile(inv.path)
}

// update applies fn to the file under an exclusive lock and writes the result
// back atomically. Nothing is written when fn fails.
func (inv *Inventory) update(ctx context.Context, fn func(*File) error) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	ok, err := inv.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !ok {
		return fmt.Errorf("lock environment %s: %w", inv.path, lockError(ctx, err))
	}
	defer inv.unlock()

	f, err := ReadFile(inv.path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		return err
	}
	return WriteFile(inv.path, f)
}

func (inv *Inventory) unlock() {
	if err := inv.lock.Unlock(); err != nil {
		inv.logger.Warn().Err(err).Msg("failed to release environment lock")
	}
}

func lockError(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New("lock not acquired")
}

// ReadFile parses and validates an environment file.
func ReadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse environment %s: %w", path, err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("invalid environment %s: %w", path, err)
	}
	return &f, nil
}

// WriteFile replaces the environment file at path. The new content is written
// to a temporary file in the same directory and renamed over the old one.
func WriteFile(path string, f *File) error {
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode environment: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write environment: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync environment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close environment: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace environment %s: %w", path, err)
	}
	return nil
}

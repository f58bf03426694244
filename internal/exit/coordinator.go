// Package exit retires deposited validators: it recovers each validator's
// voting keystore from the ledger's mnemonic, publishes a voluntary exit and
// forgets the validator once the exit went through.
package exit

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/PolyhedraZK/nbnet/internal/keytool"
	"github.com/PolyhedraZK/nbnet/internal/ledger"
	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ErrRecoveryFailed marks a validator whose keystore could not be re-derived.
var ErrRecoveryFailed = errors.New("keystore recovery failed")

// Config holds the settings shared by every exit.
type Config struct {
	// TestnetDir holds the chain config the key tool needs.
	TestnetDir string `validate:"required"`

	// ScratchDir is the parent of per-validator recovery directories. Empty
	// means the system temp dir.
	ScratchDir string
}

// Request asks to exit every validator recorded for Nodes.
type Request struct {
	Nodes []model.Node `validate:"required,min=1"`

	// Wait blocks on each exit until the beacon node observes it.
	Wait bool
}

// Failure is one validator that was not exited. Mnemonic is empty when the
// node's ledger could not be read at all.
type Failure struct {
	NodeID   uint64
	Mnemonic string
	Index    uint16
	Err      error
}

func (f Failure) Error() string {
	if f.Mnemonic == "" {
		return fmt.Sprintf("node %d: %v", f.NodeID, f.Err)
	}
	return fmt.Sprintf("node %d, mnemonic %q, index %d: %v", f.NodeID, f.Mnemonic, f.Index, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report is the outcome of one Exit call.
type Report struct {
	// Exited lists the exited validators per node, in ledger order.
	Exited   map[uint64][]ledger.Pair
	Failures []Failure
}

// Err joins the failures, nil when every exit went through.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Coordinator runs voluntary exits.
type Coordinator struct {
	logger zerolog.Logger
	cfg    Config
	keys   keytool.Manager
	keeper *ledger.Keeper
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(logger zerolog.Logger, cfg Config, keys keytool.Manager, keeper *ledger.Keeper) (*Coordinator, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Coordinator{
		logger: logger.With().Str("component", "exit-coordinator").Logger(),
		cfg:    cfg,
		keys:   keys,
		keeper: keeper,
	}, nil
}

// Exit exits every validator recorded for the requested nodes through the
// beacon node of the first one. A failed validator is reported and skipped; it
// stays in the ledger so a later run retries it.
func (c *Coordinator) Exit(ctx context.Context, req Request) (Report, error) {
	report := Report{Exited: make(map[uint64][]ledger.Pair)}
	if err := validator.New().Struct(req); err != nil {
		return report, fmt.Errorf("invalid exit request: %w", err)
	}
	beaconURL := req.Nodes[0].BeaconRPC()

	for _, node := range req.Nodes {
		lg := c.logger.With().Uint64("node_id", node.ID).Logger()
		if node.Reserved {
			lg.Debug().Msg("reserved node holds no deposits, skipping")
			continue
		}

		blob, err := c.keeper.Load(ctx, node.ID)
		if err != nil {
			report.Failures = append(report.Failures, Failure{NodeID: node.ID, Err: err})
			continue
		}

		pairs := blob.Pairs()
		lg.Info().Int("validators", len(pairs)).Msg("exiting validators")
		for _, p := range pairs {
			if err := c.exit(ctx, node, beaconURL, p.Mnemonic, p.Index, req.Wait); err != nil {
				lg.Error().Err(err).Uint16("index", p.Index).Msg("exit failed")
				report.Failures = append(report.Failures, Failure{
					NodeID:   node.ID,
					Mnemonic: p.Mnemonic,
					Index:    p.Index,
					Err:      err,
				})
				continue
			}
			report.Exited[node.ID] = append(report.Exited[node.ID], p)
		}
	}

	return report, report.Err()
}

// ExitPair exits the single validator (mnemonic, index) of node through the
// node's own beacon API. It returns ledger.ErrNotFound when the mnemonic is not
// recorded for the node.
func (c *Coordinator) ExitPair(ctx context.Context, node model.Node, mnemonic string, index uint16, wait bool) error {
	blob, err := c.keeper.Load(ctx, node.ID)
	if err != nil {
		return err
	}
	if blob == nil || blob.Deposits[mnemonic] == nil {
		return fmt.Errorf("node %d: %w", node.ID, ledger.ErrNotFound)
	}
	return c.exit(ctx, node, node.BeaconRPC(), mnemonic, index, wait)
}

// exit recovers the keystore into a scratch directory that is removed on every
// path, submits the exit and drops the validator from the ledger.
func (c *Coordinator) exit(ctx context.Context, node model.Node, beaconURL, mnemonic string, index uint16, wait bool) error {
	lg := c.logger.With().Uint64("node_id", node.ID).Uint16("index", index).Logger()

	scratch, err := os.MkdirTemp(c.cfg.ScratchDir, fmt.Sprintf("exit-%d-*", node.ID))
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			lg.Warn().Err(err).Str("dir", scratch).Msg("failed to remove scratch dir")
		}
	}()

	ks, err := c.keys.RecoverKeystore(ctx, keytool.RecoverRequest{
		Mnemonic:   mnemonic,
		Index:      index,
		TestnetDir: c.cfg.TestnetDir,
		OutputDir:  scratch,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecoveryFailed, err)
	}

	err = c.keys.SubmitExit(ctx, keytool.ExitRequest{
		Keystore:   *ks,
		BeaconURL:  beaconURL,
		TestnetDir: c.cfg.TestnetDir,
		Wait:       wait,
	})
	if err != nil {
		return fmt.Errorf("submit exit for %s: %w", ks.PubKey, err)
	}

	removed, err := c.keeper.Remove(ctx, node.ID, mnemonic, index)
	if err != nil {
		return fmt.Errorf("exit of %s submitted but not recorded: %w", ks.PubKey, err)
	}
	if !removed {
		lg.Warn().Msg("exited validator was not in the ledger")
	}
	lg.Info().Str("pubkey", ks.PubKey).Bool("wait", wait).Msg("validator exited")
	return nil
}

// Package bootstrap picks boot peers for a node about to start by asking nodes
// that joined the network before it for their peering identities.
package bootstrap

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/PolyhedraZK/nbnet/internal/peerrpc"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout is the total search budget, measured from the first attempt.
	DefaultTimeout = 10 * time.Second
	// DefaultPollInterval is the fixed wait between two attempts.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultMaxCandidates caps the number of peers queried.
	DefaultMaxCandidates = 5
)

// NodeTable is the orchestrator's read-only view of the network.
type NodeTable interface {
	// OnlineNodeIDs returns the ids of every node expected to be running.
	OnlineNodeIDs() []uint64
	// Node returns the node with the given id.
	Node(id uint64) (model.Node, bool)
}

// IdentityQuerier fetches peering identities from a single node.
type IdentityQuerier interface {
	QueryExecutionIdentity(ctx context.Context, endpoint string) (string, error)
	QueryConsensusIdentity(ctx context.Context, endpoint string) (peerrpc.Identity, error)
}

// State is the progress of one resolution.
type State int

const (
	// Searching means no execution peer answered yet.
	Searching State = iota
	// PartialResult means execution bootnodes are known and consensus peers are being searched.
	PartialResult
	// Done means the result is final.
	Done
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case PartialResult:
		return "partial-result"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Resolver builds a model.BootPeerSet for a starting node.
type Resolver struct {
	logger        zerolog.Logger
	table         NodeTable
	querier       IdentityQuerier
	clock         clock.Clock
	timeout       time.Duration
	pollInterval  time.Duration
	maxCandidates int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout sets the total search budget.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithPollInterval sets the wait between attempts.
func WithPollInterval(d time.Duration) Option {
	return func(r *Resolver) {
		r.pollInterval = d
	}
}

// WithMaxCandidates caps how many earlier nodes are queried.
func WithMaxCandidates(n int) Option {
	return func(r *Resolver) {
		r.maxCandidates = n
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clock.Clock) Option {
	return func(r *Resolver) {
		r.clock = c
	}
}

// NewResolver creates a Resolver reading the network from table and querying peers through querier.
func NewResolver(logger zerolog.Logger, table NodeTable, querier IdentityQuerier, opts ...Option) *Resolver {
	r := &Resolver{
		logger:        logger.With().Str("component", "bootstrap-resolver").Logger(),
		table:         table,
		querier:       querier,
		clock:         clock.New(),
		timeout:       DefaultTimeout,
		pollInterval:  DefaultPollInterval,
		maxCandidates: DefaultMaxCandidates,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Candidates returns the nodes that will be queried for a node starting with id
// starting: expected-online nodes with a lower id, lowest first, capped.
func (r *Resolver) Candidates(starting uint64) []model.Node {
	ids := make([]uint64, 0)
	for _, id := range r.table.OnlineNodeIDs() {
		if id < starting {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	nodes := make([]model.Node, 0, r.maxCandidates)
	for _, id := range ids {
		if len(nodes) == r.maxCandidates {
			break
		}
		n, ok := r.table.Node(id)
		if !ok {
			r.logger.Warn().Uint64("node_id", id).Msg("online node missing from node table, skipping")
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// Resolve returns the boot peers for the node with id starting. It never fails:
// when the budget runs out, whatever was found so far is returned, possibly
// nothing, and the node falls back to syncing without assistance.
func (r *Resolver) Resolve(ctx context.Context, starting uint64) model.BootPeerSet {
	lg := r.logger.With().Uint64("node_id", starting).Logger()

	var result model.BootPeerSet
	candidates := r.Candidates(starting)
	if len(candidates) == 0 {
		lg.Info().Msg("no earlier online nodes, booting standalone")
		return result
	}

	deadline := r.clock.Now().Add(r.timeout)
	state := Searching
	for state != Done {
		switch state {
		case Searching:
			if enodes := r.queryExecution(ctx, candidates); len(enodes) > 0 {
				result.ExecutionBootnodes = strings.Join(enodes, ",")
				state = PartialResult
				lg.Debug().Int("found", len(enodes)).Msg("execution bootnodes resolved")
				continue
			}
		case PartialResult:
			identities, checkpoint := r.queryConsensus(ctx, candidates)
			if len(identities) > 0 {
				enrs := make([]string, 0, len(identities))
				peerIDs := make([]string, 0, len(identities))
				for _, id := range identities {
					enrs = append(enrs, id.ENR)
					peerIDs = append(peerIDs, id.PeerID)
				}
				result.ConsensusBootnodes = strings.Join(enrs, ",")
				result.ConsensusTrustedPeers = strings.Join(peerIDs, ",")
				result.CheckpointSyncURL = checkpoint
				state = Done
				lg.Debug().Int("found", len(identities)).Msg("consensus bootnodes resolved")
				continue
			}
		}

		if !r.wait(ctx, deadline) {
			switch state {
			case Searching:
				lg.Warn().Dur("budget", r.timeout).Msg("no execution peer answered in time, booting without peers")
			case PartialResult:
				lg.Warn().Dur("budget", r.timeout).Msg("no consensus peer answered in time, keeping execution bootnodes only")
			}
			state = Done
		}
	}

	return result
}

// wait sleeps one poll interval and reports whether another attempt may follow.
func (r *Resolver) wait(ctx context.Context, deadline time.Time) bool {
	if ctx.Err() != nil || !r.clock.Now().Before(deadline) {
		return false
	}
	t := r.clock.Timer(r.pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// queryExecution asks every candidate for its enode and returns the answers in candidate order.
func (r *Resolver) queryExecution(ctx context.Context, candidates []model.Node) []string {
	answers := make([]string, len(candidates))

	var g errgroup.Group
	for i, n := range candidates {
		g.Go(func() error {
			endpoint := n.ExecutionRPC()
			enode, err := r.querier.QueryExecutionIdentity(ctx, endpoint)
			if err != nil {
				r.logger.Debug().Err(err).Uint64("peer_node_id", n.ID).Str("endpoint", endpoint).Msg("execution peer yielded nothing")
				return nil
			}
			answers[i] = enode
			return nil
		})
	}
	_ = g.Wait()

	found := make([]string, 0, len(answers))
	for _, a := range answers {
		if a != "" {
			found = append(found, a)
		}
	}
	return found
}

// queryConsensus asks every candidate for its ENR and peer id. It also returns
// the beacon endpoint of the first candidate that answered, for checkpoint sync.
func (r *Resolver) queryConsensus(ctx context.Context, candidates []model.Node) ([]peerrpc.Identity, string) {
	answers := make([]*peerrpc.Identity, len(candidates))

	var g errgroup.Group
	for i, n := range candidates {
		g.Go(func() error {
			endpoint := n.BeaconRPC()
			id, err := r.querier.QueryConsensusIdentity(ctx, endpoint)
			if err != nil {
				r.logger.Debug().Err(err).Uint64("peer_node_id", n.ID).Str("endpoint", endpoint).Msg("consensus peer yielded nothing")
				return nil
			}
			answers[i] = &id
			return nil
		})
	}
	_ = g.Wait()

	found := make([]peerrpc.Identity, 0, len(answers))
	checkpoint := ""
	for i, a := range answers {
		if a == nil {
			continue
		}
		if checkpoint == "" {
			checkpoint = candidates[i].BeaconRPC()
		}
		found = append(found, *a)
	}
	return found, checkpoint
}

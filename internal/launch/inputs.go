// Package launch turns resolved boot peers into the values a node's launch
// template needs on its client command lines.
package launch

import (
	"strings"

	"github.com/PolyhedraZK/nbnet/internal/model"
)

// Inputs holds the peer related launch values of one node.
type Inputs struct {
	// ExecutionBootnodes are enode URLs of execution peers.
	ExecutionBootnodes []string

	// ConsensusBootnodes are ENR records of beacon peers.
	ConsensusBootnodes []string

	// TrustedPeers are libp2p peer ids the beacon node always keeps connected.
	TrustedPeers []string

	// CheckpointSyncURL is a beacon API to fetch the finalized state from.
	// Empty means syncing from genesis.
	CheckpointSyncURL string
}

// Option modifies Inputs.
type Option func(*Inputs)

// WithExecutionBootnodes configures execution bootnodes.
func WithExecutionBootnodes(enodes []string) Option {
	return func(in *Inputs) {
		in.ExecutionBootnodes = enodes
	}
}

// WithBootnodes configures beacon node bootnodes.
//
// The bootnodes parameter should contain ENR addresses.
func WithBootnodes(bootnodes []string) Option {
	return func(in *Inputs) {
		in.ConsensusBootnodes = bootnodes
	}
}

// WithTrustedPeers configures beacon node trusted peers.
func WithTrustedPeers(peers []string) Option {
	return func(in *Inputs) {
		in.TrustedPeers = peers
	}
}

// WithCheckpointSync enables checkpoint sync from a trusted beacon node.
//
// Checkpoint sync allows the beacon node to start from a recent finalized
// checkpoint rather than syncing from genesis.
func WithCheckpointSync(url string) Option {
	return func(in *Inputs) {
		in.CheckpointSyncURL = url
	}
}

// WithGenesisSync disables checkpoint sync.
func WithGenesisSync() Option {
	return func(in *Inputs) {
		in.CheckpointSyncURL = ""
	}
}

// New builds Inputs from options.
func New(opts ...Option) Inputs {
	var in Inputs
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// FromBootPeers converts a resolved peer set. When syncFromGenesis is set the
// checkpoint sync URL is dropped.
func FromBootPeers(set model.BootPeerSet, syncFromGenesis bool, opts ...Option) Inputs {
	base := []Option{
		WithExecutionBootnodes(splitList(set.ExecutionBootnodes)),
		WithBootnodes(splitList(set.ConsensusBootnodes)),
		WithTrustedPeers(splitList(set.ConsensusTrustedPeers)),
		WithCheckpointSync(set.CheckpointSyncURL),
	}
	if syncFromGenesis {
		base = append(base, WithGenesisSync())
	}
	return New(append(base, opts...)...)
}

// CheckpointSyncEnabled reports whether the beacon node starts from a checkpoint.
func (in Inputs) CheckpointSyncEnabled() bool {
	return in.CheckpointSyncURL != ""
}

// ExecutionFlags returns the peer flags for the given execution client.
// Reth additionally trusts its bootnodes.
func (in Inputs) ExecutionFlags(kind model.ExecutionClientKind) []string {
	if len(in.ExecutionBootnodes) == 0 {
		return nil
	}
	joined := strings.Join(in.ExecutionBootnodes, ",")
	flags := []string{"--bootnodes=" + joined}
	if kind == model.Reth {
		flags = append(flags, "--trusted-peers="+joined)
	}
	return flags
}

// BeaconFlags returns the peer and sync flags for a lighthouse beacon node.
func (in Inputs) BeaconFlags() []string {
	var flags []string
	if len(in.ConsensusBootnodes) > 0 {
		flags = append(flags,
			"--boot-nodes="+strings.Join(in.ConsensusBootnodes, ","),
			"--trusted-peers="+strings.Join(in.TrustedPeers, ","),
		)
	}
	if in.CheckpointSyncEnabled() {
		flags = append(flags, "--checkpoint-sync-url="+in.CheckpointSyncURL)
	} else {
		flags = append(flags, "--allow-insecure-genesis-sync")
	}
	return flags
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

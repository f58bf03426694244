package launch_test

import (
	"testing"

	"github.com/PolyhedraZK/nbnet/internal/launch"
	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/stretchr/testify/require"
)

// TestOptions verifies each option sets its field.
func TestOptions(t *testing.T) {
	in := launch.New(
		launch.WithExecutionBootnodes([]string{"enode://a"}),
		launch.WithBootnodes([]string{"enr:a", "enr:b"}),
		launch.WithTrustedPeers([]string{"16Uiu2a"}),
		launch.WithCheckpointSync("http://10.0.0.1:5052"),
	)

	require.Equal(t, []string{"enode://a"}, in.ExecutionBootnodes)
	require.Equal(t, []string{"enr:a", "enr:b"}, in.ConsensusBootnodes)
	require.Equal(t, []string{"16Uiu2a"}, in.TrustedPeers)
	require.True(t, in.CheckpointSyncEnabled())

	in = launch.New(launch.WithCheckpointSync("http://x"), launch.WithGenesisSync())
	require.False(t, in.CheckpointSyncEnabled())
}

// TestFromBootPeers verifies comma lists are split and the checkpoint URL is carried.
func TestFromBootPeers(t *testing.T) {
	set := model.BootPeerSet{
		ExecutionBootnodes:    "enode://a, enode://b",
		ConsensusBootnodes:    "enr:a",
		ConsensusTrustedPeers: "16Uiu2a",
		CheckpointSyncURL:     "http://10.0.0.1:5052",
	}

	in := launch.FromBootPeers(set, false)
	require.Equal(t, []string{"enode://a", "enode://b"}, in.ExecutionBootnodes)
	require.Equal(t, []string{"enr:a"}, in.ConsensusBootnodes)
	require.Equal(t, []string{"16Uiu2a"}, in.TrustedPeers)
	require.Equal(t, "http://10.0.0.1:5052", in.CheckpointSyncURL)
}

// TestFromBootPeersSyncFromGenesis verifies the genesis switch disables checkpoint sync only.
func TestFromBootPeersSyncFromGenesis(t *testing.T) {
	set := model.BootPeerSet{ConsensusBootnodes: "enr:a", CheckpointSyncURL: "http://10.0.0.1:5052"}

	in := launch.FromBootPeers(set, true)
	require.False(t, in.CheckpointSyncEnabled())
	require.Equal(t, []string{"enr:a"}, in.ConsensusBootnodes)
	require.Contains(t, in.BeaconFlags(), "--allow-insecure-genesis-sync")
}

// TestEmptyBootPeers verifies a standalone node gets no peer flags and syncs from genesis.
func TestEmptyBootPeers(t *testing.T) {
	in := launch.FromBootPeers(model.BootPeerSet{}, false)

	require.Empty(t, in.ExecutionFlags(model.Geth))
	require.Equal(t, []string{"--allow-insecure-genesis-sync"}, in.BeaconFlags())
}

// TestExecutionFlags verifies reth also trusts its bootnodes.
func TestExecutionFlags(t *testing.T) {
	in := launch.New(launch.WithExecutionBootnodes([]string{"enode://a", "enode://b"}))

	require.Equal(t, []string{"--bootnodes=enode://a,enode://b"}, in.ExecutionFlags(model.Geth))
	require.Equal(t, []string{
		"--bootnodes=enode://a,enode://b",
		"--trusted-peers=enode://a,enode://b",
	}, in.ExecutionFlags(model.Reth))
}

// TestBeaconFlags verifies the full beacon flag set.
func TestBeaconFlags(t *testing.T) {
	in := launch.FromBootPeers(model.BootPeerSet{
		ExecutionBootnodes:    "enode://a",
		ConsensusBootnodes:    "enr:a,enr:b",
		ConsensusTrustedPeers: "p1,p2",
		CheckpointSyncURL:     "http://10.0.0.1:5052",
	}, false)

	require.Equal(t, []string{
		"--boot-nodes=enr:a,enr:b",
		"--trusted-peers=p1,p2",
		"--checkpoint-sync-url=http://10.0.0.1:5052",
	}, in.BeaconFlags())
}

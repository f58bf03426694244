package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/PolyhedraZK/nbnet/internal/inventory"
	"github.com/PolyhedraZK/nbnet/internal/ledger"
	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/PolyhedraZK/nbnet/internal/unittest"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// run executes the app against the environment file at path and returns what
// it printed on stdout and stderr.
func run(t *testing.T, path string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}

	argv := append([]string{"nbnet", "--" + flagEnvFile, path, "--" + flagLogLevel, "debug"}, args...)
	err := app.RunContext(context.Background(), argv)
	return out.String(), errOut.String(), err
}

func testNode(id uint64, reserved bool) model.Node {
	return model.Node{
		ID:   id,
		Host: "127.0.0.1",
		Home: fmt.Sprintf("/envs/test/%d", id),
		Ports: model.Ports{
			ELRPC:       8545,
			CLBeaconRPC: 5052,
		},
		Reserved: reserved,
	}
}

// writeEnv writes an environment with reserved node 1 and nodes 2 and 3, where
// node 2 records one live and one emptied mnemonic.
func writeEnv(t *testing.T) string {
	t.Helper()
	f := &inventory.File{
		Nodes:  []model.Node{testNode(1, true), testNode(2, false), testNode(3, false)},
		Online: []uint64{1, 2},
		CustomData: map[uint64]json.RawMessage{
			2: json.RawMessage(`{"el_kind":"Reth","deposits":{"live":[0,1],"stale":[]}}`),
		},
	}
	path := filepath.Join(t.TempDir(), "env.json")
	require.NoError(t, inventory.WriteFile(path, f))
	return path
}

func loadBlob(t *testing.T, path string, nodeID uint64) *ledger.Blob {
	t.Helper()
	inv, err := inventory.Open(unittest.Logger(t), path)
	require.NoError(t, err)
	b, err := inventory.NewCustomData[ledger.Blob](inv).LoadCustomData(context.Background(), nodeID)
	require.NoError(t, err)
	return b
}

func decodeShow(t *testing.T, out string) map[uint64]nodeView {
	t.Helper()
	var views []nodeView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	byID := make(map[uint64]nodeView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	return byID
}

func TestShow(t *testing.T) {
	path := writeEnv(t)

	out, _, err := run(t, path, "show")
	require.NoError(t, err)
	views := decodeShow(t, out)

	require.Len(t, views, 3)
	require.True(t, views[1].Reserved)
	require.True(t, views[2].Online)
	require.False(t, views[3].Online)

	require.Equal(t, model.Reth, views[2].Kind)
	require.Equal(t, 2, views[2].Validators)
	require.Contains(t, views[2].Deposits, "stale", "without --clean-up empty mnemonics are shown")

	require.Equal(t, model.Geth, views[3].Kind)
	require.Zero(t, views[3].Validators)
	require.Empty(t, views[3].Deposits)
}

func TestShowCleanUp(t *testing.T) {
	path := writeEnv(t)

	out, _, err := run(t, path, "show", "--clean-up")
	require.NoError(t, err)
	require.NotContains(t, decodeShow(t, out)[2].Deposits, "stale")
	require.Contains(t, loadBlob(t, path, 2).Deposits, "stale", "the stored ledger is untouched")

	out, _, err = run(t, path, "show", "--clean-up", "--write-back")
	require.NoError(t, err)
	require.NotContains(t, decodeShow(t, out)[2].Deposits, "stale")

	stored := loadBlob(t, path, 2)
	require.NotContains(t, stored.Deposits, "stale")
	require.Equal(t, []uint16{0, 1}, stored.Deposits["live"].Sorted())
	require.Equal(t, model.Reth, stored.Kind)
}

func TestShowWriteBackRequiresCleanUp(t *testing.T) {
	_, _, err := run(t, writeEnv(t), "show", "--write-back")
	require.ErrorContains(t, err, "requires --clean-up")
}

func TestSwitchEL(t *testing.T) {
	path := writeEnv(t)

	out, _, err := run(t, path, "switch-el", "--nodes", "2,3", "--kind", "geth")
	require.NoError(t, err)
	require.Contains(t, out, "node 2: Geth")
	require.Contains(t, out, "node 3: Geth")

	two := loadBlob(t, path, 2)
	require.Equal(t, model.Geth, two.Kind)
	require.Equal(t, 2, two.Count(), "switching kind keeps the deposits")

	_, _, err = run(t, path, "switch-el", "--nodes", inventory.SelectAll, "--kind", "RETH")
	require.NoError(t, err)
	require.Equal(t, model.Reth, loadBlob(t, path, 3).Kind)
	require.Nil(t, loadBlob(t, path, 1), "reserved nodes are not part of all")
}

func TestSwitchELErrors(t *testing.T) {
	path := writeEnv(t)

	_, _, err := run(t, path, "switch-el", "--nodes", "2", "--kind", "besu")
	require.ErrorContains(t, err, "unknown execution client kind")

	_, _, err = run(t, path, "switch-el", "--nodes", "1", "--kind", "geth")
	require.ErrorIs(t, err, inventory.ErrReservedNode)

	_, _, err = run(t, path, "switch-el", "--nodes", "9", "--kind", "geth")
	require.ErrorIs(t, err, inventory.ErrNodeNotFound)
}

func TestMissingEnvironment(t *testing.T) {
	_, _, err := run(t, filepath.Join(t.TempDir(), "absent.json"), "show")
	require.Error(t, err)
}

// TestDepositArgumentErrors checks the arguments rejected before anything is
// dialed or spent.
func TestDepositArgumentErrors(t *testing.T) {
	path := writeEnv(t)

	cases := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{
			name:   "too many validators",
			args:   []string{"--nodes", "2", "--num-per-node", "70000"},
			errMsg: "too large",
		},
		{
			name:   "bad withdrawal address",
			args:   []string{"--nodes", "2", "--withdraw-0x01-addr", "0x1234"},
			errMsg: "is not an address",
		},
		{
			name:   "missing key file",
			args:   []string{"--nodes", "2", "--wallet-seckey-path", filepath.Join(t.TempDir(), "absent")},
			errMsg: "absent",
		},
		{
			name:   "missing nodes",
			args:   []string{"--num-per-node", "1"},
			errMsg: flagNodes,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := run(t, path, append([]string{"deposit"}, tc.args...)...)
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func peerPort(t *testing.T, p *unittest.FakePeer) int {
	t.Helper()
	u, err := url.Parse(p.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return port
}

// TestBootPeers resolves the peers of node 3 from online node 2 served by fake
// execution and beacon endpoints.
func TestBootPeers(t *testing.T) {
	enode := unittest.EnodeFixture(t)
	enr := unittest.ENRFixture(t)
	peerID := unittest.PeerIDFixture(t)
	el := unittest.NewFakeExecutionPeer(t, enode)
	cl := unittest.NewFakeBeaconPeer(t, enr, peerID)

	peer := testNode(2, false)
	peer.Ports.ELRPC = peerPort(t, el)
	peer.Ports.CLBeaconRPC = peerPort(t, cl)
	f := &inventory.File{
		Nodes:  []model.Node{peer, testNode(3, false)},
		Online: []uint64{2},
		CustomData: map[uint64]json.RawMessage{
			3: json.RawMessage(`{"el_kind":"Reth","deposits":{}}`),
		},
	}
	path := filepath.Join(t.TempDir(), "env.json")
	require.NoError(t, inventory.WriteFile(path, f))

	out, _, err := run(t, path, "boot-peers", "--node", "3")
	require.NoError(t, err)
	require.Contains(t, out, "execution_bootnodes: "+enode)
	require.Contains(t, out, "consensus_bootnodes: "+enr)
	require.Contains(t, out, "consensus_trusted_peers: "+peerID)
	require.Contains(t, out, "checkpoint_sync_url: "+peer.BeaconRPC())
	require.Contains(t, out, "--trusted-peers="+enode, "reth trusts its execution bootnodes")
	require.Contains(t, out, "--checkpoint-sync-url="+peer.BeaconRPC())

	t.Run("sync from genesis", func(t *testing.T) {
		t.Setenv("NBNET_NODE_SYNC_FROM_GENESIS", "yes")
		out, _, err := run(t, path, "boot-peers", "--node", "3")
		require.NoError(t, err)
		require.Contains(t, out, "checkpoint_sync_url: \n")
		require.Contains(t, out, "--allow-insecure-genesis-sync")
	})

	t.Run("first node boots standalone", func(t *testing.T) {
		before := el.Hits() + cl.Hits()
		out, _, err := run(t, path, "boot-peers", "--node", "2")
		require.NoError(t, err)
		require.Contains(t, out, "execution_bootnodes: \n")
		require.Equal(t, before, el.Hits()+cl.Hits(), "no peer is queried for the lowest node")
	})

	t.Run("unknown node", func(t *testing.T) {
		_, _, err := run(t, path, "boot-peers", "--node", "9")
		require.ErrorIs(t, err, inventory.ErrNodeNotFound)
	})
}

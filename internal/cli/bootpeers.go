package cli

import (
	"fmt"
	"strings"

	"github.com/PolyhedraZK/nbnet/internal/bootstrap"
	"github.com/PolyhedraZK/nbnet/internal/inventory"
	"github.com/PolyhedraZK/nbnet/internal/launch"
	"github.com/PolyhedraZK/nbnet/internal/ledger"
	"github.com/PolyhedraZK/nbnet/internal/peerrpc"
	"github.com/urfave/cli/v2"
)

const (
	flagNode    = "node"
	flagTimeout = "timeout"
)

func bootPeersCommand() *cli.Command {
	return &cli.Command{
		Name:  "boot-peers",
		Usage: "resolve the boot peers a starting node would use and print its peer launch flags",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:     flagNode,
				Usage:    "id of the starting node",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  flagTimeout,
				Usage: "overall resolution budget",
				Value: bootstrap.DefaultTimeout,
			},
		},
		Action: runBootPeers,
	}
}

func runBootPeers(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	id := c.Uint64(flagNode)
	if _, ok := e.inv.Node(id); !ok {
		return fmt.Errorf("node %d: %w", id, inventory.ErrNodeNotFound)
	}

	resolver := bootstrap.NewResolver(e.logger, e.inv, peerrpc.NewClient(e.logger),
		bootstrap.WithTimeout(c.Duration(flagTimeout)))
	set := resolver.Resolve(c.Context, id)

	blob, err := e.keeper.Load(c.Context, id)
	if err != nil {
		return err
	}
	in := launch.FromBootPeers(set, bool(e.settings.NodeSyncFromGenesis))

	w := c.App.Writer
	fmt.Fprintf(w, "execution_bootnodes: %s\n", set.ExecutionBootnodes)
	fmt.Fprintf(w, "consensus_bootnodes: %s\n", set.ConsensusBootnodes)
	fmt.Fprintf(w, "consensus_trusted_peers: %s\n", set.ConsensusTrustedPeers)
	fmt.Fprintf(w, "checkpoint_sync_url: %s\n", in.CheckpointSyncURL)
	fmt.Fprintf(w, "el_flags: %s\n", strings.Join(in.ExecutionFlags(ledger.Kind(blob)), " "))
	fmt.Fprintf(w, "cl_flags: %s\n", strings.Join(in.BeaconFlags(), " "))
	return nil
}

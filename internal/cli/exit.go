package cli

import (
	"fmt"

	"github.com/PolyhedraZK/nbnet/internal/exit"
	"github.com/PolyhedraZK/nbnet/internal/keytool"
	"github.com/urfave/cli/v2"
)

func exitCommand() *cli.Command {
	return &cli.Command{
		Name:  "exit",
		Usage: "voluntarily exit every validator deposited on nodes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagNodes,
				Usage:    `"all" or comma separated node ids`,
				Required: true,
			},
			&cli.BoolFlag{
				Name:  flagAsync,
				Usage: "do not wait for exits to be observed on chain",
			},
		},
		Action: runExit,
	}
}

func runExit(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	nodes, err := e.inv.Select(c.String(flagNodes))
	if err != nil {
		return err
	}

	coord, err := exit.NewCoordinator(
		e.logger,
		exit.Config{TestnetDir: e.settings.GenesisDir(), ScratchDir: e.settings.ScratchDir},
		keytool.NewLighthouse(e.logger, e.settings.LighthouseBin),
		e.keeper,
	)
	if err != nil {
		return err
	}

	report, err := coord.Exit(c.Context, exit.Request{Nodes: nodes, Wait: !c.Bool(flagAsync)})
	for _, n := range nodes {
		for _, p := range report.Exited[n.ID] {
			fmt.Fprintf(c.App.Writer, "node %d: exited index %d of %q\n", n.ID, p.Index, p.Mnemonic)
		}
	}
	if err != nil && len(report.Failures) == 0 {
		return err
	}

	failures := make([]error, len(report.Failures))
	for i, f := range report.Failures {
		failures[i] = f
	}
	return failureExit(c, "exits", failures)
}

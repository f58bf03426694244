package cli

import (
	"fmt"

	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/urfave/cli/v2"
)

const flagKind = "kind"

func switchELCommand() *cli.Command {
	return &cli.Command{
		Name:  "switch-el",
		Usage: "record a different execution client kind for nodes; takes effect on their next start",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagNodes,
				Usage:    `"all" or comma separated node ids`,
				Required: true,
			},
			&cli.StringFlag{
				Name:     flagKind,
				Usage:    "geth or reth",
				Required: true,
			},
		},
		Action: runSwitchEL,
	}
}

func runSwitchEL(c *cli.Context) error {
	kind, err := model.ParseExecutionClientKind(c.String(flagKind))
	if err != nil {
		return err
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	nodes, err := e.inv.Select(c.String(flagNodes))
	if err != nil {
		return err
	}

	for _, n := range nodes {
		if err := e.keeper.SetKind(c.Context, n.ID, kind); err != nil {
			return fmt.Errorf("switch node %d to %s: %w", n.ID, kind, err)
		}
		e.logger.Info().Uint64("node_id", n.ID).Stringer("kind", kind).Msg("execution client switched")
		fmt.Fprintf(c.App.Writer, "node %d: %s\n", n.ID, kind)
	}
	return nil
}

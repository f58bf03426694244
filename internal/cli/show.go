package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/PolyhedraZK/nbnet/internal/ledger"
	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/urfave/cli/v2"
)

const (
	flagCleanUp   = "clean-up"
	flagWriteBack = "write-back"
)

// nodeView is one node as printed by show.
type nodeView struct {
	ID         uint64                    `json:"id"`
	Host       string                    `json:"host"`
	Reserved   bool                      `json:"reserved,omitempty"`
	Online     bool                      `json:"online"`
	Kind       model.ExecutionClientKind `json:"el_kind"`
	Validators int                       `json:"validators"`
	Deposits   ledger.Deposits           `json:"deposits"`
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "print every node with its execution client kind and deposited validators",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagCleanUp,
				Usage: "drop mnemonics without validators from the output",
			},
			&cli.BoolFlag{
				Name:  flagWriteBack,
				Usage: "with --" + flagCleanUp + ", also store the cleaned ledgers",
			},
		},
		Action: runShow,
	}
}

func runShow(c *cli.Context) error {
	cleanUp, writeBack := c.Bool(flagCleanUp), c.Bool(flagWriteBack)
	if writeBack && !cleanUp {
		return fmt.Errorf("--%s requires --%s", flagWriteBack, flagCleanUp)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}

	online := e.inv.OnlineNodeIDs()
	var views []nodeView
	for _, n := range e.inv.Nodes() {
		blob, err := e.keeper.Load(c.Context, n.ID)
		if err != nil {
			return err
		}
		if cleanUp {
			blob = ledger.Prune(blob)
			if writeBack {
				if err := e.keeper.Prune(c.Context, n.ID); err != nil {
					return err
				}
			}
		}

		views = append(views, nodeView{
			ID:         n.ID,
			Host:       n.Host,
			Reserved:   n.Reserved,
			Online:     slices.Contains(online, n.ID),
			Kind:       ledger.Kind(blob),
			Validators: blob.Count(),
			Deposits:   depositsOf(blob),
		})
	}

	out, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return fmt.Errorf("encode nodes: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}

func depositsOf(b *ledger.Blob) ledger.Deposits {
	if b == nil || b.Deposits == nil {
		return ledger.Deposits{}
	}
	return b.Deposits
}

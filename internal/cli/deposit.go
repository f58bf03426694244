package cli

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/PolyhedraZK/nbnet/internal/config"
	"github.com/PolyhedraZK/nbnet/internal/contracts"
	"github.com/PolyhedraZK/nbnet/internal/deposit"
	"github.com/PolyhedraZK/nbnet/internal/keytool"
	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

const (
	flagNumPerNode    = "num-per-node"
	flagWalletKeyPath = "wallet-seckey-path"
	flagWithdrawAddr  = "withdraw-0x01-addr"
)

func depositCommand() *cli.Command {
	return &cli.Command{
		Name:  "deposit",
		Usage: "register new validators on nodes and fund them through the deposit contract",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagNodes,
				Usage:    `"all" or comma separated node ids`,
				Required: true,
			},
			&cli.UintFlag{
				Name:  flagNumPerNode,
				Usage: "validators per node; 0 picks a random count in [1, 20]",
			},
			&cli.StringFlag{
				Name:  flagWalletKeyPath,
				Usage: "file holding the hex private key that funds the deposits; defaults to the first premined account",
			},
			&cli.StringFlag{
				Name:  flagWithdrawAddr,
				Usage: "0x01 withdrawal and fee recipient address; defaults to the funding address",
			},
			&cli.BoolFlag{
				Name:  flagAsync,
				Usage: "do not wait for deposit receipts",
			},
		},
		Action: runDeposit,
	}
}

func runDeposit(c *cli.Context) error {
	num := c.Uint(flagNumPerNode)
	if num > 0xffff {
		return fmt.Errorf("--%s %d is too large", flagNumPerNode, num)
	}

	var withdrawal *common.Address
	if s := c.String(flagWithdrawAddr); s != "" {
		if !common.IsHexAddress(s) {
			return fmt.Errorf("--%s %q is not an address", flagWithdrawAddr, s)
		}
		addr := common.HexToAddress(s)
		withdrawal = &addr
	}

	var key *ecdsa.PrivateKey
	if path := c.String(flagWalletKeyPath); path != "" {
		k, err := deposit.LoadKeyFile(path)
		if err != nil {
			return err
		}
		key = k
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	nodes, err := e.inv.Select(c.String(flagNodes))
	if err != nil {
		return err
	}

	testnet, err := config.LoadTestnetConfig(e.settings.GenesisDir())
	if err != nil {
		return err
	}
	contract, err := contracts.LoadDepositContract(e.settings.DepositContractABI)
	if err != nil {
		return err
	}

	ctx := c.Context
	chain, err := deposit.Dial(ctx, nodes[0].ExecutionRPC())
	if err != nil {
		return err
	}
	defer chain.Close()

	sub, err := deposit.NewSubmitter(
		e.logger,
		deposit.Config{
			ContractAddress: testnet.DepositContract(),
			TestnetDir:      e.settings.GenesisDir(),
			ScratchDir:      e.settings.ScratchDir,
		},
		keytool.NewLighthouse(e.logger, e.settings.LighthouseBin),
		contract,
		chain,
		e.keeper,
		e.inv,
	)
	if err != nil {
		return err
	}

	failures := depositAll(ctx, sub, nodes, deposit.Request{
		Count:             uint16(num),
		Key:               key,
		WithdrawalAddress: withdrawal,
		Async:             c.Bool(flagAsync),
	}, func(r deposit.Report) {
		for _, i := range r.Deposited {
			fmt.Fprintf(c.App.Writer, "node %d: deposited index %d of %q in %s\n",
				r.NodeID, i, r.Mnemonic, r.Transactions[i].Hex())
		}
	})
	return failureExit(c, "deposits", failures)
}

// depositAll runs one batch per node and collects every failure, one per
// validator when the batch got that far and one per node otherwise.
func depositAll(ctx context.Context, sub *deposit.Submitter, nodes []model.Node, tmpl deposit.Request, onReport func(deposit.Report)) []error {
	var failures []error
	for _, n := range nodes {
		req := tmpl
		req.Node = n
		report, err := sub.Deposit(ctx, req)
		onReport(report)
		switch {
		case len(report.Failures) > 0:
			for _, f := range report.Failures {
				failures = append(failures, f)
			}
		case err != nil:
			failures = append(failures, fmt.Errorf("node %d: %w", n.ID, err))
		}
	}
	return failures
}

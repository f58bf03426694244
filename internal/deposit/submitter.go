// Package deposit registers new validators for a node: it derives keys from a
// fresh mnemonic, loads them into the node's validator client and funds each
// one through the deposit contract.
package deposit

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"math/rand/v2"
	"os"
	"time"

	"github.com/PolyhedraZK/nbnet/internal/contracts"
	"github.com/PolyhedraZK/nbnet/internal/keytool"
	"github.com/PolyhedraZK/nbnet/internal/ledger"
	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	// MaxRandomCount bounds the validator count picked when a request asks for zero.
	MaxRandomCount = 20
	// DefaultReceiptPollInterval is the wait between two receipt lookups.
	DefaultReceiptPollInterval = time.Second
)

var (
	// ErrReservedNode is returned for nodes owned by the environment itself.
	ErrReservedNode = errors.New("reserved node does not take deposits")
	// ErrInsufficientFunds is returned when the funding account cannot cover the batch.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrTransactionFailed marks a deposit that was not sent, not mined or reverted.
	ErrTransactionFailed = errors.New("deposit transaction failed")
	// ErrInvalidDepositData is returned when the key tool produced unusable deposit data.
	ErrInvalidDepositData = errors.New("invalid deposit data")
)

var gweiToWei = big.NewInt(1_000_000_000)

// Config holds the chain level settings of a Submitter.
type Config struct {
	// ContractAddress is the deposit contract.
	ContractAddress common.Address `validate:"required"`

	// TestnetDir holds the chain config the key tool needs.
	TestnetDir string `validate:"required"`

	// ScratchDir is the parent of per-batch working directories. Empty means
	// the system temp dir.
	ScratchDir string

	// ReceiptPollInterval is the wait between receipt lookups in synchronous mode.
	ReceiptPollInterval time.Duration `validate:"gte=0"`
}

// Request asks for Count new validators on Node.
type Request struct {
	Node model.Node

	// Count is the number of validators. Zero picks a random count in [1, MaxRandomCount].
	Count uint16

	// Key funds the deposits. Nil asks the Submitter's AccountResolver.
	Key *ecdsa.PrivateKey

	// WithdrawalAddress receives withdrawals and fees. Nil means the funding address.
	WithdrawalAddress *common.Address

	// Async returns after broadcast instead of waiting for receipts.
	Async bool
}

// Failure is one validator that did not get deposited.
type Failure struct {
	NodeID   uint64
	Mnemonic string
	Index    uint16
	Err      error
}

func (f Failure) Error() string {
	return fmt.Sprintf("node %d, mnemonic %q, index %d: %v", f.NodeID, f.Mnemonic, f.Index, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report is the outcome of one batch.
type Report struct {
	NodeID   uint64
	Mnemonic string
	// Deposited lists indices recorded in the ledger, ascending.
	Deposited []uint16
	// Transactions maps deposited indices to their transaction hash.
	Transactions map[uint16]common.Hash
	Failures     []Failure
}

// Err joins the failures, nil when every deposit went through.
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

// Submitter runs deposit batches.
type Submitter struct {
	logger   zerolog.Logger
	cfg      Config
	keys     keytool.Manager
	contract *contracts.DepositContract
	chain    ChainClient
	keeper   *ledger.Keeper
	accounts AccountResolver
	randN    func(n int) int
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithRandomSource replaces the source used to pick a count for zero-count requests.
// f returns a value in [0, n).
func WithRandomSource(f func(n int) int) Option {
	return func(s *Submitter) {
		s.randN = f
	}
}

// NewSubmitter creates a Submitter. accounts may be nil when every request carries a key.
func NewSubmitter(
	logger zerolog.Logger,
	cfg Config,
	keys keytool.Manager,
	contract *contracts.DepositContract,
	chain ChainClient,
	keeper *ledger.Keeper,
	accounts AccountResolver,
	opts ...Option,
) (*Submitter, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.ReceiptPollInterval == 0 {
		cfg.ReceiptPollInterval = DefaultReceiptPollInterval
	}

	s := &Submitter{
		logger:   logger.With().Str("component", "deposit-submitter").Logger(),
		cfg:      cfg,
		keys:     keys,
		contract: contract,
		chain:    chain,
		keeper:   keeper,
		accounts: accounts,
		randN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Deposit runs one batch for req.Node. The returned error is non-nil when the
// batch was rejected as a whole or when any deposit failed; the report lists
// what went through either way. Nothing is sent when the batch is rejected.
// A revert or receipt failure lets the batch continue, but a failure before
// broadcast stops it, since later nonces would gap; the remaining entries are
// reported as not attempted.
func (s *Submitter) Deposit(ctx context.Context, req Request) (Report, error) {
	report := Report{NodeID: req.Node.ID, Transactions: make(map[uint16]common.Hash)}
	lg := s.logger.With().Uint64("node_id", req.Node.ID).Logger()

	if req.Node.Reserved {
		return report, fmt.Errorf("node %d: %w", req.Node.ID, ErrReservedNode)
	}

	key, err := s.fundingKey(ctx, req.Key)
	if err != nil {
		return report, err
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	withdrawal := from
	if req.WithdrawalAddress != nil {
		withdrawal = *req.WithdrawalAddress
	}

	count := req.Count
	if count == 0 {
		count = uint16(s.randN(MaxRandomCount)) + 1
	}

	mnemonic, err := s.keys.NewMnemonic()
	if err != nil {
		return report, fmt.Errorf("create mnemonic: %w", err)
	}
	report.Mnemonic = mnemonic

	workDir, err := os.MkdirTemp(s.cfg.ScratchDir, fmt.Sprintf("deposit-%d-*", req.Node.ID))
	if err != nil {
		return report, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			lg.Warn().Err(err).Str("dir", workDir).Msg("failed to remove work dir")
		}
	}()

	batch, err := s.keys.CreateValidators(ctx, keytool.CreateRequest{
		Mnemonic:          mnemonic,
		FirstIndex:        0,
		Count:             count,
		WithdrawalAddress: withdrawal,
		FeeRecipient:      withdrawal,
		TestnetDir:        s.cfg.TestnetDir,
		OutputDir:         workDir,
	})
	if err != nil {
		return report, fmt.Errorf("create validators: %w", err)
	}
	for i, e := range batch.Entries {
		if err := VerifyEntry(e, withdrawal); err != nil {
			return report, fmt.Errorf("entry %d: %w: %v", i, ErrInvalidDepositData, err)
		}
	}

	total := new(big.Int)
	for _, e := range batch.Entries {
		total.Add(total, gweiToWeiAmount(e.Amount))
	}
	balance, err := s.chain.BalanceAt(ctx, from, nil)
	if err != nil {
		return report, fmt.Errorf("get balance of %s: %w", from.Hex(), err)
	}
	if balance.Cmp(total) <= 0 {
		return report, fmt.Errorf("%w: %s holds %s wei, batch needs more than %s wei",
			ErrInsufficientFunds, from.Hex(), balance, total)
	}

	err = s.keys.ImportValidators(ctx, keytool.ImportRequest{
		ValidatorsFile: batch.ValidatorsPath,
		TestnetDir:     s.cfg.TestnetDir,
		DataDir:        req.Node.ValidatorDataDir(),
		ClientURL:      req.Node.ValidatorRPC(),
		TokenPath:      req.Node.ValidatorAPITokenPath(),
	})
	if err != nil {
		return report, fmt.Errorf("import validators into node %d: %w", req.Node.ID, err)
	}

	chainID, err := s.chain.ChainID(ctx)
	if err != nil {
		return report, fmt.Errorf("get chain id: %w", err)
	}
	gasPrice, err := s.chain.SuggestGasPrice(ctx)
	if err != nil {
		return report, fmt.Errorf("get gas price: %w", err)
	}
	nonce, err := s.chain.PendingNonceAt(ctx, from)
	if err != nil {
		return report, fmt.Errorf("get nonce of %s: %w", from.Hex(), err)
	}

	signer := types.LatestSignerForChainID(chainID)
	for i, e := range batch.Entries {
		index := uint16(i)
		entryLog := lg.With().Uint16("index", index).Uint64("nonce", nonce+uint64(i)).Logger()

		hash, broadcast, err := s.submit(ctx, key, signer, nonce+uint64(i), gasPrice, e, req.Async)
		if err != nil {
			entryLog.Error().Err(err).Msg("deposit failed")
			report.Failures = append(report.Failures, Failure{
				NodeID:   req.Node.ID,
				Mnemonic: mnemonic,
				Index:    index,
				Err:      fmt.Errorf("%w: %v", ErrTransactionFailed, err),
			})
			if !broadcast {
				// The nonce was not consumed, every later transaction would wait on it.
				report.Failures = append(report.Failures, s.skipRest(req.Node.ID, mnemonic, i+1, len(batch.Entries))...)
				break
			}
			continue
		}

		if err := s.keeper.Append(ctx, req.Node.ID, ledger.Deposits{mnemonic: ledger.NewIndexSet(index)}); err != nil {
			report.Failures = append(report.Failures, Failure{
				NodeID:   req.Node.ID,
				Mnemonic: mnemonic,
				Index:    index,
				Err:      fmt.Errorf("record deposit %s: %w", hash.Hex(), err),
			})
			continue
		}
		report.Deposited = append(report.Deposited, index)
		report.Transactions[index] = hash
		entryLog.Info().Str("tx", hash.Hex()).Bool("async", req.Async).Msg("deposit submitted")
	}

	return report, report.Err()
}

func (s *Submitter) fundingKey(ctx context.Context, key *ecdsa.PrivateKey) (*ecdsa.PrivateKey, error) {
	if key != nil {
		return key, nil
	}
	if s.accounts == nil {
		return nil, errors.New("no funding key given and no default account configured")
	}
	key, err := s.accounts.DefaultAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve default funding account: %w", err)
	}
	return key, nil
}

// submit signs and sends one deposit. broadcast reports whether the transaction
// reached the node, i.e. whether its nonce is spent.
func (s *Submitter) submit(
	ctx context.Context,
	key *ecdsa.PrivateKey,
	signer types.Signer,
	nonce uint64,
	gasPrice *big.Int,
	e keytool.DepositEntry,
	async bool,
) (common.Hash, bool, error) {
	var root [32]byte
	copy(root[:], e.DepositDataRoot)
	data, err := s.contract.EncodeDeposit(e.PubKey, e.WithdrawalCredentials, e.Signature, root)
	if err != nil {
		return common.Hash{}, false, err
	}

	to := s.cfg.ContractAddress
	value := gweiToWeiAmount(e.Amount)
	gas, err := s.chain.EstimateGas(ctx, ethereum.CallMsg{
		From:     crypto.PubkeyToAddress(key.PublicKey),
		To:       &to,
		GasPrice: gasPrice,
		Value:    value,
		Data:     data,
	})
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("estimate gas: %w", err)
	}

	tx, err := types.SignNewTx(key, signer, &types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    value,
		Data:     data,
	})
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("sign transaction: %w", err)
	}
	if err := s.chain.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, false, fmt.Errorf("send transaction: %w", err)
	}
	if async {
		return tx.Hash(), true, nil
	}

	receipt, err := s.waitMined(ctx, tx.Hash())
	if err != nil {
		return tx.Hash(), true, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), true, fmt.Errorf("transaction %s reverted in block %s", tx.Hash().Hex(), receipt.BlockNumber)
	}
	return tx.Hash(), true, nil
}

// waitMined polls for the receipt of hash until it is found or ctx ends.
func (s *Submitter) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(s.cfg.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.chain.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("get receipt of %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// skipRest reports entries [from, to) as not attempted.
func (s *Submitter) skipRest(nodeID uint64, mnemonic string, from, to int) []Failure {
	var failures []Failure
	for i := from; i < to; i++ {
		failures = append(failures, Failure{
			NodeID:   nodeID,
			Mnemonic: mnemonic,
			Index:    uint16(i),
			Err:      fmt.Errorf("%w: not attempted after an earlier transaction was not sent", ErrTransactionFailed),
		})
	}
	return failures
}

func gweiToWeiAmount(gwei uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(gwei), gweiToWei)
}

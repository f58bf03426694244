package keytool

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/PolyhedraZK/nbnet/internal/node"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/tyler-smith/go-bip39"
)

const (
	// DefaultBinary is the lighthouse executable looked up in PATH.
	DefaultBinary = "lighthouse"

	mnemonicFile       = "mnemonic.txt"
	depositsFile       = "deposits.json"
	validatorsFile     = "validators.json"
	votingKeystoreFile = "voting-keystore.json"
)

// pubkeyPattern matches a BLS public key as printed by lighthouse.
var pubkeyPattern = regexp.MustCompile(`0x[0-9a-fA-F]{96}`)

// Lighthouse implements Manager with the lighthouse binary.
type Lighthouse struct {
	logger   zerolog.Logger
	binary   string
	validate *validator.Validate
}

var _ Manager = (*Lighthouse)(nil)

// NewLighthouse creates a Manager running binary. An empty binary selects DefaultBinary.
func NewLighthouse(logger zerolog.Logger, binary string) *Lighthouse {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Lighthouse{
		logger:   logger.With().Str("component", "keytool").Str("binary", binary).Logger(),
		binary:   binary,
		validate: validator.New(),
	}
}

// NewMnemonic returns a fresh English mnemonic from 256 bits of entropy.
func (l *Lighthouse) NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// CreateValidators runs "validator-manager create" and reads back the deposit data.
func (l *Lighthouse) CreateValidators(ctx context.Context, req CreateRequest) (*Batch, error) {
	if err := l.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid create request: %w", err)
	}
	if err := os.MkdirAll(req.OutputDir, 0o700); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	mnemonicPath := filepath.Join(req.OutputDir, mnemonicFile)
	if err := os.WriteFile(mnemonicPath, []byte(req.Mnemonic), 0o600); err != nil {
		return nil, fmt.Errorf("write mnemonic file: %w", err)
	}
	defer os.Remove(mnemonicPath)

	_, err := l.run(ctx, "",
		"validator-manager", "create",
		"--testnet-dir", req.TestnetDir,
		"--mnemonic-path", mnemonicPath,
		"--first-index", strconv.FormatUint(uint64(req.FirstIndex), 10),
		"--count", strconv.FormatUint(uint64(req.Count), 10),
		"--eth1-withdrawal-address", req.WithdrawalAddress.Hex(),
		"--suggested-fee-recipient", req.FeeRecipient.Hex(),
		"--output-path", req.OutputDir,
	)
	if err != nil {
		return nil, err
	}

	batch := &Batch{
		DepositsPath:   filepath.Join(req.OutputDir, depositsFile),
		ValidatorsPath: filepath.Join(req.OutputDir, validatorsFile),
	}
	batch.Entries, err = ReadDepositEntries(batch.DepositsPath)
	if err != nil {
		return nil, err
	}
	if len(batch.Entries) != int(req.Count) {
		return nil, fmt.Errorf("key tool produced %d deposit entries, want %d", len(batch.Entries), req.Count)
	}
	if _, err := os.Stat(batch.ValidatorsPath); err != nil {
		return nil, fmt.Errorf("validators file missing: %w", err)
	}

	l.logger.Info().Uint16("count", req.Count).Str("output", req.OutputDir).Msg("validators created")
	return batch, nil
}

// ImportValidators runs "validator-manager import" against the validator client API.
func (l *Lighthouse) ImportValidators(ctx context.Context, req ImportRequest) error {
	if err := l.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid import request: %w", err)
	}
	if _, err := node.ReadAPIToken(req.TokenPath); err != nil {
		return fmt.Errorf("validator client api token: %w", err)
	}

	_, err := l.run(ctx, "",
		"validator-manager", "import",
		"--testnet-dir", req.TestnetDir,
		"--datadir", req.DataDir,
		"--validators-file", req.ValidatorsFile,
		"--vc-url", req.ClientURL,
		"--vc-token", req.TokenPath,
	)
	if err != nil {
		return err
	}
	l.logger.Info().Str("vc_url", req.ClientURL).Msg("validators imported")
	return nil
}

// RecoverKeystore runs "account validator recover" for exactly one index. The
// mnemonic is passed on stdin.
func (l *Lighthouse) RecoverKeystore(ctx context.Context, req RecoverRequest) (*Keystore, error) {
	if err := l.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid recover request: %w", err)
	}
	if err := os.MkdirAll(req.OutputDir, 0o700); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	out, err := l.run(ctx, req.Mnemonic+"\n",
		"account", "validator", "recover",
		"--stdin-inputs",
		"--testnet-dir", req.TestnetDir,
		"--datadir", req.OutputDir,
		"--first-index", strconv.FormatUint(uint64(req.Index), 10),
		"--count", "1",
	)
	if err != nil {
		return nil, err
	}

	pubkey, err := ParseRecoveredPubKey(out)
	if err != nil {
		return nil, err
	}

	ks := &Keystore{
		PubKey:       pubkey,
		KeystorePath: filepath.Join(req.OutputDir, "validators", pubkey, votingKeystoreFile),
		PasswordPath: filepath.Join(req.OutputDir, "secrets", pubkey),
	}
	for _, p := range []string{ks.KeystorePath, ks.PasswordPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("recovered keystore incomplete: %w", err)
		}
	}
	return ks, nil
}

// ParseRecoveredPubKey extracts the public key reported by "account validator recover".
// The last key printed wins.
func ParseRecoveredPubKey(output []byte) (string, error) {
	matches := pubkeyPattern.FindAllString(string(output), -1)
	if len(matches) == 0 {
		return "", fmt.Errorf("no validator public key in key tool output: %q", strings.TrimSpace(string(output)))
	}
	return matches[len(matches)-1], nil
}

// SubmitExit runs "account validator exit" without interactive confirmation.
func (l *Lighthouse) SubmitExit(ctx context.Context, req ExitRequest) error {
	if err := l.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid exit request: %w", err)
	}

	args := []string{
		"account", "validator", "exit",
		"--beacon-node", req.BeaconURL,
		"--testnet-dir", req.TestnetDir,
		"--keystore", req.Keystore.KeystorePath,
		"--password-file", req.Keystore.PasswordPath,
		"--no-confirmation",
	}
	if !req.Wait {
		args = append(args, "--no-wait")
	}

	if _, err := l.run(ctx, "", args...); err != nil {
		return err
	}
	l.logger.Info().Str("pubkey", req.Keystore.PubKey).Bool("wait", req.Wait).Msg("voluntary exit submitted")
	return nil
}

// run executes the binary and returns its combined output. stdin is written to
// the process when not empty.
func (l *Lighthouse) run(ctx context.Context, stdin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, l.binary, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	l.logger.Debug().Strs("args", args).Msg("running key tool")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w\nOutput: %s", l.binary, strings.Join(subcommand(args), " "), err, string(output))
	}
	return output, nil
}

// subcommand returns the leading non-flag arguments.
func subcommand(args []string) []string {
	for i, a := range args {
		if strings.HasPrefix(a, "--") {
			return args[:i]
		}
	}
	return args
}

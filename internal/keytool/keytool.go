// Package keytool drives the external validator key tool: mnemonic creation,
// key derivation, import into a validator client, keystore recovery and
// voluntary exits.
package keytool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/PolyhedraZK/nbnet/internal/utils"
	"github.com/ethereum/go-ethereum/common"
)

// MnemonicWords is the length of every generated mnemonic.
const MnemonicWords = 24

// Manager is the validator key tool.
type Manager interface {
	// NewMnemonic returns a fresh 24-word mnemonic.
	NewMnemonic() (string, error)
	// CreateValidators derives validators [FirstIndex, FirstIndex+Count) and returns their deposit data.
	CreateValidators(ctx context.Context, req CreateRequest) (*Batch, error)
	// ImportValidators loads derived validators into a running validator client.
	ImportValidators(ctx context.Context, req ImportRequest) error
	// RecoverKeystore re-derives the voting keystore of one validator.
	RecoverKeystore(ctx context.Context, req RecoverRequest) (*Keystore, error)
	// SubmitExit publishes a voluntary exit signed with the keystore.
	SubmitExit(ctx context.Context, req ExitRequest) error
}

// CreateRequest asks for deposit data of Count validators.
type CreateRequest struct {
	Mnemonic          string         `validate:"required"`
	FirstIndex        uint16
	Count             uint16         `validate:"required,gt=0"`
	WithdrawalAddress common.Address `validate:"required"`
	FeeRecipient      common.Address `validate:"required"`
	TestnetDir        string         `validate:"required"`
	OutputDir         string         `validate:"required"`
}

// ImportRequest asks to load a validators file into a validator client.
type ImportRequest struct {
	ValidatorsFile string `validate:"required"`
	TestnetDir     string `validate:"required"`
	DataDir        string `validate:"required"`
	ClientURL      string `validate:"required,url"`
	TokenPath      string `validate:"required"`
}

// RecoverRequest asks for the keystore of validator Index of Mnemonic.
type RecoverRequest struct {
	Mnemonic   string `validate:"required"`
	Index      uint16
	TestnetDir string `validate:"required"`
	OutputDir  string `validate:"required"`
}

// ExitRequest asks to exit the validator owning Keystore.
type ExitRequest struct {
	Keystore   Keystore
	BeaconURL  string `validate:"required,url"`
	TestnetDir string `validate:"required"`
	// Wait blocks until the exit is observed on chain.
	Wait bool
}

// Keystore locates a recovered voting keystore and its password.
type Keystore struct {
	PubKey       string `validate:"required"`
	KeystorePath string `validate:"required"`
	PasswordPath string `validate:"required"`
}

// Batch is the output of one CreateValidators call.
type Batch struct {
	// DepositsPath is the deposit data file.
	DepositsPath string
	// ValidatorsPath is the file ImportValidators consumes.
	ValidatorsPath string
	// Entries are the parsed deposit data, in index order.
	Entries []DepositEntry
}

// DepositEntry is one element of a deposit data file. Amount is in gwei.
type DepositEntry struct {
	PubKey                utils.HexBytes `json:"pubkey"`
	WithdrawalCredentials utils.HexBytes `json:"withdrawal_credentials"`
	Amount                uint64         `json:"amount"`
	Signature             utils.HexBytes `json:"signature"`
	DepositMessageRoot    utils.HexBytes `json:"deposit_message_root"`
	DepositDataRoot       utils.HexBytes `json:"deposit_data_root"`
	ForkVersion           utils.HexBytes `json:"fork_version"`
	NetworkName           string         `json:"network_name,omitempty"`
	DepositCLIVersion     string         `json:"deposit_cli_version,omitempty"`
}

// ReadDepositEntries parses a deposit data file.
func ReadDepositEntries(path string) ([]DepositEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deposit data: %w", err)
	}
	var entries []DepositEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse deposit data %s: %w", path, err)
	}
	return entries, nil
}

// Package contracts provides the deposit contract interface used to register validators.
package contracts

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// DepositContractName is the contract name in the reference deposit contract source.
const DepositContractName = "DepositContract"

//go:embed deposit_contract.abi.json
var depositContractABI []byte

// DepositContract encodes calls to the beacon chain deposit contract.
type DepositContract struct {
	abi abi.ABI
}

// NewDepositContract returns the contract interface for the bundled ABI.
func NewDepositContract() (*DepositContract, error) {
	return parseDepositABI(bytes.NewReader(depositContractABI))
}

// LoadDepositContract returns the contract interface read from path. A ".sol"
// file is compiled with solc; anything else is read as ABI JSON. An empty path
// selects the bundled ABI.
func LoadDepositContract(path string) (*DepositContract, error) {
	if path == "" {
		return NewDepositContract()
	}

	if strings.EqualFold(filepath.Ext(path), ".sol") {
		compiled, err := CompileABI(path, DepositContractName)
		if err != nil {
			return nil, fmt.Errorf("compile deposit contract: %w", err)
		}
		return parseDepositABI(strings.NewReader(compiled))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deposit contract abi: %w", err)
	}
	return parseDepositABI(bytes.NewReader(raw))
}

func parseDepositABI(r io.Reader) (*DepositContract, error) {
	parsed, err := abi.JSON(r)
	if err != nil {
		return nil, fmt.Errorf("parse deposit contract abi: %w", err)
	}
	if _, ok := parsed.Methods[model.DepositMethod]; !ok {
		return nil, fmt.Errorf("deposit contract abi has no %q method", model.DepositMethod)
	}
	return &DepositContract{abi: parsed}, nil
}

// EncodeDeposit packs a call to deposit(pubkey, withdrawal_credentials, signature, deposit_data_root).
func (c *DepositContract) EncodeDeposit(pubkey, withdrawalCredentials, signature []byte, root [32]byte) ([]byte, error) {
	data, err := c.abi.Pack(model.DepositMethod, pubkey, withdrawalCredentials, signature, root)
	if err != nil {
		return nil, fmt.Errorf("pack deposit call: %w", err)
	}
	return data, nil
}

// DepositSelector returns the 4-byte method id of deposit.
func (c *DepositContract) DepositSelector() []byte {
	return c.abi.Methods[model.DepositMethod].ID
}

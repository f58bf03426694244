package deposit

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ChainClient is the subset of the execution JSON-RPC API deposits need.
// *ethclient.Client implements it.
type ChainClient interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var _ ChainClient = (*ethclient.Client)(nil)

// Dial connects to an execution client JSON-RPC endpoint.
func Dial(ctx context.Context, endpoint string) (*ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial execution client %s: %w", endpoint, err)
	}
	return c, nil
}

// AccountResolver supplies the funding key when a request names none.
type AccountResolver interface {
	DefaultAccount(ctx context.Context) (*ecdsa.PrivateKey, error)
}

// AccountResolverFunc adapts a function to AccountResolver.
type AccountResolverFunc func(ctx context.Context) (*ecdsa.PrivateKey, error)

// DefaultAccount calls f.
func (f AccountResolverFunc) DefaultAccount(ctx context.Context) (*ecdsa.PrivateKey, error) {
	return f(ctx)
}

// LoadKeyFile reads a hex encoded secp256k1 private key, with or without "0x".
func LoadKeyFile(path string) (*ecdsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse key file %s: %w", path, err)
	}
	return key, nil
}

// KeyFileAccount resolves to the key stored at path.
func KeyFileAccount(path string) AccountResolver {
	return AccountResolverFunc(func(context.Context) (*ecdsa.PrivateKey, error) {
		return LoadKeyFile(path)
	})
}

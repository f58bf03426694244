package unittest

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/PolyhedraZK/nbnet/internal/node"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// RandomAddress generates a random Ethereum address for testing.
//
// This function generates 20 cryptographically random bytes and converts
// them to a common.Address. It is useful for creating test fixtures where
// the specific address value doesn't matter.
//
// The function will fail the test if random byte generation fails.
func RandomAddress(t *testing.T) common.Address {
	t.Helper()

	b := make([]byte, 20)
	_, err := rand.Read(b)
	require.NoError(t, err, "failed to generate random bytes for address")

	return common.BytesToAddress(b)
}

// APITokenFixture writes a random validator client API token at the node's
// token path, as the validator client does on first start, and returns the path.
func APITokenFixture(t *testing.T, n model.Node) string {
	t.Helper()

	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	require.NoError(t, err, "failed to generate api token")

	path := n.ValidatorAPITokenPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(node.APITokenPrefix+hex.EncodeToString(secret)), 0o600))
	return path
}

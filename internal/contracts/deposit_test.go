package contracts_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolyhedraZK/nbnet/internal/contracts"
	"github.com/PolyhedraZK/nbnet/internal/unittest"
	"github.com/stretchr/testify/require"
)

// TestEncodeDeposit verifies the call data layout of deposit(bytes,bytes,bytes,bytes32).
func TestEncodeDeposit(t *testing.T) {
	c, err := contracts.NewDepositContract()
	require.NoError(t, err)

	pubkey := bytes.Repeat([]byte{0xaa}, 48)
	wc := bytes.Repeat([]byte{0xbb}, 32)
	sig := bytes.Repeat([]byte{0xcc}, 96)
	var root [32]byte
	root[0] = 0xdd

	data, err := c.EncodeDeposit(pubkey, wc, sig, root)
	require.NoError(t, err)

	require.Equal(t, []byte{0x22, 0x89, 0x51, 0x18}, data[:4])
	// 4 head words, then three length-prefixed byte arrays padded to 32 bytes.
	require.Len(t, data, 4+4*32+(32+64)+(32+32)+(32+96))
	require.Equal(t, root[:], data[4+3*32:4+4*32])
	require.True(t, bytes.Contains(data, pubkey))
	require.True(t, bytes.Contains(data, sig))
}

// TestLoadDepositContractDefault verifies an empty path falls back to the bundled ABI.
func TestLoadDepositContractDefault(t *testing.T) {
	c, err := contracts.LoadDepositContract("")
	require.NoError(t, err)
	require.Equal(t, []byte{0x22, 0x89, 0x51, 0x18}, c.DepositSelector())
}

// TestLoadDepositContractFromFile verifies ABI JSON files are accepted and validated.
func TestLoadDepositContractFromFile(t *testing.T) {
	tmp := unittest.NewTempDir(t)
	defer tmp.Remove()

	good := filepath.Join(tmp.Path(), "abi.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"inputs":[
		{"internalType":"bytes","name":"pubkey","type":"bytes"},
		{"internalType":"bytes","name":"withdrawal_credentials","type":"bytes"},
		{"internalType":"bytes","name":"signature","type":"bytes"},
		{"internalType":"bytes32","name":"deposit_data_root","type":"bytes32"}],
		"name":"deposit","outputs":[],"stateMutability":"payable","type":"function"}]`), 0o644))

	c, err := contracts.LoadDepositContract(good)
	require.NoError(t, err)
	require.Equal(t, []byte{0x22, 0x89, 0x51, 0x18}, c.DepositSelector())

	noDeposit := filepath.Join(tmp.Path(), "other.json")
	require.NoError(t, os.WriteFile(noDeposit, []byte(`[{"inputs":[],"name":"f","outputs":[],"stateMutability":"pure","type":"function"}]`), 0o644))
	_, err = contracts.LoadDepositContract(noDeposit)
	require.ErrorContains(t, err, `no "deposit" method`)

	_, err = contracts.LoadDepositContract(filepath.Join(tmp.Path(), "missing.json"))
	require.Error(t, err)
}

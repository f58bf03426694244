package unittest

import (
	"testing"

	"github.com/PolyhedraZK/nbnet/internal/keytool"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prysmaticlabs/prysm/v5/beacon-chain/core/signing"
	"github.com/prysmaticlabs/prysm/v5/config/params"
	ethpb "github.com/prysmaticlabs/prysm/v5/proto/prysm/v1alpha1"
	"github.com/prysmaticlabs/prysm/v5/runtime/interop"
	"github.com/stretchr/testify/require"
)

// DepositGwei is the amount of a full validator deposit.
const DepositGwei = 32_000_000_000

// DepositEntriesFixture returns count correctly signed deposit entries of amountGwei
// each, paying to withdrawal. Keys are the deterministic interop keys starting at
// index 0.
// WARNING: Keys are NOT production-safe.
func DepositEntriesFixture(t *testing.T, withdrawal common.Address, count int, amountGwei uint64) []keytool.DepositEntry {
	t.Helper()

	secretKeys, publicKeys, err := interop.DeterministicallyGenerateKeys(0, uint64(count))
	require.NoError(t, err, "failed to generate interop keys")

	cfg := params.BeaconConfig()
	forkVersion := cfg.GenesisForkVersion
	domain, err := signing.ComputeDomain(cfg.DomainDeposit, forkVersion, cfg.ZeroHash[:])
	require.NoError(t, err, "failed to compute deposit domain")

	wc := make([]byte, 32)
	wc[0] = cfg.ETH1AddressWithdrawalPrefixByte
	copy(wc[12:], withdrawal.Bytes())

	entries := make([]keytool.DepositEntry, count)
	for i := range secretKeys {
		msg := &ethpb.DepositMessage{
			PublicKey:             publicKeys[i].Marshal(),
			WithdrawalCredentials: wc,
			Amount:                amountGwei,
		}
		msgRoot, err := msg.HashTreeRoot()
		require.NoError(t, err)

		signingRoot, err := signing.ComputeSigningRoot(msg, domain)
		require.NoError(t, err)
		sig := secretKeys[i].Sign(signingRoot[:]).Marshal()

		data := &ethpb.Deposit_Data{
			PublicKey:             msg.PublicKey,
			WithdrawalCredentials: wc,
			Amount:                msg.Amount,
			Signature:             sig,
		}
		dataRoot, err := data.HashTreeRoot()
		require.NoError(t, err)

		entries[i] = keytool.DepositEntry{
			PubKey:                msg.PublicKey,
			WithdrawalCredentials: wc,
			Amount:                msg.Amount,
			Signature:             sig,
			DepositMessageRoot:    msgRoot[:],
			DepositDataRoot:       dataRoot[:],
			ForkVersion:           append([]byte(nil), forkVersion...),
		}
	}
	return entries
}

package deposit

import (
	"testing"

	"github.com/PolyhedraZK/nbnet/internal/keytool"
	"github.com/PolyhedraZK/nbnet/internal/unittest"
	ethpb "github.com/prysmaticlabs/prysm/v5/proto/prysm/v1alpha1"
	"github.com/stretchr/testify/require"
)

func TestVerifyEntry(t *testing.T) {
	withdrawal := unittest.RandomAddress(t)
	valid := unittest.DepositEntriesFixture(t, withdrawal, 2, unittest.DepositGwei)

	for _, e := range valid {
		require.NoError(t, VerifyEntry(e, withdrawal))
	}

	cases := []struct {
		name   string
		tamper func(e *keytool.DepositEntry)
		errMsg string
	}{
		{
			name:   "short pubkey",
			tamper: func(e *keytool.DepositEntry) { e.PubKey = e.PubKey[:47] },
			errMsg: "pubkey has 47 bytes",
		},
		{
			name:   "short signature",
			tamper: func(e *keytool.DepositEntry) { e.Signature = e.Signature[:10] },
			errMsg: "signature has 10 bytes",
		},
		{
			name:   "missing fork version",
			tamper: func(e *keytool.DepositEntry) { e.ForkVersion = nil },
			errMsg: "fork version",
		},
		{
			name:   "zero amount",
			tamper: func(e *keytool.DepositEntry) { e.Amount = 0 },
			errMsg: "amount is zero",
		},
		{
			name:   "changed amount",
			tamper: func(e *keytool.DepositEntry) { e.Amount = 1 },
			errMsg: "deposit data root mismatch",
		},
		{
			name: "bls credentials",
			tamper: func(e *keytool.DepositEntry) {
				e.WithdrawalCredentials = append([]byte{0x00}, e.WithdrawalCredentials[1:]...)
			},
			errMsg: "do not pay to",
		},
		{
			name:   "tampered root",
			tamper: func(e *keytool.DepositEntry) { e.DepositDataRoot = make([]byte, 32) },
			errMsg: "deposit data root mismatch",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := valid[0]
			tc.tamper(&e)
			require.ErrorContains(t, VerifyEntry(e, withdrawal), tc.errMsg)
		})
	}

	t.Run("wrong withdrawal address", func(t *testing.T) {
		require.ErrorContains(t, VerifyEntry(valid[0], unittest.RandomAddress(t)), "do not pay to")
	})
}

// TestVerifyEntryBadSignature re-roots an entry around a signature made by
// another key so that only the signature check rejects it.
func TestVerifyEntryBadSignature(t *testing.T) {
	withdrawal := unittest.RandomAddress(t)
	entries := unittest.DepositEntriesFixture(t, withdrawal, 2, unittest.DepositGwei)

	e := entries[0]
	e.Signature = entries[1].Signature
	root, err := (&ethpb.Deposit_Data{
		PublicKey:             e.PubKey,
		WithdrawalCredentials: e.WithdrawalCredentials,
		Amount:                e.Amount,
		Signature:             e.Signature,
	}).HashTreeRoot()
	require.NoError(t, err)
	e.DepositDataRoot = root[:]

	require.ErrorContains(t, VerifyEntry(e, withdrawal), "signature does not verify")
}

func TestWithdrawalCredentials(t *testing.T) {
	addr := unittest.RandomAddress(t)
	wc := WithdrawalCredentials(addr)

	require.Len(t, wc, 32)
	require.Equal(t, byte(0x01), wc[0])
	require.Equal(t, make([]byte, 11), wc[1:12])
	require.Equal(t, addr.Bytes(), wc[12:])
}

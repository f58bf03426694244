package deposit

import (
	"bytes"
	"fmt"

	"github.com/PolyhedraZK/nbnet/internal/keytool"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prysmaticlabs/prysm/v5/beacon-chain/core/signing"
	"github.com/prysmaticlabs/prysm/v5/config/params"
	"github.com/prysmaticlabs/prysm/v5/crypto/bls"
	ethpb "github.com/prysmaticlabs/prysm/v5/proto/prysm/v1alpha1"
)

const (
	pubKeyLength                = 48
	withdrawalCredentialsLength = 32
	signatureLength             = 96
	rootLength                  = 32
	forkVersionLength           = 4
)

// VerifyEntry checks one deposit data entry before it is sent to the deposit
// contract: field lengths, execution withdrawal credentials paying to
// withdrawal, the deposit data root and the BLS signature over the deposit
// message.
func VerifyEntry(e keytool.DepositEntry, withdrawal common.Address) error {
	switch {
	case len(e.PubKey) != pubKeyLength:
		return fmt.Errorf("pubkey has %d bytes, want %d", len(e.PubKey), pubKeyLength)
	case len(e.WithdrawalCredentials) != withdrawalCredentialsLength:
		return fmt.Errorf("withdrawal credentials have %d bytes, want %d", len(e.WithdrawalCredentials), withdrawalCredentialsLength)
	case len(e.Signature) != signatureLength:
		return fmt.Errorf("signature has %d bytes, want %d", len(e.Signature), signatureLength)
	case len(e.DepositDataRoot) != rootLength:
		return fmt.Errorf("deposit data root has %d bytes, want %d", len(e.DepositDataRoot), rootLength)
	case len(e.ForkVersion) != forkVersionLength:
		return fmt.Errorf("fork version has %d bytes, want %d", len(e.ForkVersion), forkVersionLength)
	case e.Amount == 0:
		return fmt.Errorf("amount is zero")
	}

	want := WithdrawalCredentials(withdrawal)
	if !bytes.Equal(e.WithdrawalCredentials, want) {
		return fmt.Errorf("withdrawal credentials %x do not pay to %s", []byte(e.WithdrawalCredentials), withdrawal.Hex())
	}

	data := &ethpb.Deposit_Data{
		PublicKey:             e.PubKey,
		WithdrawalCredentials: e.WithdrawalCredentials,
		Amount:                e.Amount,
		Signature:             e.Signature,
	}
	root, err := data.HashTreeRoot()
	if err != nil {
		return fmt.Errorf("hash tree root: %w", err)
	}
	if !bytes.Equal(root[:], e.DepositDataRoot) {
		return fmt.Errorf("deposit data root mismatch: computed %x, got %x", root, []byte(e.DepositDataRoot))
	}

	pub, err := bls.PublicKeyFromBytes(e.PubKey)
	if err != nil {
		return fmt.Errorf("parse pubkey: %w", err)
	}
	sig, err := bls.SignatureFromBytes(e.Signature)
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}

	domain, err := signing.ComputeDomain(
		params.BeaconConfig().DomainDeposit,
		e.ForkVersion,
		params.BeaconConfig().ZeroHash[:],
	)
	if err != nil {
		return fmt.Errorf("compute domain: %w", err)
	}
	signingRoot, err := signing.ComputeSigningRoot(&ethpb.DepositMessage{
		PublicKey:             e.PubKey,
		WithdrawalCredentials: e.WithdrawalCredentials,
		Amount:                e.Amount,
	}, domain)
	if err != nil {
		return fmt.Errorf("compute signing root: %w", err)
	}
	if !sig.Verify(pub, signingRoot[:]) {
		return fmt.Errorf("signature does not verify for pubkey %x", []byte(e.PubKey))
	}
	return nil
}

// WithdrawalCredentials returns 0x01 execution withdrawal credentials for addr.
func WithdrawalCredentials(addr common.Address) []byte {
	wc := make([]byte, withdrawalCredentialsLength)
	wc[0] = params.BeaconConfig().ETH1AddressWithdrawalPrefixByte
	copy(wc[12:], addr.Bytes())
	return wc
}

// Package testutils has helpers to fabricate mint-signed proofs and an
// in-process mint to run wallet code against.
package testutils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut11"
	"github.com/nutlock/nutlock/crypto"
)

// SignProof returns a proof for secret signed by the keyset's key for
// amount, carrying a DLEQ proof (with r) the way a wallet stores it.
func SignProof(keyset *crypto.MintKeyset, amount uint64, secret string) (cashu.Proof, error) {
	keypair, ok := keyset.Keys[amount]
	if !ok {
		return cashu.Proof{}, fmt.Errorf("keyset has no key for amount %v", amount)
	}

	r, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return cashu.Proof{}, err
	}
	B_, r, err := crypto.BlindMessage(secret, r)
	if err != nil {
		return cashu.Proof{}, err
	}

	C_ := crypto.SignBlindedMessage(B_, keypair.PrivateKey)
	e, s, err := crypto.GenerateDLEQ(keypair.PrivateKey, B_, C_)
	if err != nil {
		return cashu.Proof{}, err
	}
	C := crypto.UnblindSignature(C_, r, keypair.PublicKey)

	return cashu.Proof{
		Amount: amount,
		Id:     keyset.Id,
		Secret: secret,
		C:      hex.EncodeToString(C.SerializeCompressed()),
		DLEQ: &cashu.DLEQProof{
			E: hex.EncodeToString(e.Serialize()),
			S: hex.EncodeToString(s.Serialize()),
			R: hex.EncodeToString(r.Serialize()),
		},
	}, nil
}

// IssueProofs splits amount into powers of two and signs one proof for
// each with a secret from newSecret.
func IssueProofs(keyset *crypto.MintKeyset, amount uint64, newSecret func() (string, error)) (cashu.Proofs, error) {
	split := cashu.AmountSplit(amount)
	proofs := make(cashu.Proofs, len(split))
	for i, amt := range split {
		secret, err := newSecret()
		if err != nil {
			return nil, err
		}
		proof, err := SignProof(keyset, amt, secret)
		if err != nil {
			return nil, err
		}
		proofs[i] = proof
	}
	return proofs, nil
}

func RandomSecret() (string, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(secretBytes), nil
}

// LockedSecret returns a secret generator for P2PK secrets under condition.
func LockedSecret(condition nut11.SpendingCondition) func() (string, error) {
	return func() (string, error) {
		return nut11.P2PKSecret(condition)
	}
}

// IssueProofs signs proofs with the mint's active keyset.
func (m *Mint) IssueProofs(amount uint64, newSecret func() (string, error)) (cashu.Proofs, error) {
	return IssueProofs(m.ActiveKeyset(), amount, newSecret)
}

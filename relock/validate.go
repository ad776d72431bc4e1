package relock

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut10"
	"github.com/nutlock/nutlock/cashu/nuts/nut11"
	"github.com/nutlock/nutlock/cashu/nuts/nut12"
)

// Validation is the outcome of a successful Validate.
// Locktime is nil when the lock never expires.
type Validation struct {
	Locktime *int64
	Expired  bool
}

// Validate checks that proof is locked to expectedPubkey and was signed
// by the mint. The secret is checked before anything is fetched from the
// mint, so a proof without a pubkey lock is reported as such whatever
// its DLEQ.
func Validate(
	ctx context.Context,
	proof cashu.Proof,
	expectedPubkey string,
	mint MintClient,
) (Validation, error) {
	secret, err := nut10.DeserializeSecret(proof.Secret)
	if err != nil {
		return Validation{}, fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}
	if secret.Kind != nut10.P2PK || len(secret.Data.Data) == 0 {
		return Validation{}, fmt.Errorf("%w: secret kind is '%v'", ErrNotPubkeyLocked, secret.Kind)
	}

	keyset, err := mint.GetKeys(ctx, proof.Id)
	if err != nil {
		return Validation{}, fmt.Errorf("error getting keys for keyset '%v': %w", proof.Id, err)
	}
	if keyset == nil {
		return Validation{}, fmt.Errorf("%w: '%v'", ErrUnknownKeyset, proof.Id)
	}

	A, ok := keyset.PublicKeys[proof.Amount]
	if !ok {
		return Validation{}, fmt.Errorf("%w: keyset '%v' has no key for amount %v",
			ErrInvalidDLEQ, proof.Id, proof.Amount)
	}
	if !nut12.VerifyProofDLEQ(proof, A) {
		return Validation{}, ErrInvalidDLEQ
	}

	lockPoint, err := DeriveLockPoint(expectedPubkey)
	if err != nil {
		return Validation{}, err
	}
	if !strings.EqualFold(lockPoint, secret.Data.Data) {
		return Validation{}, fmt.Errorf("%w: expected '%v' but proof is locked to '%v'",
			ErrWrongLockTarget, lockPoint, secret.Data.Data)
	}

	tags, err := nut11.ParseP2PKTags(secret.Data.Tags)
	if err != nil {
		return Validation{}, fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}

	validation := Validation{Locktime: tags.Locktime}
	if tags.Locktime != nil && timeNow().Unix() > *tags.Locktime {
		validation.Expired = true
	}
	return validation, nil
}

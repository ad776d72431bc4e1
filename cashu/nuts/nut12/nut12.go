// Package nut12 verifies DLEQ proofs on proofs and blind signatures.
// See https://github.com/cashubtc/nuts/blob/main/12.md
package nut12

import (
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/crypto"
)

// VerifyProofDLEQ verifies the DLEQ carried by a proof against the
// mint public key A for the proof's amount. A proof without a DLEQ
// (or without the blinding factor r) does not verify.
func VerifyProofDLEQ(
	proof cashu.Proof,
	A *secp256k1.PublicKey,
) bool {
	if proof.DLEQ == nil || A == nil {
		return false
	}

	e, s, r, err := ParseDLEQ(*proof.DLEQ)
	if err != nil || r == nil {
		return false
	}

	B_, _, err := crypto.BlindMessage(proof.Secret, r)
	if err != nil {
		return false
	}

	CBytes, err := hex.DecodeString(proof.C)
	if err != nil {
		return false
	}

	C, err := secp256k1.ParsePubKey(CBytes)
	if err != nil {
		return false
	}

	var CPoint, APoint secp256k1.JacobianPoint
	C.AsJacobian(&CPoint)
	A.AsJacobian(&APoint)

	// C' = C + r*A
	var C_Point, rAPoint secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&r.Key, &APoint, &rAPoint)
	rAPoint.ToAffine()
	secp256k1.AddNonConst(&CPoint, &rAPoint, &C_Point)
	C_Point.ToAffine()
	C_ := secp256k1.NewPublicKey(&C_Point.X, &C_Point.Y)

	return crypto.VerifyDLEQ(e, s, A, B_, C_)
}

func VerifyBlindSignatureDLEQ(
	dleq cashu.DLEQProof,
	A *secp256k1.PublicKey,
	B_str string,
	C_str string,
) bool {
	e, s, _, err := ParseDLEQ(dleq)
	if err != nil {
		return false
	}

	B_bytes, err := hex.DecodeString(B_str)
	if err != nil {
		return false
	}
	B_, err := secp256k1.ParsePubKey(B_bytes)
	if err != nil {
		return false
	}

	C_bytes, err := hex.DecodeString(C_str)
	if err != nil {
		return false
	}
	C_, err := secp256k1.ParsePubKey(C_bytes)
	if err != nil {
		return false
	}

	return crypto.VerifyDLEQ(e, s, A, B_, C_)
}

// ParseDLEQ returns e, s and r (nil if not present).
func ParseDLEQ(dleq cashu.DLEQProof) (
	*secp256k1.PrivateKey,
	*secp256k1.PrivateKey,
	*secp256k1.PrivateKey,
	error,
) {
	e, err := parseScalar(dleq.E)
	if err != nil {
		return nil, nil, nil, err
	}

	s, err := parseScalar(dleq.S)
	if err != nil {
		return nil, nil, nil, err
	}

	if dleq.R == "" {
		return e, s, nil, nil
	}

	r, err := parseScalar(dleq.R)
	if err != nil {
		return nil, nil, nil, err
	}

	return e, s, r, nil
}

func parseScalar(scalar string) (*secp256k1.PrivateKey, error) {
	scalarBytes, err := hex.DecodeString(scalar)
	if err != nil {
		return nil, err
	}
	if len(scalarBytes) != 32 {
		return nil, errors.New("invalid scalar length")
	}
	return secp256k1.PrivKeyFromBytes(scalarBytes), nil
}

package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// HashE hashes the concatenation of the uncompressed hex encoding
// of the public keys.
func HashE(pubkeys ...*secp256k1.PublicKey) [32]byte {
	var e string
	for _, pk := range pubkeys {
		e += hex.EncodeToString(pk.SerializeUncompressed())
	}
	return sha256.Sum256([]byte(e))
}

// GenerateDLEQ produces a proof that the same private key a was used
// for A = a*G and C_ = a*B_.
// R1 = p*G, R2 = p*B_, e = hash(R1, R2, A, C_), s = p + e*a
func GenerateDLEQ(
	a *secp256k1.PrivateKey,
	B_ *secp256k1.PublicKey,
	C_ *secp256k1.PublicKey,
) (*secp256k1.PrivateKey, *secp256k1.PrivateKey, error) {
	p, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, err
	}

	R1 := p.PubKey()
	R2 := SignBlindedMessage(B_, p)

	hash := HashE(R1, R2, a.PubKey(), C_)
	var e secp256k1.ModNScalar
	e.SetByteSlice(hash[:])

	var s secp256k1.ModNScalar
	s.Mul2(&e, &a.Key).Add(&p.Key)

	return secp256k1.NewPrivateKey(&e), secp256k1.NewPrivateKey(&s), nil
}

// VerifyDLEQ checks e == hash(R1, R2, A, C_) where
// R1 = s*G - e*A and R2 = s*B_ - e*C_
func VerifyDLEQ(
	e *secp256k1.PrivateKey,
	s *secp256k1.PrivateKey,
	A *secp256k1.PublicKey,
	B_ *secp256k1.PublicKey,
	C_ *secp256k1.PublicKey,
) bool {
	var eNeg secp256k1.ModNScalar
	eNeg.NegateVal(&e.Key)

	var sG, eA, R1 secp256k1.JacobianPoint
	var APoint secp256k1.JacobianPoint
	A.AsJacobian(&APoint)
	secp256k1.ScalarBaseMultNonConst(&s.Key, &sG)
	secp256k1.ScalarMultNonConst(&eNeg, &APoint, &eA)
	secp256k1.AddNonConst(&sG, &eA, &R1)

	var sB_, eC_, R2 secp256k1.JacobianPoint
	var B_Point, C_Point secp256k1.JacobianPoint
	B_.AsJacobian(&B_Point)
	C_.AsJacobian(&C_Point)
	secp256k1.ScalarMultNonConst(&s.Key, &B_Point, &sB_)
	secp256k1.ScalarMultNonConst(&eNeg, &C_Point, &eC_)
	secp256k1.AddNonConst(&sB_, &eC_, &R2)

	hash := HashE(toPublicKey(&R1), toPublicKey(&R2), A, C_)
	var check secp256k1.ModNScalar
	check.SetByteSlice(hash[:])

	return e.Key.Equals(&check)
}

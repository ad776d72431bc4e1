package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const DomainSeparator = "Secp256k1_HashToCurve_Cashu_"

var ErrNoValidPoint = errors.New("no valid point found")

// HashToCurve deterministically maps a message to a point on secp256k1.
// Y = PublicKey('02' || SHA256(SHA256(DomainSeparator || message) || counter))
// where counter is a little-endian uint32 incremented until a valid point is found.
func HashToCurve(message []byte) (*secp256k1.PublicKey, error) {
	msgHash := sha256.Sum256(append([]byte(DomainSeparator), message...))

	counterBytes := make([]byte, 4)
	for counter := uint32(0); counter < 1<<16; counter++ {
		binary.LittleEndian.PutUint32(counterBytes, counter)
		hash := sha256.Sum256(append(msgHash[:], counterBytes...))

		point, err := secp256k1.ParsePubKey(append([]byte{0x02}, hash[:]...))
		if err == nil {
			return point, nil
		}
	}
	return nil, ErrNoValidPoint
}

// B_ = Y + rG
func BlindMessage(secret string, r *secp256k1.PrivateKey) (*secp256k1.PublicKey, *secp256k1.PrivateKey, error) {
	Y, err := HashToCurve([]byte(secret))
	if err != nil {
		return nil, nil, err
	}

	var ypoint, rpoint, blindedMessage secp256k1.JacobianPoint
	Y.AsJacobian(&ypoint)
	r.PubKey().AsJacobian(&rpoint)

	secp256k1.AddNonConst(&ypoint, &rpoint, &blindedMessage)
	return toPublicKey(&blindedMessage), r, nil
}

// C_ = kB_
func SignBlindedMessage(B_ *secp256k1.PublicKey, k *secp256k1.PrivateKey) *secp256k1.PublicKey {
	var bpoint, result secp256k1.JacobianPoint
	B_.AsJacobian(&bpoint)

	secp256k1.ScalarMultNonConst(&k.Key, &bpoint, &result)
	return toPublicKey(&result)
}

// C = C_ - rK
func UnblindSignature(C_ *secp256k1.PublicKey, r *secp256k1.PrivateKey,
	K *secp256k1.PublicKey) *secp256k1.PublicKey {

	var Kpoint, rKPoint, C_Point, CPoint secp256k1.JacobianPoint
	K.AsJacobian(&Kpoint)
	C_.AsJacobian(&C_Point)

	var rNeg secp256k1.ModNScalar
	rNeg.NegateVal(&r.Key)

	secp256k1.ScalarMultNonConst(&rNeg, &Kpoint, &rKPoint)
	secp256k1.AddNonConst(&C_Point, &rKPoint, &CPoint)
	return toPublicKey(&CPoint)
}

// k * HashToCurve(secret) == C
func Verify(secret string, k *secp256k1.PrivateKey, C *secp256k1.PublicKey) bool {
	Y, err := HashToCurve([]byte(secret))
	if err != nil {
		return false
	}
	return C.IsEqual(SignBlindedMessage(Y, k))
}

func toPublicKey(point *secp256k1.JacobianPoint) *secp256k1.PublicKey {
	point.ToAffine()
	return secp256k1.NewPublicKey(&point.X, &point.Y)
}

package relock

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nutlock/nutlock/crypto"
)

// NormalizePubkey turns a 32-byte x-only hex key into the compressed
// encoding with even parity ("02" prefix).
func NormalizePubkey(pubkeyHex string) (string, error) {
	pubkey, err := parseXOnly(pubkeyHex)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(pubkey.SerializeCompressed()), nil
}

// DeriveLockPoint returns the point that proofs locked to pubkeyHex carry
// in their secret: hash_to_curve of the normalized compressed key.
func DeriveLockPoint(pubkeyHex string) (string, error) {
	pubkey, err := parseXOnly(pubkeyHex)
	if err != nil {
		return "", err
	}

	Y, err := crypto.HashToCurve(pubkey.SerializeCompressed())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	return hex.EncodeToString(Y.SerializeCompressed()), nil
}

func parseXOnly(pubkeyHex string) (*secp256k1.PublicKey, error) {
	if len(pubkeyHex) != 64 {
		return nil, fmt.Errorf("%w: expected 64 hex characters, got %v", ErrInvalidKeyEncoding, len(pubkeyHex))
	}

	keyBytes, err := hex.DecodeString("02" + pubkeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}

	pubkey, err := secp256k1.ParsePubKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	return pubkey, nil
}

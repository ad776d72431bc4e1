package relock

import "errors"

var (
	ErrInvalidKeyEncoding = errors.New("invalid public key encoding")
	ErrUnknownKeyset      = errors.New("unknown keyset")
	ErrInvalidDLEQ        = errors.New("invalid DLEQ proof")
	ErrMalformedSecret    = errors.New("malformed secret")
	ErrNotPubkeyLocked    = errors.New("proof is not locked to a public key")
	ErrWrongLockTarget    = errors.New("proof is locked to a different public key")
	ErrNoActiveIdentity   = errors.New("no active identity")
	ErrSwapFailed         = errors.New("swap failed")
)

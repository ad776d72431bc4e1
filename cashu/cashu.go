// Package cashu contains the core structs and logic
// of the Cashu protocol.
package cashu

import (
	"encoding/hex"
	"errors"
	"slices"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

type Unit int

const (
	Sat Unit = iota
)

func (unit Unit) String() string {
	switch unit {
	case Sat:
		return "sat"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidTokenV3 = errors.New("invalid V3 token")
	ErrInvalidTokenV4 = errors.New("invalid V4 token")
	ErrInvalidUnit    = errors.New("invalid unit")
	ErrEmptyToken     = errors.New("token has no proofs")
)

// Cashu BlindedMessage. See https://github.com/cashubtc/nuts/blob/main/00.md#blindedmessage
type BlindedMessage struct {
	Amount  uint64 `json:"amount"`
	B_      string `json:"B_"`
	Id      string `json:"id"`
	Witness string `json:"witness,omitempty"`
}

func NewBlindedMessage(id string, amount uint64, B_ *secp256k1.PublicKey) BlindedMessage {
	B_str := hex.EncodeToString(B_.SerializeCompressed())
	return BlindedMessage{Amount: amount, B_: B_str, Id: id}
}

type BlindedMessages []BlindedMessage

func (bm BlindedMessages) Amount() uint64 {
	var totalAmount uint64
	for _, msg := range bm {
		totalAmount += msg.Amount
	}
	return totalAmount
}

// SortBlindedMessages sorts the messages by amount and applies
// the same permutation to the secrets and blinding factors.
func SortBlindedMessages(blindedMessages BlindedMessages, secrets []string, rs []*secp256k1.PrivateKey) {
	idx := make([]int, len(blindedMessages))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case blindedMessages[a].Amount < blindedMessages[b].Amount:
			return -1
		case blindedMessages[a].Amount > blindedMessages[b].Amount:
			return 1
		}
		return 0
	})

	sortedMessages := make(BlindedMessages, len(idx))
	sortedSecrets := make([]string, len(idx))
	sortedRs := make([]*secp256k1.PrivateKey, len(idx))
	for i, j := range idx {
		sortedMessages[i] = blindedMessages[j]
		sortedSecrets[i] = secrets[j]
		sortedRs[i] = rs[j]
	}
	copy(blindedMessages, sortedMessages)
	copy(secrets, sortedSecrets)
	copy(rs, sortedRs)
}

// Cashu BlindedSignature. See https://github.com/cashubtc/nuts/blob/main/00.md#blindsignature
type BlindedSignature struct {
	Amount uint64 `json:"amount"`
	C_     string `json:"C_"`
	Id     string `json:"id"`
	// doing pointer here so that omitempty works.
	// an empty struct would still get marshalled
	DLEQ *DLEQProof `json:"dleq,omitempty"`
}

type BlindedSignatures []BlindedSignature

func (bs BlindedSignatures) Amount() uint64 {
	var totalAmount uint64
	for _, sig := range bs {
		totalAmount += sig.Amount
	}
	return totalAmount
}

// Cashu Proof. See https://github.com/cashubtc/nuts/blob/main/00.md#proof
type Proof struct {
	Amount  uint64     `json:"amount"`
	Id      string     `json:"id"`
	Secret  string     `json:"secret"`
	C       string     `json:"C"`
	Witness string     `json:"witness,omitempty"`
	DLEQ    *DLEQProof `json:"dleq,omitempty"`
}

type Proofs []Proof

type DLEQProof struct {
	E string `json:"e"`
	S string `json:"s"`
	R string `json:"r,omitempty"`
}

// Amount returns the total amount from
// the array of Proof
func (proofs Proofs) Amount() uint64 {
	return Sum(proofs)
}

// Sum adds up the face value of the proofs. An empty list sums to 0.
func Sum(proofs Proofs) uint64 {
	var totalAmount uint64
	for _, proof := range proofs {
		totalAmount += proof.Amount
	}
	return totalAmount
}

// Given an amount, it returns list of amounts e.g 13 -> [1, 4, 8]
// that can be used to build blinded messages or split operations.
func AmountSplit(amount uint64) []uint64 {
	rv := make([]uint64, 0)
	for pos := 0; amount > 0; pos++ {
		if amount&1 == 1 {
			rv = append(rv, 1<<pos)
		}
		amount >>= 1
	}
	return rv
}

func CheckDuplicateProofs(proofs Proofs) bool {
	secrets := make(map[string]struct{}, len(proofs))
	for _, proof := range proofs {
		if _, ok := secrets[proof.Secret]; ok {
			return true
		}
		secrets[proof.Secret] = struct{}{}
	}
	return false
}

// Package nut02 contains the keyset list types and fee calculation.
// See https://github.com/cashubtc/nuts/blob/main/02.md
package nut02

import "github.com/nutlock/nutlock/cashu"

type GetKeysetsResponse struct {
	Keysets []Keyset `json:"keysets"`
}

type Keyset struct {
	Id          string `json:"id"`
	Unit        string `json:"unit"`
	Active      bool   `json:"active"`
	InputFeePpk uint   `json:"input_fee_ppk"`
}

// FeesForProofs returns the fee owed to spend the proofs:
// ceil(sum(input_fee_ppk) / 1000). feePpk maps keyset id to its
// input_fee_ppk; proofs from keysets not in the map add no fee.
func FeesForProofs(proofs cashu.Proofs, feePpk map[string]uint) uint64 {
	var sum uint64
	for _, proof := range proofs {
		sum += uint64(feePpk[proof.Id])
	}
	return (sum + 999) / 1000
}

// Package nut03 contains the swap request and response types.
// See https://github.com/cashubtc/nuts/blob/main/03.md
package nut03

import "github.com/nutlock/nutlock/cashu"

type PostSwapRequest struct {
	Inputs  cashu.Proofs          `json:"inputs"`
	Outputs cashu.BlindedMessages `json:"outputs"`
}

type PostSwapResponse struct {
	Signatures cashu.BlindedSignatures `json:"signatures"`
}

// Package nutzap reads ecash sent in nostr nutzap events (NIP-61).
// Each proof travels as a json "proof" tag, the mint in a "u" tag and
// the recipient in a "p" tag.
package nutzap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/relock"
)

const KindNutzap = 9321

var (
	ErrNotNutzap        = errors.New("event is not a nutzap")
	ErrInvalidSignature = errors.New("invalid event signature")
	ErrNoMint           = errors.New("nutzap has no mint")
	ErrNoRecipient      = errors.New("nutzap has no recipient")
)

// Token returns the proofs in the event as a token from the event's mint.
func Token(evt *nostr.Event) (cashu.Token, error) {
	if evt.Kind != KindNutzap {
		return nil, ErrNotNutzap
	}

	var mintURL string
	proofs := cashu.Proofs{}
	for _, tag := range evt.Tags {
		if len(tag) < 2 {
			continue
		}
		switch tag[0] {
		case "proof":
			var proof cashu.Proof
			if err := json.Unmarshal([]byte(tag[1]), &proof); err != nil {
				return nil, fmt.Errorf("invalid proof in nutzap: %v", err)
			}
			proofs = append(proofs, proof)
		case "u":
			if mintURL == "" {
				mintURL = tag[1]
			}
		}
	}

	if len(proofs) == 0 {
		return nil, cashu.ErrEmptyToken
	}
	if mintURL == "" {
		return nil, ErrNoMint
	}

	token, err := cashu.NewTokenV4(proofs, mintURL, cashu.Sat, true)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// Recipient returns the pubkey in the first "p" tag.
func Recipient(evt *nostr.Event) (string, bool) {
	for _, tag := range evt.Tags {
		if len(tag) >= 2 && tag[0] == "p" {
			return tag[1], true
		}
	}
	return "", false
}

// AmountRedeemable checks the event signature and returns how much of
// the nutzap its recipient can claim.
func AmountRedeemable(ctx context.Context, evt *nostr.Event, mint relock.MintClient) (uint64, error) {
	ok, err := evt.CheckSignature()
	if err != nil || !ok {
		return 0, ErrInvalidSignature
	}

	recipient, ok := Recipient(evt)
	if !ok {
		return 0, ErrNoRecipient
	}

	token, err := Token(evt)
	if err != nil {
		return 0, err
	}

	return relock.AmountRedeemable(ctx, token, recipient, mint)
}

// Package relock decides how much of an inbound token can be trusted and
// claimed, and takes custody of a token by swapping it at the mint into
// proofs locked to the current identity.
//
// Trust is all-or-nothing: a proof with a bad DLEQ, a malformed or
// missing pubkey lock, or a lock aimed at somebody else fails the whole
// calculation. Proofs whose locktime has elapsed are kept only while the
// mint still reports them as not spent.
package relock

import (
	"context"
	"time"

	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut07"
	"github.com/nutlock/nutlock/cashu/nuts/nut11"
	"github.com/nutlock/nutlock/crypto"
)

// MintClient is what the pipeline needs from a mint.
type MintClient interface {
	// GetKeysets refreshes the keysets (and their fees) known for the mint.
	GetKeysets(ctx context.Context) error

	// GetKeys returns the keyset with the given id, or nil if the
	// mint does not know it.
	GetKeys(ctx context.Context, keysetId string) (*crypto.WalletKeyset, error)

	FeesFor(proofs cashu.Proofs) uint64

	// Swap spends inputs and returns new proofs: Send holds amount locked
	// under the condition and Keep holds any change.
	Swap(
		ctx context.Context,
		amount uint64,
		inputs cashu.Proofs,
		condition nut11.SpendingCondition,
	) (*SwapResult, error)

	// CheckProofStates returns one state per proof, in the same order.
	CheckProofStates(ctx context.Context, proofs cashu.Proofs) ([]nut07.ProofState, error)
}

type IdentityProvider interface {
	// CurrentPubkey returns the 32-byte x-only hex key of the active
	// identity, or false if there is none.
	CurrentPubkey() (string, bool)
}

type SwapResult struct {
	Keep cashu.Proofs
	Send cashu.Proofs
}

var timeNow = time.Now

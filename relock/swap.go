package relock

import (
	"context"
	"fmt"
	"time"

	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut11"
)

const relockMonths = 3

// RelockToSelf swaps the token's proofs at the mint for new ones locked
// to the identity's derived lock point, with a locktime three calendar
// months from now after which the identity's plain key can refund them.
// The mint keeps the fee, so the new token is worth amount minus fees.
func RelockToSelf(
	ctx context.Context,
	token cashu.Token,
	identity IdentityProvider,
	mint MintClient,
) (*cashu.TokenV4, error) {
	pubkey, ok := identity.CurrentPubkey()
	if !ok || len(pubkey) == 0 {
		return nil, ErrNoActiveIdentity
	}

	if err := mint.GetKeysets(ctx); err != nil {
		return nil, fmt.Errorf("error getting keysets: %w", err)
	}

	proofs := token.Proofs()
	amount := cashu.Sum(proofs)
	fees := mint.FeesFor(proofs)
	if fees >= amount {
		return nil, cashu.InsufficientProofsAmount
	}

	lockPoint, err := DeriveLockPoint(pubkey)
	if err != nil {
		return nil, err
	}
	refundKey, err := NormalizePubkey(pubkey)
	if err != nil {
		return nil, err
	}

	condition := nut11.SpendingCondition{
		Pubkey:     lockPoint,
		Locktime:   AddMonths(timeNow(), relockMonths).Unix(),
		RefundKeys: []string{refundKey},
	}

	result, err := mint.Swap(ctx, amount-fees, proofs, condition)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSwapFailed, err)
	}

	newProofs := make(cashu.Proofs, 0, len(result.Keep)+len(result.Send))
	newProofs = append(newProofs, result.Keep...)
	newProofs = append(newProofs, result.Send...)

	// the mint client only swaps against its active sat keyset
	newToken, err := cashu.NewTokenV4(newProofs, token.Mint(), cashu.Sat, true)
	if err != nil {
		return nil, err
	}
	return &newToken, nil
}

// AddMonths moves t forward by months calendar months. If the day does
// not exist in the target month it is clamped to the month's last day,
// so Nov 30 + 3 months is Feb 28 (or 29).
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	lastDay := time.Date(firstOfTarget.Year(), firstOfTarget.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

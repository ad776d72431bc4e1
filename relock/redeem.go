package relock

import (
	"context"

	"github.com/nutlock/nutlock/cashu"
)

// AmountRedeemable returns how much of the token expectedPubkey can
// claim. Any error means no part of the token should be trusted.
func AmountRedeemable(
	ctx context.Context,
	token cashu.Token,
	expectedPubkey string,
	mint MintClient,
) (uint64, error) {
	classification, err := Classify(ctx, token.Proofs(), expectedPubkey, mint)
	if err != nil {
		return 0, err
	}

	redeemable := classification.ValidProofs
	if len(classification.NoTimelockProofs) > 0 {
		spendable, err := ReconcileSpendable(ctx, classification.NoTimelockProofs, mint)
		if err != nil {
			return 0, err
		}
		redeemable = append(redeemable, spendable...)
	}

	return cashu.Sum(redeemable), nil
}

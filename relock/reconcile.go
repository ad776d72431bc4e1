package relock

import (
	"context"
	"fmt"

	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut07"
)

// ReconcileSpendable returns the proofs the mint reports as pending,
// in input order. Spent and unspent proofs are dropped without error.
func ReconcileSpendable(
	ctx context.Context,
	proofs cashu.Proofs,
	mint MintClient,
) (cashu.Proofs, error) {
	if len(proofs) == 0 {
		return cashu.Proofs{}, nil
	}

	states, err := mint.CheckProofStates(ctx, proofs)
	if err != nil {
		return nil, fmt.Errorf("error checking proof states: %w", err)
	}
	if len(states) != len(proofs) {
		return nil, fmt.Errorf("mint returned %v states for %v proofs", len(states), len(proofs))
	}

	spendable := make(cashu.Proofs, 0, len(proofs))
	for i, proof := range proofs {
		if states[i].State == nut07.Pending {
			spendable = append(spendable, proof)
		}
	}
	return spendable, nil
}

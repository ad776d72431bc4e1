package relock

import (
	"context"

	"github.com/nutlock/nutlock/cashu"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentValidations = 8

// Classification splits validated proofs by their lock.
// ValidProofs are still under an unexpired pubkey lock (or one with
// no locktime). NoTimelockProofs had their locktime elapse and need
// to be confirmed with the mint before they count.
type Classification struct {
	ValidProofs      cashu.Proofs
	NoTimelockProofs cashu.Proofs
}

// Classify validates every proof and sorts them into buckets, keeping
// input order within each bucket. If any proof fails, the error for
// the first failing proof in input order is returned. A batch with the
// same secret twice is rejected with cashu.DuplicateProofs.
func Classify(
	ctx context.Context,
	proofs cashu.Proofs,
	expectedPubkey string,
	mint MintClient,
) (*Classification, error) {
	if cashu.CheckDuplicateProofs(proofs) {
		return nil, cashu.DuplicateProofs
	}

	validations := make([]Validation, len(proofs))
	errs := make([]error, len(proofs))

	var g errgroup.Group
	g.SetLimit(maxConcurrentValidations)
	for i, proof := range proofs {
		g.Go(func() error {
			validations[i], errs[i] = Validate(ctx, proof, expectedPubkey, mint)
			return nil
		})
	}
	g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	classification := &Classification{
		ValidProofs:      cashu.Proofs{},
		NoTimelockProofs: cashu.Proofs{},
	}
	for i, proof := range proofs {
		if validations[i].Expired {
			classification.NoTimelockProofs = append(classification.NoTimelockProofs, proof)
		} else {
			classification.ValidProofs = append(classification.ValidProofs, proof)
		}
	}
	return classification, nil
}

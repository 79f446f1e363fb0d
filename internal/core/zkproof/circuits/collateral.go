package circuits

import (
	"github.com/consensys/gnark/frontend"
)

// Witness width budget. Every private amount entering a comparison is
// range-checked to these bounds first; the width-tracking arithmetic then
// guarantees no product can wrap the field modulus and silently flip an
// inequality.
const (
	// AmountBits bounds collateral, debt and threshold amounts (< 2^40,
	// roughly 1.1e12 base units).
	AmountBits = 40
	// RatioBits bounds percentage ratios (max LTV, liquidation threshold;
	// 0..100 fits in 7 bits).
	RatioBits = 7
	// PriceBits bounds the whole-unit oracle price fed to the liquidation
	// circuit.
	PriceBits = 16
)

// CollateralCircuit proves collateral ≥ threshold without revealing the
// collateral amount.
//
// Public inputs, in instance order: Threshold, Commitment.
// Private witnesses: Collateral, Salt.
//
// Constraints:
//  1. collateral and threshold are range-checked to AmountBits;
//  2. collateral ≥ threshold via the wraparound comparison gadget;
//  3. Commitment = commit(collateral, salt) recomputed in-circuit.
type CollateralCircuit struct {
	Threshold  frontend.Variable `gnark:",public"`
	Commitment frontend.Variable `gnark:",public"`

	Collateral frontend.Variable
	Salt       frontend.Variable

	scheme   CommitmentScheme
	strategy RangeCheckStrategy
}

// NewCollateralCircuit returns an unassigned circuit shape for the given
// gadget configuration. The same constructor is used for key generation,
// witness assembly and tests so the shapes always agree.
func NewCollateralCircuit(scheme CommitmentScheme, strategy RangeCheckStrategy) *CollateralCircuit {
	return &CollateralCircuit{scheme: scheme, strategy: strategy}
}

func (c *CollateralCircuit) Define(api frontend.API) error {
	rc := NewRangeChecker(api, c.strategy)
	cmp := NewComparator(api, rc, AmountBits)

	collateral := rc.Constrain(c.Collateral, AmountBits)
	threshold := rc.Constrain(c.Threshold, AmountBits)
	cmp.AssertGte(collateral, threshold)

	committer := NewCommitter(api, c.scheme)
	commitment, err := committer.Commit(c.Collateral, c.Salt)
	if err != nil {
		return err
	}
	api.AssertIsEqual(commitment, c.Commitment)
	return nil
}

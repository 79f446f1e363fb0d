package circuits

import (
	"github.com/consensys/gnark/frontend"
)

// ltvPercentBase is the denominator of the LTV ratio: the constraint
// debt/collateral ≤ maxLTV/100 is cleared to debt·100 ≤ collateral·maxLTV so
// the circuit never divides.
const ltvPercentBase = 100

// ltvCompareBits bounds both sides of the cleared inequality:
// collateral·maxLTV < 2^(AmountBits+RatioBits) and debt·100 < 2^(AmountBits+7).
const ltvCompareBits = AmountBits + RatioBits

// LTVCircuit proves debt·100 ≤ collateral·maxLTV without revealing either
// amount.
//
// Public inputs, in instance order: MaxLTV, DebtCommitment,
// CollateralCommitment.
// Private witnesses: Debt, Collateral, DebtSalt, CollateralSalt.
type LTVCircuit struct {
	MaxLTV               frontend.Variable `gnark:",public"`
	DebtCommitment       frontend.Variable `gnark:",public"`
	CollateralCommitment frontend.Variable `gnark:",public"`

	Debt           frontend.Variable
	Collateral     frontend.Variable
	DebtSalt       frontend.Variable
	CollateralSalt frontend.Variable

	scheme   CommitmentScheme
	strategy RangeCheckStrategy
}

// NewLTVCircuit returns an unassigned circuit shape for the given gadget
// configuration.
func NewLTVCircuit(scheme CommitmentScheme, strategy RangeCheckStrategy) *LTVCircuit {
	return &LTVCircuit{scheme: scheme, strategy: strategy}
}

func (c *LTVCircuit) Define(api frontend.API) error {
	rc := NewRangeChecker(api, c.strategy)
	cmp := NewComparator(api, rc, ltvCompareBits)

	debt := rc.Constrain(c.Debt, AmountBits)
	collateral := rc.Constrain(c.Collateral, AmountBits)
	maxLTV := rc.Constrain(c.MaxLTV, RatioBits)

	debtScaled := MulConst(api, debt, ltvPercentBase)
	collScaled := Mul(api, collateral, maxLTV)
	cmp.AssertGte(collScaled, debtScaled)

	committer := NewCommitter(api, c.scheme)
	debtCommitment, err := committer.Commit(c.Debt, c.DebtSalt)
	if err != nil {
		return err
	}
	api.AssertIsEqual(debtCommitment, c.DebtCommitment)

	collCommitment, err := committer.Commit(c.Collateral, c.CollateralSalt)
	if err != nil {
		return err
	}
	api.AssertIsEqual(collCommitment, c.CollateralCommitment)
	return nil
}

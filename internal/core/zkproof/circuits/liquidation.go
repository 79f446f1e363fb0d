package circuits

import (
	"github.com/consensys/gnark/frontend"
)

// liquidationCompareBits bounds both sides of the liquidation inequality:
// collateral·price·threshold < 2^(AmountBits+PriceBits+RatioBits) and
// debt·100 < 2^(AmountBits+7).
const liquidationCompareBits = AmountBits + PriceBits + RatioBits

// LiquidationCircuit proves a position is liquidatable:
//
//	collateral·price·liquidationThreshold < debt·100
//
// i.e. the health factor dropped strictly below 1. Equality (health factor
// exactly 1) is NOT liquidatable. Collateral and debt stay private; the
// position is tied to its public hash.
//
// Public inputs, in instance order: Price, LiquidationThreshold, PositionHash.
// Private witnesses: Collateral, Debt, Salt.
type LiquidationCircuit struct {
	Price                frontend.Variable `gnark:",public"`
	LiquidationThreshold frontend.Variable `gnark:",public"`
	PositionHash         frontend.Variable `gnark:",public"`

	Collateral frontend.Variable
	Debt       frontend.Variable
	Salt       frontend.Variable

	scheme   CommitmentScheme
	strategy RangeCheckStrategy
}

// NewLiquidationCircuit returns an unassigned circuit shape for the given
// gadget configuration.
func NewLiquidationCircuit(scheme CommitmentScheme, strategy RangeCheckStrategy) *LiquidationCircuit {
	return &LiquidationCircuit{scheme: scheme, strategy: strategy}
}

func (c *LiquidationCircuit) Define(api frontend.API) error {
	rc := NewRangeChecker(api, c.strategy)
	cmp := NewComparator(api, rc, liquidationCompareBits)

	collateral := rc.Constrain(c.Collateral, AmountBits)
	debt := rc.Constrain(c.Debt, AmountBits)
	price := rc.Constrain(c.Price, PriceBits)
	threshold := rc.Constrain(c.LiquidationThreshold, RatioBits)

	collValue := Mul(api, Mul(api, collateral, price), threshold)
	debtScaled := MulConst(api, debt, ltvPercentBase)
	cmp.AssertGt(debtScaled, collValue)

	committer := NewCommitter(api, c.scheme)
	positionHash, err := committer.PositionHash(c.Collateral, c.Debt, c.Salt)
	if err != nil {
		return err
	}
	api.AssertIsEqual(positionHash, c.PositionHash)
	return nil
}

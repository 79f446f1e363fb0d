package circuits_test

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/privlend/v1/internal/core/zkproof"
	"github.com/privlend/v1/internal/core/zkproof/circuits"
)

// The assignments below recompute public commitments with the native
// implementation, so these tests double as in-circuit/out-of-circuit
// consistency checks for both schemes.

func commit(t *testing.T, scheme circuits.CommitmentScheme, value, salt int64) *big.Int {
	t.Helper()
	c, err := zkproof.Commit(scheme, big.NewInt(value), big.NewInt(salt))
	require.NoError(t, err)
	return c
}

func positionHash(t *testing.T, scheme circuits.CommitmentScheme, collateral, debt, salt int64) *big.Int {
	t.Helper()
	h, err := zkproof.PositionHash(scheme, big.NewInt(collateral), big.NewInt(debt), big.NewInt(salt))
	require.NoError(t, err)
	return h
}

func TestCollateralCircuit(t *testing.T) {
	for _, scheme := range []circuits.CommitmentScheme{circuits.SchemePoseidon2, circuits.SchemeAlgebraic} {
		scheme := scheme
		t.Run(scheme.String(), func(t *testing.T) {
			assert := test.NewAssert(t)
			const salt = 424242

			assignment := func(collateral, threshold, committed int64) *circuits.CollateralCircuit {
				c := circuits.NewCollateralCircuit(scheme, circuits.StrategyLookup)
				c.Threshold = threshold
				c.Commitment = commit(t, scheme, committed, salt)
				c.Collateral = collateral
				c.Salt = salt
				return c
			}

			assert.CheckCircuit(circuits.NewCollateralCircuit(scheme, circuits.StrategyLookup),
				// comfortable margin and the equality boundary
				test.WithValidAssignment(assignment(1500, 1000, 1500)),
				test.WithValidAssignment(assignment(1000, 1000, 1000)),
				// insufficient collateral, honestly committed
				test.WithInvalidAssignment(assignment(500, 1000, 500)),
				// sufficient collateral but the commitment opens to another value
				test.WithInvalidAssignment(assignment(1500, 1000, 1499)),
				test.WithCurves(ecc.BN254),
				test.WithBackends(backend.GROTH16),
			)
		})
	}
}

func TestLTVCircuit(t *testing.T) {
	assert := test.NewAssert(t)
	scheme := circuits.SchemePoseidon2
	const debtSalt, collSalt = 7, 11

	assignment := func(debt, collateral, maxLTV int64) *circuits.LTVCircuit {
		c := circuits.NewLTVCircuit(scheme, circuits.StrategyLookup)
		c.MaxLTV = maxLTV
		c.DebtCommitment = commit(t, scheme, debt, debtSalt)
		c.CollateralCommitment = commit(t, scheme, collateral, collSalt)
		c.Debt = debt
		c.Collateral = collateral
		c.DebtSalt = debtSalt
		c.CollateralSalt = collSalt
		return c
	}

	// debt·100 ≤ collateral·maxLTV, equality allowed
	assert.CheckCircuit(circuits.NewLTVCircuit(scheme, circuits.StrategyLookup),
		test.WithValidAssignment(assignment(500, 1000, 75)),
		test.WithValidAssignment(assignment(750, 1000, 75)),
		test.WithValidAssignment(assignment(0, 1000, 75)),
		test.WithInvalidAssignment(assignment(751, 1000, 75)),
		test.WithInvalidAssignment(assignment(1000, 1000, 75)),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16),
	)
}

func TestLiquidationCircuit(t *testing.T) {
	assert := test.NewAssert(t)
	scheme := circuits.SchemePoseidon2
	const salt = 99

	assignment := func(collateral, debt, price, threshold int64) *circuits.LiquidationCircuit {
		c := circuits.NewLiquidationCircuit(scheme, circuits.StrategyLookup)
		c.Price = price
		c.LiquidationThreshold = threshold
		c.PositionHash = positionHash(t, scheme, collateral, debt, salt)
		c.Collateral = collateral
		c.Debt = debt
		c.Salt = salt
		return c
	}

	// collateral·price·threshold < debt·100: health factor strictly below one
	assert.CheckCircuit(circuits.NewLiquidationCircuit(scheme, circuits.StrategyLookup),
		// 1000·1·80 = 80000 < 850·100: liquidatable at health factor ≈0.94
		test.WithValidAssignment(assignment(1000, 850, 1, 80)),
		test.WithValidAssignment(assignment(100, 2000, 20, 80)),
		// healthy position
		test.WithInvalidAssignment(assignment(1000, 700, 1, 80)),
		// health factor exactly one is not liquidatable
		test.WithInvalidAssignment(assignment(1000, 800, 1, 80)),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16),
	)
}

func TestLiquidationCircuitWrongPositionHash(t *testing.T) {
	assert := test.NewAssert(t)
	scheme := circuits.SchemePoseidon2

	c := circuits.NewLiquidationCircuit(scheme, circuits.StrategyLookup)
	c.Price = 1
	c.LiquidationThreshold = 80
	// hash binds a different position than the witness
	c.PositionHash = positionHash(t, scheme, 2000, 850, 99)
	c.Collateral = 1000
	c.Debt = 850
	c.Salt = 99

	assert.CheckCircuit(circuits.NewLiquidationCircuit(scheme, circuits.StrategyLookup),
		test.WithInvalidAssignment(c),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16),
	)
}

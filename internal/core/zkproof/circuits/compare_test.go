package circuits

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"
)

type gteTestCircuit struct {
	A frontend.Variable `gnark:",public"`
	B frontend.Variable `gnark:",public"`

	strict bool
}

func (c *gteTestCircuit) Define(api frontend.API) error {
	rc := NewRangeChecker(api, StrategyLookup)
	cmp := NewComparator(api, rc, 8)
	a := rc.Constrain(c.A, 8)
	b := rc.Constrain(c.B, 8)
	if c.strict {
		cmp.AssertGt(a, b)
	} else {
		cmp.AssertGte(a, b)
	}
	return nil
}

func TestAssertGte(t *testing.T) {
	assert := test.NewAssert(t)
	assert.CheckCircuit(&gteTestCircuit{},
		test.WithValidAssignment(&gteTestCircuit{A: 5, B: 3}),
		test.WithValidAssignment(&gteTestCircuit{A: 7, B: 7}),
		test.WithValidAssignment(&gteTestCircuit{A: 255, B: 0}),
		test.WithInvalidAssignment(&gteTestCircuit{A: 3, B: 5}),
		test.WithInvalidAssignment(&gteTestCircuit{A: 0, B: 255}),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16),
	)
}

// Equality satisfies ≥ but not >.
func TestAssertGtStrict(t *testing.T) {
	assert := test.NewAssert(t)
	shape := func(a, b frontend.Variable) *gteTestCircuit {
		return &gteTestCircuit{A: a, B: b, strict: true}
	}
	assert.CheckCircuit(shape(nil, nil),
		test.WithValidAssignment(shape(5, 3)),
		test.WithValidAssignment(shape(1, 0)),
		test.WithInvalidAssignment(shape(7, 7)),
		test.WithInvalidAssignment(shape(3, 5)),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16),
	)
}

type unboundedOperandCircuit struct {
	A frontend.Variable
	B frontend.Variable
}

func (c *unboundedOperandCircuit) Define(api frontend.API) error {
	rc := NewRangeChecker(api, StrategyLookup)
	cmp := NewComparator(api, rc, 8)
	// A is range-checked wider than the comparator accepts.
	a := rc.Constrain(c.A, 16)
	b := rc.Constrain(c.B, 8)
	cmp.AssertGte(a, b)
	return nil
}

// Feeding the comparator an operand with a looser bound than its own width
// would reopen the wraparound hole, so composition fails at definition time.
func TestComparatorRejectsWideOperand(t *testing.T) {
	defer func() { _ = recover() }()
	_, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &unboundedOperandCircuit{})
	require.Error(t, err)
}

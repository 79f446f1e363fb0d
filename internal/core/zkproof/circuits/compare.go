package circuits

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
)

// Comparator proves ordering relations between bounded values using field
// subtraction plus a range check on the difference:
//
//	diff = a - b  (mod p)
//
// If a ≥ b as integers, diff is small and fits in [0, 2^width). If a < b,
// diff wraps to p - (b - a), which is astronomically larger and fails the
// range check. The argument is sound only because both operands carry a
// proven bound strictly below 2^width, which the Bounded type enforces
// structurally: there is no way to hand the comparator a raw variable.
type Comparator struct {
	api   frontend.API
	rc    *RangeChecker
	width int
}

// NewComparator builds a comparator whose checks hold for operands bounded by
// 2^width.
func NewComparator(api frontend.API, rc *RangeChecker, width int) *Comparator {
	assertWidthFits(api, width)
	return &Comparator{api: api, rc: rc, width: width}
}

// AssertGte constrains a ≥ b.
func (c *Comparator) AssertGte(a, b Bounded) {
	c.checkOperand(a)
	c.checkOperand(b)
	diff := c.api.Sub(a.v, b.v)
	c.rc.Constrain(diff, c.width)
}

// AssertGt constrains a > b, defined as a ≥ b+1. Equal operands therefore
// satisfy AssertGte but not AssertGt.
func (c *Comparator) AssertGt(a, b Bounded) {
	c.checkOperand(a)
	c.checkOperand(b)
	diff := c.api.Sub(a.v, c.api.Add(b.v, 1))
	c.rc.Constrain(diff, c.width)
}

// checkOperand rejects operands whose proven bound exceeds the comparator
// width. This fires while the circuit is being defined, long before any
// witness exists: composing the gadget wrongly is a programming error, not a
// proving failure.
func (c *Comparator) checkOperand(x Bounded) {
	if x.width > c.width {
		panic(fmt.Sprintf("circuits: operand width %d exceeds comparator width %d; range-check the operand first", x.width, c.width))
	}
}

// Package circuits contains the constraint-system gadgets and the three
// lending circuits built from them. Gadgets follow the gnark std convention:
// a constructor taking the frontend API, methods that add constraints, and
// panics (not errors) on definition-time misuse, since circuit shapes are
// fixed at compile time.
package circuits

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/bits"
	"github.com/consensys/gnark/std/rangecheck"
)

// RangeCheckStrategy selects how range constraints are materialized.
type RangeCheckStrategy uint8

const (
	// StrategyLookup proves membership in [0, 2^width) with the lookup-argument
	// based checker. Roughly constant constraints per check once the shared
	// table is amortized; preferred for circuits with many checks.
	StrategyLookup RangeCheckStrategy = iota
	// StrategyBits decomposes the value into width boolean wires and enforces
	// recomposition. O(width) constraints, no shared table; useful as a
	// cross-check and on backends without lookup support.
	StrategyBits
)

func (s RangeCheckStrategy) String() string {
	switch s {
	case StrategyLookup:
		return "lookup"
	case StrategyBits:
		return "bits"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseRangeCheckStrategy maps a config string to a strategy.
func ParseRangeCheckStrategy(s string) (RangeCheckStrategy, error) {
	switch s {
	case "", "lookup":
		return StrategyLookup, nil
	case "bits":
		return StrategyBits, nil
	default:
		return 0, fmt.Errorf("unknown range check strategy %q", s)
	}
}

// Bounded is a circuit variable together with a proven bit width: the wrapped
// value is constrained to [0, 2^Width()). Bounded values are only produced by
// RangeChecker.Constrain and by the width-tracking arithmetic helpers, which
// is what keeps the comparison gadget sound: an unchecked variable near the
// field modulus can never reach a comparison.
type Bounded struct {
	v     frontend.Variable
	width int
}

// Var returns the underlying circuit variable.
func (b Bounded) Var() frontend.Variable { return b.v }

// Width returns the proven bit width.
func (b Bounded) Width() int { return b.width }

// RangeChecker constrains variables to bounded intervals using the configured
// strategy. Both strategies expose the same contract so circuits stay
// paradigm-agnostic.
type RangeChecker struct {
	api      frontend.API
	strategy RangeCheckStrategy
	lookup   frontend.Rangechecker
}

// NewRangeChecker builds a checker for the given API and strategy.
func NewRangeChecker(api frontend.API, strategy RangeCheckStrategy) *RangeChecker {
	rc := &RangeChecker{api: api, strategy: strategy}
	if strategy == StrategyLookup {
		rc.lookup = rangecheck.New(api)
	}
	return rc
}

// Constrain proves v ∈ [0, 2^width) and returns the corresponding Bounded
// value. If the assignment lies outside the interval the constraint system
// becomes unsatisfiable; the failure surfaces at proving time, never as a
// runtime panic mid-computation.
func (rc *RangeChecker) Constrain(v frontend.Variable, width int) Bounded {
	assertWidthFits(rc.api, width)
	switch rc.strategy {
	case StrategyLookup:
		rc.lookup.Check(v, width)
	case StrategyBits:
		// ToBinary constrains each output wire to {0,1} and enforces that the
		// weighted sum recomposes to v, so all bits above width are zero.
		bits.ToBinary(rc.api, v, bits.WithNbDigits(width))
	default:
		panic(fmt.Sprintf("circuits: unsupported range check strategy %v", rc.strategy))
	}
	return Bounded{v: v, width: width}
}

// assertWidthFits rejects widths that would make the field-wraparound
// comparison argument unsound: 2^width must be far below the field modulus.
func assertWidthFits(api frontend.API, width int) {
	if width <= 0 {
		panic("circuits: range check width must be positive")
	}
	if max := api.Compiler().FieldBitLen() - 2; width > max {
		panic(fmt.Sprintf("circuits: range check width %d exceeds field capacity %d", width, max))
	}
}

// Mul multiplies two bounded values, tracking the worst-case bit growth. The
// result is bounded by construction (a·b < 2^(wa+wb)), so no extra constraint
// is added; only the recorded width grows.
func Mul(api frontend.API, a, b Bounded) Bounded {
	width := a.width + b.width
	assertWidthFits(api, width)
	return Bounded{v: api.Mul(a.v, b.v), width: width}
}

// MulConst multiplies a bounded value by a small positive constant.
func MulConst(api frontend.API, a Bounded, c uint64) Bounded {
	if c == 0 {
		panic("circuits: multiplication by zero constant loses the bound invariant")
	}
	width := a.width + bitLen(c)
	assertWidthFits(api, width)
	return Bounded{v: api.Mul(a.v, c), width: width}
}

// Add adds two bounded values; the sum is below 2^(max(wa,wb)+1).
func Add(api frontend.API, a, b Bounded) Bounded {
	width := a.width
	if b.width > width {
		width = b.width
	}
	width++
	assertWidthFits(api, width)
	return Bounded{v: api.Add(a.v, b.v), width: width}
}

func bitLen(c uint64) int {
	n := 0
	for c > 0 {
		n++
		c >>= 1
	}
	return n
}

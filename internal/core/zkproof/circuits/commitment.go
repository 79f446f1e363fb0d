package circuits

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/poseidon2"
)

// CommitmentScheme selects the binding function used by the circuits. The
// native (out-of-circuit) counterpart lives in the parent package and must
// produce identical values.
type CommitmentScheme uint8

const (
	// SchemePoseidon2 commits with the Poseidon2 sponge (x^5 S-box, full and
	// partial rounds, vetted round constants and mixing matrix from
	// gnark-crypto). Hiding and binding under standard assumptions.
	SchemePoseidon2 CommitmentScheme = iota
	// SchemeAlgebraic commits with c = v·s + v. Trivially invertible given s
	// and solvable for colliding pairs: NOT hiding, NOT binding. Kept only
	// for cheap prototyping and legacy commitments; never select it where a
	// commitment is security-relevant.
	SchemeAlgebraic
)

func (s CommitmentScheme) String() string {
	switch s {
	case SchemePoseidon2:
		return "poseidon2"
	case SchemeAlgebraic:
		return "algebraic"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseCommitmentScheme maps a config string to a scheme.
func ParseCommitmentScheme(s string) (CommitmentScheme, error) {
	switch s {
	case "", "poseidon2":
		return SchemePoseidon2, nil
	case "algebraic":
		return SchemeAlgebraic, nil
	default:
		return 0, fmt.Errorf("unknown commitment scheme %q", s)
	}
}

// Committer recomputes commitments inside the circuit so they can be equated
// with public inputs.
type Committer struct {
	api    frontend.API
	scheme CommitmentScheme
}

// NewCommitter builds a committer for the given scheme.
func NewCommitter(api frontend.API, scheme CommitmentScheme) *Committer {
	return &Committer{api: api, scheme: scheme}
}

// Commit returns the in-circuit commitment to (value, salt).
func (c *Committer) Commit(value, salt frontend.Variable) (frontend.Variable, error) {
	switch c.scheme {
	case SchemePoseidon2:
		return c.hash(value, salt)
	case SchemeAlgebraic:
		return c.api.Add(c.api.Mul(value, salt), value), nil
	default:
		return nil, fmt.Errorf("unsupported commitment scheme %v", c.scheme)
	}
}

// PositionHash binds a whole position (collateral, debt, salt) to one field
// element.
func (c *Committer) PositionHash(collateral, debt, salt frontend.Variable) (frontend.Variable, error) {
	switch c.scheme {
	case SchemePoseidon2:
		return c.hash(collateral, debt, salt)
	case SchemeAlgebraic:
		// collateral·salt + debt·salt + collateral + debt, matching the
		// legacy out-of-circuit formula.
		cs := c.api.Mul(collateral, salt)
		ds := c.api.Mul(debt, salt)
		return c.api.Add(c.api.Add(cs, ds), c.api.Add(collateral, debt)), nil
	default:
		return nil, fmt.Errorf("unsupported commitment scheme %v", c.scheme)
	}
}

func (c *Committer) hash(inputs ...frontend.Variable) (frontend.Variable, error) {
	// The hasher carries sponge state, so each commitment gets a fresh one.
	h, err := poseidon2.New(c.api)
	if err != nil {
		return nil, fmt.Errorf("poseidon2 hasher: %w", err)
	}
	h.Write(inputs...)
	return h.Sum(), nil
}

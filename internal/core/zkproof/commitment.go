package zkproof

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/privlend/v1/internal/core/zkproof/circuits"
)

// Native (out-of-circuit) counterparts of the in-circuit commitment gadget.
// The service computes commitments here when opening a position; the circuit
// recomputes them from the private witness and equates them with the public
// inputs, so the two implementations must agree bit for bit. The Poseidon2
// parameters come from the same gnark-crypto instantiation the circuit gadget
// uses.

// Commit returns commit(value, salt) under the given scheme.
func Commit(scheme circuits.CommitmentScheme, value, salt *big.Int) (*big.Int, error) {
	switch scheme {
	case circuits.SchemePoseidon2:
		return poseidonSum(value, salt)
	case circuits.SchemeAlgebraic:
		// c = v·s + v, reduced in fr.
		var v, s fr.Element
		v.SetBigInt(value)
		s.SetBigInt(salt)
		var c fr.Element
		c.Mul(&v, &s).Add(&c, &v)
		return elementToBig(&c), nil
	default:
		return nil, fmt.Errorf("unsupported commitment scheme %v", scheme)
	}
}

// PositionHash binds (collateral, debt, salt) to one field element under the
// given scheme.
func PositionHash(scheme circuits.CommitmentScheme, collateral, debt, salt *big.Int) (*big.Int, error) {
	switch scheme {
	case circuits.SchemePoseidon2:
		return poseidonSum(collateral, debt, salt)
	case circuits.SchemeAlgebraic:
		// collateral·salt + debt·salt + collateral + debt.
		var c, d, s fr.Element
		c.SetBigInt(collateral)
		d.SetBigInt(debt)
		s.SetBigInt(salt)
		var cs, ds, out fr.Element
		cs.Mul(&c, &s)
		ds.Mul(&d, &s)
		out.Add(&cs, &ds).Add(&out, &c).Add(&out, &d)
		return elementToBig(&out), nil
	default:
		return nil, fmt.Errorf("unsupported commitment scheme %v", scheme)
	}
}

func poseidonSum(inputs ...*big.Int) (*big.Int, error) {
	h := poseidon2.NewMerkleDamgardHasher()
	for _, in := range inputs {
		var e fr.Element
		e.SetBigInt(in)
		b := e.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return nil, fmt.Errorf("poseidon2 write: %w", err)
		}
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

func elementToBig(e *fr.Element) *big.Int {
	out := new(big.Int)
	e.BigInt(out)
	return out
}

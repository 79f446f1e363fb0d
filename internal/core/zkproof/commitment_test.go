package zkproof

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privlend/v1/internal/core/zkproof/circuits"
)

func TestCommitDeterministic(t *testing.T) {
	for _, scheme := range []circuits.CommitmentScheme{circuits.SchemePoseidon2, circuits.SchemeAlgebraic} {
		a, err := Commit(scheme, big.NewInt(1500), big.NewInt(42))
		require.NoError(t, err)
		b, err := Commit(scheme, big.NewInt(1500), big.NewInt(42))
		require.NoError(t, err)
		require.Zero(t, a.Cmp(b), "scheme %s", scheme)
	}
}

func TestCommitSaltSensitive(t *testing.T) {
	for _, scheme := range []circuits.CommitmentScheme{circuits.SchemePoseidon2, circuits.SchemeAlgebraic} {
		a, err := Commit(scheme, big.NewInt(1500), big.NewInt(42))
		require.NoError(t, err)
		b, err := Commit(scheme, big.NewInt(1500), big.NewInt(43))
		require.NoError(t, err)
		require.NotZero(t, a.Cmp(b), "scheme %s", scheme)

		c, err := Commit(scheme, big.NewInt(1501), big.NewInt(42))
		require.NoError(t, err)
		require.NotZero(t, a.Cmp(c), "scheme %s", scheme)
	}
}

// The algebraic scheme is a fixed polynomial, so its values are predictable.
func TestCommitAlgebraicFormula(t *testing.T) {
	c, err := Commit(circuits.SchemeAlgebraic, big.NewInt(7), big.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, int64(7*3+7), c.Int64())

	h, err := PositionHash(circuits.SchemeAlgebraic, big.NewInt(5), big.NewInt(2), big.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, int64(5*3+2*3+5+2), h.Int64())
}

func TestPositionHashBindsAllInputs(t *testing.T) {
	base, err := PositionHash(circuits.SchemePoseidon2, big.NewInt(1000), big.NewInt(850), big.NewInt(99))
	require.NoError(t, err)

	variants := [][3]int64{
		{1001, 850, 99},
		{1000, 851, 99},
		{1000, 850, 98},
	}
	for _, v := range variants {
		h, err := PositionHash(circuits.SchemePoseidon2, big.NewInt(v[0]), big.NewInt(v[1]), big.NewInt(v[2]))
		require.NoError(t, err)
		require.NotZero(t, base.Cmp(h), "variant %v", v)
	}
}

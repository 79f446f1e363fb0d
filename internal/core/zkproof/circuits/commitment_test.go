package circuits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommitmentScheme(t *testing.T) {
	s, err := ParseCommitmentScheme("")
	require.NoError(t, err)
	require.Equal(t, SchemePoseidon2, s)

	s, err = ParseCommitmentScheme("algebraic")
	require.NoError(t, err)
	require.Equal(t, SchemeAlgebraic, s)

	_, err = ParseCommitmentScheme("pedersen")
	require.Error(t, err)
}

func TestSchemeStrings(t *testing.T) {
	require.Equal(t, "poseidon2", SchemePoseidon2.String())
	require.Equal(t, "algebraic", SchemeAlgebraic.String())
	require.Equal(t, "lookup", StrategyLookup.String())
	require.Equal(t, "bits", StrategyBits.String())
}

package zkproof

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestParseFieldDecimal(t *testing.T) {
	v, err := ParseFieldDecimal("amount", "1500")
	require.NoError(t, err)
	require.Equal(t, int64(1500), v.Int64())

	v, err = ParseFieldDecimal("amount", "  0 ")
	require.NoError(t, err)
	require.Zero(t, v.Sign())

	for _, bad := range []string{"", "abc", "-1", "1.5", "0x10"} {
		_, err := ParseFieldDecimal("amount", bad)
		require.ErrorIs(t, err, ErrInvalidInput, "input %q", bad)
	}

	// the modulus itself must not silently reduce to zero
	_, err = ParseFieldDecimal("amount", fr.Modulus().String())
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseBoundedDecimal(t *testing.T) {
	v, err := ParseBoundedDecimal("amount", "255", 8)
	require.NoError(t, err)
	require.Equal(t, int64(255), v.Int64())

	_, err = ParseBoundedDecimal("amount", "256", 8)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseFieldHexRoundTrip(t *testing.T) {
	v := big.NewInt(123456789)
	got, err := ParseFieldHex("value", FieldToHex(v))
	require.NoError(t, err)
	require.Zero(t, got.Cmp(v))

	// bare hex without the prefix parses too
	got, err = ParseFieldHex("value", "ff")
	require.NoError(t, err)
	require.Equal(t, int64(255), got.Int64())

	for _, bad := range []string{"", "0x", "zz", "0x" + fr.Modulus().Text(16)} {
		_, err := ParseFieldHex("value", bad)
		require.ErrorIs(t, err, ErrInvalidInput, "input %q", bad)
	}
}

func TestParseSalt(t *testing.T) {
	// bare strings are base-10, like every other numeric input
	v, err := ParseSalt("12345")
	require.NoError(t, err)
	require.Equal(t, int64(12345), v.Int64())

	// hex only with an explicit prefix
	v, err = ParseSalt("0x3039")
	require.NoError(t, err)
	require.Equal(t, int64(12345), v.Int64())

	// empty draws a random salt
	v, err = ParseSalt("")
	require.NoError(t, err)
	require.Positive(t, v.Sign())

	for _, bad := range []string{"0", "0x00", "abc", "-1"} {
		_, err := ParseSalt(bad)
		require.ErrorIs(t, err, ErrInvalidInput, "input %q", bad)
	}
}

func TestRandomSaltVaries(t *testing.T) {
	a, err := RandomSalt()
	require.NoError(t, err)
	b, err := RandomSalt()
	require.NoError(t, err)
	require.NotZero(t, a.Cmp(b))
	require.Less(t, a.Cmp(fr.Modulus()), 0)
}

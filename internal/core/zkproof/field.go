package zkproof

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// fieldWordSize is the byte length of one BN254 scalar field element.
const fieldWordSize = fr.Bytes

// ParseFieldDecimal parses a base-10 unsigned integer into a scalar field
// element. Negative values and values at or above the field modulus are
// rejected rather than silently reduced: a reduced amount would prove a
// statement about a different number than the caller supplied.
func ParseFieldDecimal(field, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, WrapInputError(field, fmt.Errorf("empty value"))
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, WrapInputError(field, fmt.Errorf("not a base-10 integer: %q", s))
	}
	if v.Sign() < 0 {
		return nil, WrapInputError(field, fmt.Errorf("negative value %s", s))
	}
	if v.Cmp(fr.Modulus()) >= 0 {
		return nil, WrapInputError(field, fmt.Errorf("value exceeds field modulus"))
	}
	return v, nil
}

// ParseBoundedDecimal parses a decimal amount and additionally enforces the
// circuit's bit budget, so an out-of-range witness is rejected here with a
// clear message instead of surfacing as an unsatisfiable constraint system.
func ParseBoundedDecimal(field, s string, bits int) (*big.Int, error) {
	v, err := ParseFieldDecimal(field, s)
	if err != nil {
		return nil, err
	}
	if v.BitLen() > bits {
		return nil, WrapInputError(field, fmt.Errorf("value needs %d bits, circuit accepts at most %d", v.BitLen(), bits))
	}
	return v, nil
}

// ParseFieldHex parses a 0x-prefixed (or bare) hex string into a field
// element, with the same no-reduction policy as ParseFieldDecimal.
func ParseFieldHex(field, s string) (*big.Int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, WrapInputError(field, fmt.Errorf("empty value"))
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, WrapInputError(field, err)
	}
	if len(b) > fieldWordSize {
		return nil, WrapInputError(field, fmt.Errorf("value is %d bytes, field elements are %d", len(b), fieldWordSize))
	}
	v := new(big.Int).SetBytes(b)
	if v.Cmp(fr.Modulus()) >= 0 {
		return nil, WrapInputError(field, fmt.Errorf("value exceeds field modulus"))
	}
	return v, nil
}

// FieldToHex renders a field element as a fixed-width 0x-prefixed hex string,
// 32 bytes big-endian, matching the proof word encoding.
func FieldToHex(v *big.Int) string {
	var e fr.Element
	e.SetBigInt(v)
	b := e.Bytes()
	return "0x" + hex.EncodeToString(b[:])
}

// ParseSalt resolves a caller-supplied commitment salt. Like every other
// numeric input, a bare string is base-10; hex needs an explicit 0x prefix.
// Empty draws a fresh random salt, zero is rejected because it degenerates
// both commitment schemes.
func ParseSalt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RandomSalt()
	}
	var (
		v   *big.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = ParseFieldHex("salt", s)
	} else {
		v, err = ParseFieldDecimal("salt", s)
	}
	if err != nil {
		return nil, err
	}
	if v.Sign() == 0 {
		return nil, WrapInputError("salt", fmt.Errorf("salt must be non-zero"))
	}
	return v, nil
}

// RandomSalt draws a uniformly random field element for use as a commitment
// blinding salt.
func RandomSalt() (*big.Int, error) {
	v, err := rand.Int(rand.Reader, fr.Modulus())
	if err != nil {
		return nil, fmt.Errorf("draw salt: %w", err)
	}
	return v, nil
}

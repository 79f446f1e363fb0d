package zkproof

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
)

// ProofWords is the number of 32-byte words in a serialized proof. A BN254
// Groth16 proof is three curve points (Ar in G1, Bs in G2, Krs in G1) whose
// uncompressed coordinates are exactly eight field-sized words. The layout is
// the EVM verifier calldata layout, so the same bytes this service hands out
// can be submitted to an on-chain verifier unchanged.
const ProofWords = 8

// ProofSize is the serialized proof length in bytes.
const ProofSize = ProofWords * fieldWordSize

// ProofData is a proof in wire form: Ar.X | Ar.Y | Bs.X.A1 | Bs.X.A0 |
// Bs.Y.A1 | Bs.Y.A0 | Krs.X | Krs.Y, each word big-endian.
type ProofData [ProofWords][fieldWordSize]byte

// Bytes flattens the proof into a single 256-byte slice.
func (p ProofData) Bytes() []byte {
	out := make([]byte, 0, ProofSize)
	for i := range p {
		out = append(out, p[i][:]...)
	}
	return out
}

// Hex renders the proof as one 0x-prefixed hex string.
func (p ProofData) Hex() string {
	return "0x" + hex.EncodeToString(p.Bytes())
}

// Words renders each proof word as a 0x-prefixed hex string, handy for JSON
// responses and contract call builders.
func (p ProofData) Words() []string {
	out := make([]string, ProofWords)
	for i := range p {
		out[i] = "0x" + hex.EncodeToString(p[i][:])
	}
	return out
}

// ProofDataFromHex parses a proof previously rendered with Hex.
func ProofDataFromHex(s string) (ProofData, error) {
	var p ProofData
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrProofEncoding, err)
	}
	return ProofDataFromBytes(b)
}

// ProofDataFromBytes splits a 256-byte buffer into proof words.
func ProofDataFromBytes(b []byte) (ProofData, error) {
	var p ProofData
	if len(b) != ProofSize {
		return p, fmt.Errorf("%w: got %d bytes, want %d", ErrProofEncoding, len(b), ProofSize)
	}
	for i := range p {
		copy(p[i][:], b[i*fieldWordSize:(i+1)*fieldWordSize])
	}
	return p, nil
}

// EncodeProof serializes a freshly generated Groth16 proof. The raw encoding
// starts with the three proof points uncompressed; the trailing commitment
// section is empty for these circuits and is dropped, mirroring the Solidity
// calldata marshaller.
func EncodeProof(proof groth16.Proof) (ProofData, error) {
	var p ProofData
	concrete, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return p, fmt.Errorf("%w: unexpected proof type %T", ErrProofEncoding, proof)
	}
	if len(concrete.Commitments) != 0 {
		return p, fmt.Errorf("%w: circuit commitments are not representable in %d words", ErrProofEncoding, ProofWords)
	}
	var buf bytes.Buffer
	if _, err := concrete.WriteRawTo(&buf); err != nil {
		return p, fmt.Errorf("%w: %v", ErrProofEncoding, err)
	}
	raw := buf.Bytes()
	if len(raw) < ProofSize {
		return p, fmt.Errorf("%w: raw proof is %d bytes, want at least %d", ErrProofEncoding, len(raw), ProofSize)
	}
	return ProofDataFromBytes(raw[:ProofSize])
}

// DecodeProof reconstructs a verifiable proof from wire form. Each point is
// deserialized through gnark-crypto, which rejects coordinates outside the
// base field and points off the curve or outside the prime-order subgroup, so
// a decoded proof is always safe to hand to the verifier.
func DecodeProof(p ProofData) (groth16.Proof, error) {
	raw := p.Bytes()
	proof := &groth16bn254.Proof{}
	if _, err := proof.Ar.SetBytes(raw[:bn254.SizeOfG1AffineUncompressed]); err != nil {
		return nil, fmt.Errorf("%w: point Ar: %v", ErrProofEncoding, err)
	}
	off := bn254.SizeOfG1AffineUncompressed
	if _, err := proof.Bs.SetBytes(raw[off : off+bn254.SizeOfG2AffineUncompressed]); err != nil {
		return nil, fmt.Errorf("%w: point Bs: %v", ErrProofEncoding, err)
	}
	off += bn254.SizeOfG2AffineUncompressed
	if _, err := proof.Krs.SetBytes(raw[off : off+bn254.SizeOfG1AffineUncompressed]); err != nil {
		return nil, fmt.Errorf("%w: point Krs: %v", ErrProofEncoding, err)
	}
	return proof, nil
}

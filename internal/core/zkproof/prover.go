// Package zkproof generates and verifies the zero-knowledge proofs behind the
// lending API: collateral sufficiency, loan-to-value compliance and
// liquidation eligibility. Proofs are Groth16 over BN254 so they serialize to
// eight 32-byte words and verify on-chain with the standard precompiles.
package zkproof

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	"github.com/privlend/v1/internal/core/zkproof/circuits"
	"github.com/privlend/v1/pkg/interfaces/infrastructure/log"
	"github.com/privlend/v1/pkg/interfaces/lending"
)

func init() {
	// gnark writes compilation and proving progress to its own global logger;
	// route all service logging through ours instead.
	gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))
}

// CircuitKind identifies one of the lending circuits.
type CircuitKind string

const (
	CircuitCollateral  CircuitKind = "collateral"
	CircuitLTV         CircuitKind = "ltv"
	CircuitLiquidation CircuitKind = "liquidation"
)

// Kinds lists every circuit the prover can serve, in warm-up order.
func Kinds() []CircuitKind {
	return []CircuitKind{CircuitCollateral, CircuitLTV, CircuitLiquidation}
}

// ratioBase is the percent denominator shared by the LTV and liquidation
// statements.
const ratioBase = 100

// Options configures a Prover.
type Options struct {
	// Curve names the proving curve. Only "bn254" is supported: the
	// commitment hash and the wire format are pinned to its scalar field.
	Curve string
	// CapacityLog2 caps accepted circuits at 2^CapacityLog2 constraints.
	// Zero disables the guard.
	CapacityLog2 int
	// CommitmentScheme selects the commitment function ("poseidon2" or
	// "algebraic"; empty means poseidon2).
	CommitmentScheme string
	// RangeCheckStrategy selects how range constraints are materialized
	// ("lookup" or "bits"; empty means lookup).
	RangeCheckStrategy string

	Logger    log.Logger
	Telemetry lending.ProofTelemetry
}

// Prover compiles circuits, runs the trusted setup lazily, and generates and
// verifies proofs. Safe for concurrent use.
type Prover struct {
	curve    ecc.ID
	capacity int
	scheme   circuits.CommitmentScheme
	strategy circuits.RangeCheckStrategy

	logger    log.Logger
	telemetry lending.ProofTelemetry

	mu     sync.RWMutex
	setups map[CircuitKind]*trustedSetup
}

type trustedSetup struct {
	compiled     constraint.ConstraintSystem
	provingKey   groth16.ProvingKey
	verifyingKey groth16.VerifyingKey
}

// NewProver validates the options and returns a prover with an empty key
// cache. No circuit is compiled until first use; call WarmUp to front-load
// the setup cost.
func NewProver(opts Options) (*Prover, error) {
	curve, err := resolveCurve(opts.Curve)
	if err != nil {
		return nil, err
	}
	scheme, err := circuits.ParseCommitmentScheme(opts.CommitmentScheme)
	if err != nil {
		return nil, err
	}
	strategy, err := circuits.ParseRangeCheckStrategy(opts.RangeCheckStrategy)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		return nil, fmt.Errorf("zkproof: logger is required")
	}
	telemetry := opts.Telemetry
	if telemetry == nil {
		telemetry = lending.NopTelemetry{}
	}
	return &Prover{
		curve:     curve,
		capacity:  opts.CapacityLog2,
		scheme:    scheme,
		strategy:  strategy,
		logger:    logger,
		telemetry: telemetry,
		setups:    make(map[CircuitKind]*trustedSetup),
	}, nil
}

func resolveCurve(name string) (ecc.ID, error) {
	switch strings.ToLower(name) {
	case "", "bn254":
		return ecc.BN254, nil
	default:
		return 0, fmt.Errorf("zkproof: unsupported curve %q, only bn254 is supported", name)
	}
}

// Scheme returns the configured commitment scheme.
func (p *Prover) Scheme() circuits.CommitmentScheme { return p.scheme }

// WarmUp compiles and sets up every circuit so that the first proof request
// does not pay the multi-second setup cost. Respects ctx between circuits.
func (p *Prover) WarmUp(ctx context.Context) error {
	for _, kind := range Kinds() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.EnsureKeys(kind); err != nil {
			return err
		}
	}
	return nil
}

// EnsureKeys makes sure the proving and verifying keys for kind exist,
// running compilation and trusted setup at most once per circuit.
func (p *Prover) EnsureKeys(kind CircuitKind) error {
	_, err := p.setup(kind)
	return err
}

// Ready reports whether every circuit's keys are cached. It never triggers a
// setup, so it is safe to call from a readiness probe.
func (p *Prover) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, kind := range Kinds() {
		if _, ok := p.setups[kind]; !ok {
			return false
		}
	}
	return true
}

// setup returns the cached trusted setup for kind, creating it on first use.
// Double-checked under the write lock: concurrent first requests for the same
// circuit block until one of them finishes the setup, and the others reuse it.
func (p *Prover) setup(kind CircuitKind) (*trustedSetup, error) {
	p.mu.RLock()
	if s, ok := p.setups[kind]; ok {
		p.mu.RUnlock()
		return s, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.setups[kind]; ok {
		return s, nil
	}

	shape, err := p.newShape(kind)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	compiled, err := frontend.Compile(p.curve.ScalarField(), r1cs.NewBuilder, shape)
	if err != nil {
		return nil, WrapKeyInitError(string(kind), err)
	}
	nbConstraints := compiled.GetNbConstraints()
	if p.capacity > 0 && nbConstraints > 1<<p.capacity {
		return nil, WrapKeyInitError(string(kind),
			fmt.Errorf("circuit needs %d constraints, configured capacity is 2^%d", nbConstraints, p.capacity))
	}

	provingKey, verifyingKey, err := groth16.Setup(compiled)
	if err != nil {
		return nil, WrapKeyInitError(string(kind), err)
	}

	p.logger.Infof("trusted setup ready: circuit=%s constraints=%d scheme=%s strategy=%s elapsed=%s",
		kind, nbConstraints, p.scheme, p.strategy, time.Since(start).Round(time.Millisecond))

	s := &trustedSetup{compiled: compiled, provingKey: provingKey, verifyingKey: verifyingKey}
	p.setups[kind] = s
	return s, nil
}

// newShape builds the unassigned circuit used for compilation and key
// generation.
func (p *Prover) newShape(kind CircuitKind) (frontend.Circuit, error) {
	switch kind {
	case CircuitCollateral:
		return circuits.NewCollateralCircuit(p.scheme, p.strategy), nil
	case CircuitLTV:
		return circuits.NewLTVCircuit(p.scheme, p.strategy), nil
	case CircuitLiquidation:
		return circuits.NewLiquidationCircuit(p.scheme, p.strategy), nil
	default:
		return nil, WrapKeyInitError(string(kind), fmt.Errorf("unknown circuit kind"))
	}
}

// ProofResult carries a generated proof together with everything the caller
// needs to verify or re-derive it: public inputs in instance order, the
// commitments that appeared in them, and the salts that open those
// commitments. Private amounts are never echoed back.
type ProofResult struct {
	Kind         CircuitKind       `json:"kind"`
	Proof        ProofData         `json:"-"`
	ProofHex     string            `json:"proof"`
	ProofWords   []string          `json:"proof_words"`
	PublicInputs []string          `json:"public_inputs"`
	Commitments  map[string]string `json:"commitments,omitempty"`
	Salts        map[string]string `json:"salts,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// CollateralProofRequest asks for a proof that the (private) collateral
// covers the (public) threshold.
type CollateralProofRequest struct {
	Collateral string `json:"collateral"`
	Threshold  string `json:"threshold"`
	// Salt optionally fixes the commitment salt, decimal like every other
	// amount (0x prefix for hex). Empty draws a fresh random salt, returned
	// in the result.
	Salt string `json:"salt,omitempty"`
}

// GenerateCollateralProof proves collateral ≥ threshold.
func (p *Prover) GenerateCollateralProof(ctx context.Context, req CollateralProofRequest) (*ProofResult, error) {
	collateral, err := ParseBoundedDecimal("collateral", req.Collateral, circuits.AmountBits)
	if err != nil {
		return nil, err
	}
	threshold, err := ParseBoundedDecimal("threshold", req.Threshold, circuits.AmountBits)
	if err != nil {
		return nil, err
	}
	if collateral.Cmp(threshold) < 0 {
		return nil, WrapPreconditionError("collateral below threshold")
	}
	salt, err := ParseSalt(req.Salt)
	if err != nil {
		return nil, err
	}
	commitment, err := Commit(p.scheme, collateral, salt)
	if err != nil {
		return nil, WrapProvingError(string(CircuitCollateral), err)
	}

	assignment := circuits.NewCollateralCircuit(p.scheme, p.strategy)
	assignment.Threshold = threshold
	assignment.Commitment = commitment
	assignment.Collateral = collateral
	assignment.Salt = salt

	result, err := p.prove(ctx, CircuitCollateral, assignment)
	if err != nil {
		return nil, err
	}
	result.Commitments = map[string]string{"collateral": FieldToHex(commitment)}
	result.Salts = map[string]string{"collateral": FieldToHex(salt)}
	return result, nil
}

// LTVProofRequest asks for a proof that debt·100 ≤ collateral·maxLTV with
// both amounts private.
type LTVProofRequest struct {
	Debt       string `json:"debt"`
	Collateral string `json:"collateral"`
	// MaxLTV is the public maximum loan-to-value ratio in percent (0..100).
	MaxLTV         string `json:"max_ltv"`
	DebtSalt       string `json:"debt_salt,omitempty"`
	CollateralSalt string `json:"collateral_salt,omitempty"`
}

// GenerateLTVProof proves the position respects the maximum loan-to-value
// ratio.
func (p *Prover) GenerateLTVProof(ctx context.Context, req LTVProofRequest) (*ProofResult, error) {
	debt, err := ParseBoundedDecimal("debt", req.Debt, circuits.AmountBits)
	if err != nil {
		return nil, err
	}
	collateral, err := ParseBoundedDecimal("collateral", req.Collateral, circuits.AmountBits)
	if err != nil {
		return nil, err
	}
	maxLTV, err := p.parseRatio("max_ltv", req.MaxLTV)
	if err != nil {
		return nil, err
	}

	debtScaled := new(big.Int).Mul(debt, big.NewInt(ratioBase))
	collScaled := new(big.Int).Mul(collateral, maxLTV)
	if debtScaled.Cmp(collScaled) > 0 {
		return nil, WrapPreconditionError("loan-to-value ratio exceeds maximum")
	}

	debtSalt, err := ParseSalt(req.DebtSalt)
	if err != nil {
		return nil, err
	}
	collSalt, err := ParseSalt(req.CollateralSalt)
	if err != nil {
		return nil, err
	}
	debtCommitment, err := Commit(p.scheme, debt, debtSalt)
	if err != nil {
		return nil, WrapProvingError(string(CircuitLTV), err)
	}
	collCommitment, err := Commit(p.scheme, collateral, collSalt)
	if err != nil {
		return nil, WrapProvingError(string(CircuitLTV), err)
	}

	assignment := circuits.NewLTVCircuit(p.scheme, p.strategy)
	assignment.MaxLTV = maxLTV
	assignment.DebtCommitment = debtCommitment
	assignment.CollateralCommitment = collCommitment
	assignment.Debt = debt
	assignment.Collateral = collateral
	assignment.DebtSalt = debtSalt
	assignment.CollateralSalt = collSalt

	result, err := p.prove(ctx, CircuitLTV, assignment)
	if err != nil {
		return nil, err
	}
	result.Commitments = map[string]string{
		"debt":       FieldToHex(debtCommitment),
		"collateral": FieldToHex(collCommitment),
	}
	result.Salts = map[string]string{
		"debt":       FieldToHex(debtSalt),
		"collateral": FieldToHex(collSalt),
	}
	return result, nil
}

// LiquidationProofRequest asks for a proof that a position's health factor is
// strictly below one at the given price.
type LiquidationProofRequest struct {
	Collateral string `json:"collateral"`
	Debt       string `json:"debt"`
	// Price is the public whole-unit collateral price.
	Price string `json:"price"`
	// LiquidationThreshold is the public threshold in percent (0..100).
	LiquidationThreshold string `json:"liquidation_threshold"`
	Salt                 string `json:"salt,omitempty"`
}

// GenerateLiquidationProof proves collateral·price·threshold < debt·100. A
// position at health factor exactly one is healthy and is rejected upfront.
func (p *Prover) GenerateLiquidationProof(ctx context.Context, req LiquidationProofRequest) (*ProofResult, error) {
	collateral, err := ParseBoundedDecimal("collateral", req.Collateral, circuits.AmountBits)
	if err != nil {
		return nil, err
	}
	debt, err := ParseBoundedDecimal("debt", req.Debt, circuits.AmountBits)
	if err != nil {
		return nil, err
	}
	price, err := ParseBoundedDecimal("price", req.Price, circuits.PriceBits)
	if err != nil {
		return nil, err
	}
	threshold, err := p.parseRatio("liquidation_threshold", req.LiquidationThreshold)
	if err != nil {
		return nil, err
	}

	collValue := new(big.Int).Mul(collateral, price)
	collValue.Mul(collValue, threshold)
	debtScaled := new(big.Int).Mul(debt, big.NewInt(ratioBase))
	if collValue.Cmp(debtScaled) >= 0 {
		return nil, WrapPreconditionError("position is healthy, not liquidatable")
	}

	salt, err := ParseSalt(req.Salt)
	if err != nil {
		return nil, err
	}
	positionHash, err := PositionHash(p.scheme, collateral, debt, salt)
	if err != nil {
		return nil, WrapProvingError(string(CircuitLiquidation), err)
	}

	assignment := circuits.NewLiquidationCircuit(p.scheme, p.strategy)
	assignment.Price = price
	assignment.LiquidationThreshold = threshold
	assignment.PositionHash = positionHash
	assignment.Collateral = collateral
	assignment.Debt = debt
	assignment.Salt = salt

	result, err := p.prove(ctx, CircuitLiquidation, assignment)
	if err != nil {
		return nil, err
	}
	result.Commitments = map[string]string{"position": FieldToHex(positionHash)}
	result.Salts = map[string]string{"position": FieldToHex(salt)}
	return result, nil
}

// prove runs the shared pipeline: full witness, Groth16 prove, self-verify
// against the cached verifying key, wire encoding. The self-verification
// catches key-cache corruption and encoding drift before a bad proof ever
// leaves the service.
func (p *Prover) prove(ctx context.Context, kind CircuitKind, assignment frontend.Circuit) (*ProofResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapProvingError(string(kind), err)
	}
	setup, err := p.setup(kind)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	success := false
	defer func() {
		p.telemetry.ObserveProof(string(kind), time.Since(start), success)
	}()

	fullWitness, err := frontend.NewWitness(assignment, p.curve.ScalarField())
	if err != nil {
		return nil, WrapProvingError(string(kind), err)
	}
	proof, err := groth16.Prove(setup.compiled, setup.provingKey, fullWitness)
	if err != nil {
		return nil, WrapProvingError(string(kind), err)
	}
	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, WrapProvingError(string(kind), err)
	}
	if err := groth16.Verify(proof, setup.verifyingKey, publicWitness); err != nil {
		return nil, WrapVerificationError(string(kind), err)
	}

	data, err := EncodeProof(proof)
	if err != nil {
		return nil, WrapProvingError(string(kind), err)
	}
	publicHex, err := publicInputsHex(publicWitness)
	if err != nil {
		return nil, WrapProvingError(string(kind), err)
	}
	success = true

	p.logger.Debugf("proof generated: circuit=%s elapsed=%s", kind, time.Since(start).Round(time.Millisecond))
	return &ProofResult{
		Kind:         kind,
		Proof:        data,
		ProofHex:     data.Hex(),
		ProofWords:   data.Words(),
		PublicInputs: publicHex,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// Verify checks a wire-form proof against public inputs given as hex field
// elements in instance order. It needs only the verifying key, so it will
// trigger a trusted setup if the circuit was never proven on this instance.
func (p *Prover) Verify(ctx context.Context, kind CircuitKind, data ProofData, publicInputs []string) error {
	if err := ctx.Err(); err != nil {
		return WrapVerificationError(string(kind), err)
	}
	// reject malformed input before paying for a lazy trusted setup
	proof, err := DecodeProof(data)
	if err != nil {
		return err
	}
	assignment, err := p.publicAssignment(kind, publicInputs)
	if err != nil {
		return err
	}
	setup, err := p.setup(kind)
	if err != nil {
		return err
	}
	publicWitness, err := frontend.NewWitness(assignment, p.curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return WrapVerificationError(string(kind), err)
	}
	if err := groth16.Verify(proof, setup.verifyingKey, publicWitness); err != nil {
		return WrapVerificationError(string(kind), err)
	}
	return nil
}

// publicAssignment rebuilds a circuit assignment carrying only the public
// instance, in the declaration order of the circuit struct.
func (p *Prover) publicAssignment(kind CircuitKind, inputs []string) (frontend.Circuit, error) {
	values := make([]*big.Int, len(inputs))
	for i, in := range inputs {
		v, err := ParseFieldHex(fmt.Sprintf("public_inputs[%d]", i), in)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	switch kind {
	case CircuitCollateral:
		if len(values) != 2 {
			return nil, WrapInputError("public_inputs", fmt.Errorf("collateral circuit expects 2 public inputs, got %d", len(values)))
		}
		c := circuits.NewCollateralCircuit(p.scheme, p.strategy)
		c.Threshold = values[0]
		c.Commitment = values[1]
		return c, nil
	case CircuitLTV:
		if len(values) != 3 {
			return nil, WrapInputError("public_inputs", fmt.Errorf("ltv circuit expects 3 public inputs, got %d", len(values)))
		}
		c := circuits.NewLTVCircuit(p.scheme, p.strategy)
		c.MaxLTV = values[0]
		c.DebtCommitment = values[1]
		c.CollateralCommitment = values[2]
		return c, nil
	case CircuitLiquidation:
		if len(values) != 3 {
			return nil, WrapInputError("public_inputs", fmt.Errorf("liquidation circuit expects 3 public inputs, got %d", len(values)))
		}
		c := circuits.NewLiquidationCircuit(p.scheme, p.strategy)
		c.Price = values[0]
		c.LiquidationThreshold = values[1]
		c.PositionHash = values[2]
		return c, nil
	default:
		return nil, WrapInputError("kind", fmt.Errorf("unknown circuit kind %q", kind))
	}
}

func (p *Prover) parseRatio(field, s string) (*big.Int, error) {
	v, err := ParseBoundedDecimal(field, s, circuits.RatioBits)
	if err != nil {
		return nil, err
	}
	if v.Cmp(big.NewInt(ratioBase)) > 0 {
		return nil, WrapInputError(field, fmt.Errorf("ratio %s exceeds %d percent", v, ratioBase))
	}
	return v, nil
}

// publicInputsHex flattens a public witness into hex field elements in
// instance order.
func publicInputsHex(w witness.Witness) ([]string, error) {
	vec, ok := w.Vector().(fr.Vector)
	if !ok {
		return nil, fmt.Errorf("unexpected witness vector type %T", w.Vector())
	}
	out := make([]string, len(vec))
	for i := range vec {
		b := vec[i].Bytes()
		out[i] = "0x" + hex.EncodeToString(b[:])
	}
	return out, nil
}

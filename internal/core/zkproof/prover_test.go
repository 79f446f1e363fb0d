package zkproof

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	logimpl "github.com/privlend/v1/internal/core/infrastructure/log"
	"github.com/privlend/v1/internal/core/zkproof/circuits"
)

func newTestProver(t *testing.T) *Prover {
	t.Helper()
	p, err := NewProver(Options{
		Logger:       logimpl.NewNop(),
		CapacityLog2: 18,
	})
	require.NoError(t, err)
	return p
}

func TestNewProverOptionValidation(t *testing.T) {
	_, err := NewProver(Options{})
	require.Error(t, err) // logger required

	_, err = NewProver(Options{Logger: logimpl.NewNop(), Curve: "bls12-381"})
	require.Error(t, err)

	_, err = NewProver(Options{Logger: logimpl.NewNop(), CommitmentScheme: "pedersen"})
	require.Error(t, err)

	_, err = NewProver(Options{Logger: logimpl.NewNop(), RangeCheckStrategy: "binary"})
	require.Error(t, err)
}

func TestCollateralProofLifecycle(t *testing.T) {
	p := newTestProver(t)
	ctx := context.Background()

	res, err := p.GenerateCollateralProof(ctx, CollateralProofRequest{
		Collateral: "1500",
		Threshold:  "1000",
	})
	require.NoError(t, err)
	require.Equal(t, CircuitCollateral, res.Kind)
	require.Len(t, res.PublicInputs, 2)
	require.Len(t, res.ProofWords, ProofWords)
	require.NotEmpty(t, res.Commitments["collateral"])
	require.NotEmpty(t, res.Salts["collateral"])

	require.NoError(t, p.Verify(ctx, CircuitCollateral, res.Proof, res.PublicInputs))

	// same proof against a different threshold must not verify
	altered := append([]string(nil), res.PublicInputs...)
	altered[0] = FieldToHex(big.NewInt(999))
	require.ErrorIs(t, p.Verify(ctx, CircuitCollateral, res.Proof, altered), ErrVerification)

	// a corrupted proof word never reaches the pairing check
	tampered := res.Proof
	tampered[2][0] ^= 0xff
	require.Error(t, p.Verify(ctx, CircuitCollateral, tampered, res.PublicInputs))
}

func TestCollateralProofPrecondition(t *testing.T) {
	p := newTestProver(t)
	_, err := p.GenerateCollateralProof(context.Background(), CollateralProofRequest{
		Collateral: "500",
		Threshold:  "1000",
	})
	require.ErrorIs(t, err, ErrPreconditionFailed)
	require.True(t, IsCallerError(err))
}

func TestProofInputValidation(t *testing.T) {
	p := newTestProver(t)
	ctx := context.Background()

	_, err := p.GenerateCollateralProof(ctx, CollateralProofRequest{Collateral: "abc", Threshold: "1"})
	require.ErrorIs(t, err, ErrInvalidInput)

	// 2^40 exceeds the amount bit budget
	wide := new(big.Int).Lsh(big.NewInt(1), uint(circuits.AmountBits)).String()
	_, err = p.GenerateCollateralProof(ctx, CollateralProofRequest{Collateral: wide, Threshold: "1"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.GenerateLTVProof(ctx, LTVProofRequest{Debt: "1", Collateral: "10", MaxLTV: "101"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.GenerateCollateralProof(ctx, CollateralProofRequest{Collateral: "10", Threshold: "1", Salt: "0"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.GenerateCollateralProof(ctx, CollateralProofRequest{Collateral: "10", Threshold: "1", Salt: "0x00"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.GenerateLiquidationProof(ctx, LiquidationProofRequest{
		Collateral: "1", Debt: "100", Price: "70000", LiquidationThreshold: "80",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLTVProofLifecycle(t *testing.T) {
	p := newTestProver(t)
	ctx := context.Background()

	res, err := p.GenerateLTVProof(ctx, LTVProofRequest{
		Debt:           "500",
		Collateral:     "1000",
		MaxLTV:         "75",
		DebtSalt:       "0x07",
		CollateralSalt: "0x0b",
	})
	require.NoError(t, err)
	require.Len(t, res.PublicInputs, 3)

	// supplied salts make the commitments reproducible
	debtCommitment, err := Commit(p.Scheme(), big.NewInt(500), big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, FieldToHex(debtCommitment), res.Commitments["debt"])

	require.NoError(t, p.Verify(ctx, CircuitLTV, res.Proof, res.PublicInputs))

	_, err = p.GenerateLTVProof(ctx, LTVProofRequest{Debt: "800", Collateral: "1000", MaxLTV: "75"})
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestLiquidationProofLifecycle(t *testing.T) {
	p := newTestProver(t)
	ctx := context.Background()

	res, err := p.GenerateLiquidationProof(ctx, LiquidationProofRequest{
		Collateral:           "1000",
		Debt:                 "850",
		Price:                "1",
		LiquidationThreshold: "80",
	})
	require.NoError(t, err)
	require.Len(t, res.PublicInputs, 3)
	require.NoError(t, p.Verify(ctx, CircuitLiquidation, res.Proof, res.PublicInputs))

	// healthy position, including the health-factor-one boundary
	_, err = p.GenerateLiquidationProof(ctx, LiquidationProofRequest{
		Collateral: "1000", Debt: "800", Price: "1", LiquidationThreshold: "80",
	})
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestEndToEndLendingScenarios(t *testing.T) {
	p := newTestProver(t)
	ctx := context.Background()

	// over-collateralized borrower with a fixed salt: the public instance is
	// exactly [threshold, commitment(collateral, salt)]
	res, err := p.GenerateCollateralProof(ctx, CollateralProofRequest{
		Collateral: "1000",
		Threshold:  "500",
		Salt:       "12345", // decimal, like the amounts
	})
	require.NoError(t, err)
	commitment, err := Commit(p.Scheme(), big.NewInt(1000), big.NewInt(12345))
	require.NoError(t, err)
	require.Equal(t, []string{FieldToHex(big.NewInt(500)), FieldToHex(commitment)}, res.PublicInputs)
	require.NoError(t, p.Verify(ctx, CircuitCollateral, res.Proof, res.PublicInputs))

	// loan exactly at the maximum ratio is still compliant
	res, err = p.GenerateLTVProof(ctx, LTVProofRequest{Debt: "80", Collateral: "100", MaxLTV: "80"})
	require.NoError(t, err)
	require.NoError(t, p.Verify(ctx, CircuitLTV, res.Proof, res.PublicInputs))

	// health factor 85/90 < 1: liquidatable
	res, err = p.GenerateLiquidationProof(ctx, LiquidationProofRequest{
		Collateral: "100", Price: "1", LiquidationThreshold: "85", Debt: "90",
	})
	require.NoError(t, err)
	require.NoError(t, p.Verify(ctx, CircuitLiquidation, res.Proof, res.PublicInputs))

	// health factor 85/50 > 1: healthy, refused before proving
	_, err = p.GenerateLiquidationProof(ctx, LiquidationProofRequest{
		Collateral: "100", Price: "1", LiquidationThreshold: "85", Debt: "50",
	})
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestVerifyInputShape(t *testing.T) {
	p := newTestProver(t)
	ctx := context.Background()

	var data ProofData
	err := p.Verify(ctx, CircuitCollateral, data, []string{"0x01"})
	require.ErrorIs(t, err, ErrInvalidInput)

	err = p.Verify(ctx, CircuitKind("unknown"), data, nil)
	require.Error(t, err)
}

func TestSetupCachedOnce(t *testing.T) {
	p := newTestProver(t)

	s1, err := p.setup(CircuitCollateral)
	require.NoError(t, err)
	s2, err := p.setup(CircuitCollateral)
	require.NoError(t, err)
	require.Same(t, s1, s2)
}

func TestSetupConcurrentFirstUse(t *testing.T) {
	p := newTestProver(t)

	const n = 4
	setups := make([]*trustedSetup, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := p.setup(CircuitCollateral)
			require.NoError(t, err)
			setups[i] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.Same(t, setups[0], setups[i])
	}
}

func TestCapacityGuard(t *testing.T) {
	p, err := NewProver(Options{Logger: logimpl.NewNop(), CapacityLog2: 1})
	require.NoError(t, err)

	err = p.EnsureKeys(CircuitCollateral)
	require.ErrorIs(t, err, ErrKeyInitFailed)
}

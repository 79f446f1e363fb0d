package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/privlend/v1/internal/config"
	logimpl "github.com/privlend/v1/internal/core/infrastructure/log"
	"github.com/privlend/v1/internal/core/zkproof"
)

func newProverFromConfig() (*zkproof.Prover, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logimpl.New(logimpl.Options{Level: "warn", JSON: false})
	if err != nil {
		return nil, err
	}
	return zkproof.NewProver(zkproof.Options{
		Curve:              cfg.ZKProof.Curve,
		CapacityLog2:       cfg.ZKProof.CapacityLog2,
		CommitmentScheme:   cfg.ZKProof.CommitmentScheme,
		RangeCheckStrategy: cfg.ZKProof.RangeCheckStrategy,
		Logger:             logger,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newProveCmd generates a single proof from the command line, mostly useful
// for smoke-testing a deployment's circuit configuration.
func newProveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Generate one proof from the command line",
	}

	var collateral, threshold, debt, maxLTV, price, liqThreshold string

	collateralCmd := &cobra.Command{
		Use:   "collateral",
		Short: "Prove collateral covers a threshold",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newProverFromConfig()
			if err != nil {
				return err
			}
			result, err := p.GenerateCollateralProof(context.Background(), zkproof.CollateralProofRequest{
				Collateral: collateral,
				Threshold:  threshold,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	collateralCmd.Flags().StringVar(&collateral, "collateral", "", "private collateral amount")
	collateralCmd.Flags().StringVar(&threshold, "threshold", "", "public threshold")

	ltvCmd := &cobra.Command{
		Use:   "ltv",
		Short: "Prove a position respects the maximum loan-to-value ratio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newProverFromConfig()
			if err != nil {
				return err
			}
			result, err := p.GenerateLTVProof(context.Background(), zkproof.LTVProofRequest{
				Debt:       debt,
				Collateral: collateral,
				MaxLTV:     maxLTV,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	ltvCmd.Flags().StringVar(&debt, "debt", "", "private debt amount")
	ltvCmd.Flags().StringVar(&collateral, "collateral", "", "private collateral amount")
	ltvCmd.Flags().StringVar(&maxLTV, "max-ltv", "", "public maximum LTV in percent")

	liquidationCmd := &cobra.Command{
		Use:   "liquidation",
		Short: "Prove a position is liquidatable at a price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newProverFromConfig()
			if err != nil {
				return err
			}
			result, err := p.GenerateLiquidationProof(context.Background(), zkproof.LiquidationProofRequest{
				Collateral:           collateral,
				Debt:                 debt,
				Price:                price,
				LiquidationThreshold: liqThreshold,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	liquidationCmd.Flags().StringVar(&collateral, "collateral", "", "private collateral amount")
	liquidationCmd.Flags().StringVar(&debt, "debt", "", "private debt amount")
	liquidationCmd.Flags().StringVar(&price, "price", "", "public whole-unit price")
	liquidationCmd.Flags().StringVar(&liqThreshold, "liquidation-threshold", "", "public threshold in percent")

	cmd.AddCommand(collateralCmd, ltvCmd, liquidationCmd)
	return cmd
}

// newVerifyCmd checks a proof against public inputs.
func newVerifyCmd() *cobra.Command {
	var kind, proofHex, publicInputs string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a serialized proof",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newProverFromConfig()
			if err != nil {
				return err
			}
			data, err := zkproof.ProofDataFromHex(proofHex)
			if err != nil {
				return err
			}
			inputs := strings.Split(publicInputs, ",")
			if err := p.Verify(context.Background(), zkproof.CircuitKind(kind), data, inputs); err != nil {
				return err
			}
			fmt.Println("proof valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "circuit kind: collateral, ltv or liquidation")
	cmd.Flags().StringVar(&proofHex, "proof", "", "proof as one 0x hex string")
	cmd.Flags().StringVar(&publicInputs, "public-inputs", "", "comma-separated hex public inputs in instance order")
	return cmd
}

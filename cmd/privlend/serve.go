package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/privlend/v1/internal/api/http"
	"github.com/privlend/v1/internal/api/http/handlers"
	"github.com/privlend/v1/internal/api/websocket"
	"github.com/privlend/v1/internal/config"
	logimpl "github.com/privlend/v1/internal/core/infrastructure/log"
	"github.com/privlend/v1/internal/core/infrastructure/metrics"
	"github.com/privlend/v1/internal/core/index"
	"github.com/privlend/v1/internal/core/oracle"
	"github.com/privlend/v1/internal/core/zkproof"
	"github.com/privlend/v1/pkg/interfaces/infrastructure/log"
	"github.com/privlend/v1/pkg/interfaces/lending"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket hub and async proof pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg config.Config) error {
	logger, err := logimpl.New(logimpl.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	prover, err := zkproof.NewProver(zkproof.Options{
		Curve:              cfg.ZKProof.Curve,
		CapacityLog2:       cfg.ZKProof.CapacityLog2,
		CommitmentScheme:   cfg.ZKProof.CommitmentScheme,
		RangeCheckStrategy: cfg.ZKProof.RangeCheckStrategy,
		Logger:             logger,
		Telemetry:          m,
	})
	if err != nil {
		return err
	}
	if cfg.ZKProof.WarmUp {
		logger.Infof("warming up circuits, this can take a while")
		if err := prover.WarmUp(ctx); err != nil {
			return err
		}
	}

	hub := websocket.NewHub(logger)
	hub.Start()
	defer hub.Stop()

	pool := zkproof.NewPool(prover, logger, zkproof.PoolOptions{
		Workers:    cfg.ZKProof.PoolWorkers,
		QueueSize:  cfg.ZKProof.PoolQueueSize,
		JobTimeout: cfg.ZKProof.JobTimeout.Std(),
		OnComplete: func(job zkproof.Job) {
			if job.Status != zkproof.JobDone || job.Result == nil {
				return
			}
			hub.Broadcast("proof", map[string]any{
				"kind":          job.Kind,
				"job_id":        job.ID,
				"public_inputs": job.Result.PublicInputs,
			})
		},
	})
	pool.Start()
	defer pool.Stop()

	feed, err := oracle.New(oracle.MockSource{}, logger, oracle.Options{
		TTL:       cfg.Oracle.TTL.Std(),
		Telemetry: m,
	})
	if err != nil {
		return err
	}
	defer feed.Close()

	store, err := index.New(logger, index.Options{Dir: cfg.Index.Dir})
	if err != nil {
		return err
	}
	defer store.Close()

	go broadcastPrices(ctx, logger, hub, feed, cfg.Oracle.Symbol, cfg.Oracle.BroadcastInterval.Std())

	h, err := handlers.New(handlers.Deps{
		Logger: logger,
		Prover: prover,
		Pool:   pool,
		Feed:   feed,
		Index:  store,
		Hub:    hub,
		Symbol: cfg.Oracle.Symbol,
	})
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg.Server, logger, h, m, hub)
	return srv.Run(ctx)
}

// broadcastPrices pushes the current quote to websocket subscribers on a
// fixed cadence. Quotes come from the caching feed, so this stays cheap even
// with a short interval.
func broadcastPrices(ctx context.Context, logger log.Logger, hub *websocket.Hub, feed lending.PriceFeed, symbol string, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			quote, err := feed.Price(ctx, symbol)
			if err != nil {
				logger.Warnf("price broadcast skipped: %v", err)
				continue
			}
			hub.Broadcast("price", map[string]any{
				"symbol":     quote.Symbol,
				"price_usd":  quote.Price.String(),
				"formatted":  oracle.Formatted(quote.Price),
				"source":     quote.Source,
				"updated_at": quote.UpdatedAt,
			})
		}
	}
}

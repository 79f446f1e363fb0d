// Package oracle provides the collateral price feed. Quotes are cached for a
// short window so bursts of proof requests do not hammer the upstream source,
// trading a little staleness for availability.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/privlend/v1/pkg/interfaces/infrastructure/log"
	"github.com/privlend/v1/pkg/interfaces/lending"
)

// DefaultTTL is how long a cached quote stays fresh.
const DefaultTTL = 60 * time.Second

// Source fetches a quote from the upstream price provider.
type Source interface {
	Fetch(ctx context.Context, symbol string) (lending.Quote, error)
}

// FetchTelemetry receives cache hit/miss/error outcomes.
type FetchTelemetry interface {
	ObservePriceFetch(outcome string)
}

type nopTelemetry struct{}

func (nopTelemetry) ObservePriceFetch(string) {}

// MockSource returns a fixed quote, the stand-in until a Chainlink or
// aggregator source is wired up.
type MockSource struct{}

func (MockSource) Fetch(_ context.Context, symbol string) (lending.Quote, error) {
	change := -2.5
	return lending.Quote{
		Symbol: strings.ToUpper(symbol),
		// $2000.00 at 8 decimals
		Price:     big.NewInt(2000_00000000),
		Source:    "mock",
		UpdatedAt: time.Now().UTC(),
		Change24h: &change,
	}, nil
}

// Options configures a CachingFeed.
type Options struct {
	TTL       time.Duration
	Telemetry FetchTelemetry
}

// CachingFeed implements lending.PriceFeed with a TTL cache in front of a
// Source.
type CachingFeed struct {
	source    Source
	cache     *bigcache.BigCache
	logger    log.Logger
	telemetry FetchTelemetry
}

// New builds a caching feed over the given source.
func New(source Source, logger log.Logger, opts Options) (*CachingFeed, error) {
	if source == nil {
		return nil, fmt.Errorf("oracle: source is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	telemetry := opts.Telemetry
	if telemetry == nil {
		telemetry = nopTelemetry{}
	}
	cache, err := bigcache.New(context.Background(), bigcache.DefaultConfig(ttl))
	if err != nil {
		return nil, fmt.Errorf("oracle: init cache: %w", err)
	}
	return &CachingFeed{
		source:    source,
		cache:     cache,
		logger:    logger,
		telemetry: telemetry,
	}, nil
}

// Price implements lending.PriceFeed. Quotes round-trip through the cache as
// JSON; the cached UpdatedAt is preserved so callers can see how stale a
// quote is.
func (f *CachingFeed) Price(ctx context.Context, symbol string) (lending.Quote, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	if key == "" {
		return lending.Quote{}, fmt.Errorf("oracle: empty symbol")
	}

	if raw, err := f.cache.Get(key); err == nil {
		var q lending.Quote
		if err := json.Unmarshal(raw, &q); err == nil {
			f.telemetry.ObservePriceFetch("hit")
			return q, nil
		}
		// corrupt entry, fall through to a fresh fetch
		f.logger.Warnf("price cache entry for %s unreadable, refetching", key)
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		f.logger.Warnf("price cache read for %s failed: %v", key, err)
	}

	q, err := f.source.Fetch(ctx, key)
	if err != nil {
		f.telemetry.ObservePriceFetch("error")
		return lending.Quote{}, fmt.Errorf("oracle: fetch %s: %w", key, err)
	}
	f.telemetry.ObservePriceFetch("miss")

	if raw, err := json.Marshal(q); err == nil {
		if err := f.cache.Set(key, raw); err != nil {
			f.logger.Warnf("price cache write for %s failed: %v", key, err)
		}
	}
	return q, nil
}

// Close releases the cache.
func (f *CachingFeed) Close() error {
	return f.cache.Close()
}

// WholeUnits truncates an 8-decimal quote price to whole currency units, the
// scale the liquidation circuit works in.
func WholeUnits(price *big.Int) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(lending.PriceDecimals), nil)
	return new(big.Int).Quo(price, scale)
}

// Formatted renders an 8-decimal price as a dollar string, e.g. "$2000.00".
func Formatted(price *big.Int) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(lending.PriceDecimals), nil)
	whole, frac := new(big.Int).QuoRem(price, scale, new(big.Int))
	cents := new(big.Int).Div(frac, big.NewInt(1_000_000)) // 8 → 2 decimals
	return fmt.Sprintf("$%s.%02d", whole, cents)
}

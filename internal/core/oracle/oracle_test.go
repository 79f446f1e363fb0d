package oracle

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	logimpl "github.com/privlend/v1/internal/core/infrastructure/log"
	"github.com/privlend/v1/pkg/interfaces/lending"
)

type countingSource struct {
	calls atomic.Int64
	err   error
}

func (s *countingSource) Fetch(_ context.Context, symbol string) (lending.Quote, error) {
	s.calls.Add(1)
	if s.err != nil {
		return lending.Quote{}, s.err
	}
	return lending.Quote{
		Symbol:    symbol,
		Price:     big.NewInt(2000_00000000),
		Source:    "test",
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func TestPriceCaching(t *testing.T) {
	src := &countingSource{}
	feed, err := New(src, logimpl.NewNop(), Options{TTL: time.Minute})
	require.NoError(t, err)
	defer feed.Close()

	ctx := context.Background()
	q1, err := feed.Price(ctx, "eth")
	require.NoError(t, err)
	require.Equal(t, "ETH", q1.Symbol)

	q2, err := feed.Price(ctx, "ETH")
	require.NoError(t, err)
	require.Equal(t, q1.UpdatedAt, q2.UpdatedAt)
	require.EqualValues(t, 1, src.calls.Load())

	// a different symbol is a separate cache entry
	_, err = feed.Price(ctx, "BTC")
	require.NoError(t, err)
	require.EqualValues(t, 2, src.calls.Load())
}

func TestPriceSourceError(t *testing.T) {
	src := &countingSource{err: errors.New("upstream down")}
	feed, err := New(src, logimpl.NewNop(), Options{})
	require.NoError(t, err)
	defer feed.Close()

	_, err = feed.Price(context.Background(), "ETH")
	require.Error(t, err)
}

func TestPriceEmptySymbol(t *testing.T) {
	feed, err := New(MockSource{}, logimpl.NewNop(), Options{})
	require.NoError(t, err)
	defer feed.Close()

	_, err = feed.Price(context.Background(), "  ")
	require.Error(t, err)
}

func TestMockSourceQuote(t *testing.T) {
	q, err := MockSource{}.Fetch(context.Background(), "eth")
	require.NoError(t, err)
	require.Equal(t, "ETH", q.Symbol)
	require.Equal(t, big.NewInt(2000_00000000), q.Price)
	require.Equal(t, "mock", q.Source)
	require.NotNil(t, q.Change24h)
}

func TestWholeUnits(t *testing.T) {
	require.Equal(t, int64(2000), WholeUnits(big.NewInt(2000_00000000)).Int64())
	require.Equal(t, int64(2000), WholeUnits(big.NewInt(2000_99999999)).Int64())
	require.Equal(t, int64(0), WholeUnits(big.NewInt(99_999_999)).Int64())
}

func TestFormatted(t *testing.T) {
	require.Equal(t, "$2000.00", Formatted(big.NewInt(2000_00000000)))
	require.Equal(t, "$1999.50", Formatted(big.NewInt(1999_50000000)))
	require.Equal(t, "$0.09", Formatted(big.NewInt(9_000_000)))
}

package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	logimpl "github.com/privlend/v1/internal/core/infrastructure/log"
	"github.com/privlend/v1/pkg/interfaces/lending"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(logimpl.NewNop(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Put(ctx, lending.Position{
		Address:       "0xAbC123",
		Collateral:    "1500",
		Debt:          "500",
		CommitmentHex: "0x01",
	})
	require.NoError(t, err)

	// lookups are case-insensitive on the address
	p, err := s.Get(ctx, "0xabc123")
	require.NoError(t, err)
	require.Equal(t, "0xabc123", p.Address)
	require.Equal(t, "1500", p.Collateral)
	require.Equal(t, "500", p.Debt)
	require.NotZero(t, p.UpdatedAtUnix)
}

func TestGetUnknownAddress(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "0xdeadbeef")
	require.ErrorIs(t, err, lending.ErrPositionNotFound)
}

func TestPutOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, lending.Position{Address: "0x01", Debt: "100"}))
	require.NoError(t, s.Put(ctx, lending.Position{Address: "0x01", Debt: "200"}))

	p, err := s.Get(ctx, "0x01")
	require.NoError(t, err)
	require.Equal(t, "200", p.Debt)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestListAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, addr := range []string{"0x01", "0x02", "0x03"} {
		require.NoError(t, s.Put(ctx, lending.Position{Address: addr, Debt: "1"}))
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, s.Delete(ctx, "0x02"))
	require.ErrorIs(t, s.Delete(ctx, "0x02"), lending.ErrPositionNotFound)

	all, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestEmptyAddressRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.Error(t, s.Put(ctx, lending.Position{Address: "  "}))
	_, err := s.Get(ctx, "")
	require.Error(t, err)
}

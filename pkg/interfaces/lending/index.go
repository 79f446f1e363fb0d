package lending

import (
	"context"
	"errors"
)

// ErrPositionNotFound is returned by PositionIndex.Get and Delete for unknown
// addresses.
var ErrPositionNotFound = errors.New("position not found")

// Position is one borrower position as tracked by the index. Amounts are
// decimal strings so the index never truncates values that only make sense as
// field elements.
type Position struct {
	Address       string `json:"address"`
	Collateral    string `json:"collateral"`
	Debt          string `json:"debt"`
	CommitmentHex string `json:"commitment"`
	UpdatedAtUnix int64  `json:"updated_at"`
}

// PositionIndex maps addresses to positions. Purely informational plumbing:
// nothing cryptographic depends on it.
type PositionIndex interface {
	Put(ctx context.Context, p Position) error
	Get(ctx context.Context, address string) (Position, error)
	List(ctx context.Context) ([]Position, error)
	Delete(ctx context.Context, address string) error
}

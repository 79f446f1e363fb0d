// Package lending defines the interfaces the proving core consumes from its
// collaborators: price feeds, the position index and the telemetry sink. The
// core does not depend on any of these for cryptographic correctness; they
// only supply the numbers a caller feeds into a proof request.
package lending

import (
	"context"
	"math/big"
	"time"
)

// Quote is a single price observation. Price carries 8 decimal places
// (Chainlink convention), so 2000 USD is 200000000000.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     *big.Int  `json:"price"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
	Change24h *float64  `json:"change_24h,omitempty"`
}

// PriceDecimals is the fixed-point scale of Quote.Price.
const PriceDecimals = 8

// PriceFeed supplies asset prices. Implementations are expected to cache;
// callers treat every Price call as cheap.
type PriceFeed interface {
	Price(ctx context.Context, symbol string) (Quote, error)
}

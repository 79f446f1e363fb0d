package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/privlend/v1/internal/core/oracle"
	"github.com/privlend/v1/internal/core/zkproof"
)

type priceResponse struct {
	Symbol string `json:"symbol"`
	// PriceUSD is the raw 8-decimal price, e.g. "200000000000" for $2000.
	PriceUSD       string `json:"price_usd"`
	PriceFormatted string `json:"price_formatted"`
	// CircuitPrice is the whole-unit price the liquidation circuit consumes.
	CircuitPrice string    `json:"circuit_price"`
	Source       string    `json:"source"`
	UpdatedAt    time.Time `json:"updated_at"`
	Change24h    *float64  `json:"change_24h,omitempty"`
}

// Price handles GET /api/v1/price.
func (h *Handlers) Price(c *gin.Context) {
	if h.deps.Feed == nil {
		h.respondError(c, zkproof.WrapInputError("price", errPriceFeedDisabled))
		return
	}
	symbol := c.DefaultQuery("symbol", h.deps.Symbol)
	quote, err := h.deps.Feed.Price(c.Request.Context(), symbol)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, priceResponse{
		Symbol:         quote.Symbol,
		PriceUSD:       quote.Price.String(),
		PriceFormatted: oracle.Formatted(quote.Price),
		CircuitPrice:   oracle.WholeUnits(quote.Price).String(),
		Source:         quote.Source,
		UpdatedAt:      quote.UpdatedAt,
		Change24h:      quote.Change24h,
	})
}

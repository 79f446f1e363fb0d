// Package handlers implements the REST endpoints of the proving service.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/privlend/v1/internal/api/http/middleware"
	"github.com/privlend/v1/internal/core/zkproof"
	"github.com/privlend/v1/pkg/interfaces/infrastructure/log"
	"github.com/privlend/v1/pkg/interfaces/lending"
)

// Broadcaster pushes events to websocket subscribers. Optional; a nil
// broadcaster disables pushes.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}

// Deps wires the handlers to the core services.
type Deps struct {
	Logger log.Logger
	Prover *zkproof.Prover
	Pool   *zkproof.Pool
	Feed   lending.PriceFeed
	Index  lending.PositionIndex
	Hub    Broadcaster
	// Symbol is the collateral asset the price endpoints quote.
	Symbol string
}

// Handlers holds the endpoint implementations.
type Handlers struct {
	deps Deps
}

// New validates the required dependencies.
func New(deps Deps) (*Handlers, error) {
	if deps.Logger == nil || deps.Prover == nil {
		return nil, errors.New("handlers: logger and prover are required")
	}
	if deps.Symbol == "" {
		deps.Symbol = "ETH"
	}
	return &Handlers{deps: deps}, nil
}

func (h *Handlers) broadcast(eventType string, data any) {
	if h.deps.Hub != nil {
		h.deps.Hub.Broadcast(eventType, data)
	}
}

var (
	errAsyncDisabled     = errors.New("async proving is not enabled")
	errPriceFeedDisabled = errors.New("price feed is not configured")
	errIndexDisabled     = errors.New("position index is not configured")
)

func isVerificationFailure(err error) bool {
	return errors.Is(err, zkproof.ErrVerification)
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// respondError maps the service error taxonomy onto transport status codes.
// Internal failures return a generic message: the detail goes to the log, not
// to the caller.
func (h *Handlers) respondError(c *gin.Context, err error) {
	requestID := c.GetString(middleware.RequestIDKey)
	switch {
	case errors.Is(err, zkproof.ErrInvalidInput), errors.Is(err, zkproof.ErrProofEncoding):
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: "invalid_input", RequestID: requestID})
	case errors.Is(err, zkproof.ErrPreconditionFailed):
		c.JSON(http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Code: "precondition_failed", RequestID: requestID})
	case errors.Is(err, lending.ErrPositionNotFound):
		c.JSON(http.StatusNotFound, errorBody{Error: err.Error(), Code: "not_found", RequestID: requestID})
	case errors.Is(err, zkproof.ErrQueueFull):
		c.JSON(http.StatusTooManyRequests, errorBody{Error: err.Error(), Code: "queue_full", RequestID: requestID})
	default:
		h.deps.Logger.Errorf("internal error: request_id=%s err=%v", requestID, err)
		c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error", Code: "internal", RequestID: requestID})
	}
}

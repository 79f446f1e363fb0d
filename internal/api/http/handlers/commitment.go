package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/privlend/v1/internal/core/zkproof"
	"github.com/privlend/v1/internal/core/zkproof/circuits"
)

type commitmentRequest struct {
	Value string `json:"value"`
	// Salt is optional, decimal like Value (0x prefix for hex); empty draws a
	// random salt, returned in the response.
	Salt string `json:"salt,omitempty"`
}

type commitmentResponse struct {
	Commitment string `json:"commitment"`
	Salt       string `json:"salt"`
	Scheme     string `json:"scheme"`
}

// Commitment handles POST /api/v1/commitment: commit to a value without
// generating a proof, e.g. when opening a position.
func (h *Handlers) Commitment(c *gin.Context) {
	var req commitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, zkproof.WrapInputError("body", err))
		return
	}
	value, err := zkproof.ParseBoundedDecimal("value", req.Value, circuits.AmountBits)
	if err != nil {
		h.respondError(c, err)
		return
	}
	salt, err := zkproof.ParseSalt(req.Salt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	commitment, err := zkproof.Commit(h.deps.Prover.Scheme(), value, salt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, commitmentResponse{
		Commitment: zkproof.FieldToHex(commitment),
		Salt:       zkproof.FieldToHex(salt),
		Scheme:     h.deps.Prover.Scheme().String(),
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/privlend/v1/internal/core/zkproof"
	"github.com/privlend/v1/internal/core/zkproof/circuits"
	"github.com/privlend/v1/pkg/interfaces/lending"
)

type positionRequest struct {
	Collateral string `json:"collateral"`
	Debt       string `json:"debt"`
	// Salt is optional, decimal (0x prefix for hex); it feeds the stored
	// position commitment.
	Salt string `json:"salt,omitempty"`
}

type positionResponse struct {
	lending.Position
	Salt string `json:"salt,omitempty"`
}

// PutPosition handles PUT /api/v1/position/:address. The index stores the
// amounts as given plus a position hash commitment; the returned salt opens
// that commitment and is not persisted.
func (h *Handlers) PutPosition(c *gin.Context) {
	if h.deps.Index == nil {
		h.respondError(c, zkproof.WrapInputError("position", errIndexDisabled))
		return
	}
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, zkproof.WrapInputError("body", err))
		return
	}
	collateral, err := zkproof.ParseBoundedDecimal("collateral", req.Collateral, circuits.AmountBits)
	if err != nil {
		h.respondError(c, err)
		return
	}
	debt, err := zkproof.ParseBoundedDecimal("debt", req.Debt, circuits.AmountBits)
	if err != nil {
		h.respondError(c, err)
		return
	}
	salt, err := zkproof.ParseSalt(req.Salt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	hash, err := zkproof.PositionHash(h.deps.Prover.Scheme(), collateral, debt, salt)
	if err != nil {
		h.respondError(c, err)
		return
	}

	p := lending.Position{
		Address:       c.Param("address"),
		Collateral:    req.Collateral,
		Debt:          req.Debt,
		CommitmentHex: zkproof.FieldToHex(hash),
	}
	if err := h.deps.Index.Put(c.Request.Context(), p); err != nil {
		h.respondError(c, err)
		return
	}
	stored, err := h.deps.Index.Get(c.Request.Context(), p.Address)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, positionResponse{Position: stored, Salt: zkproof.FieldToHex(salt)})
}

// GetPosition handles GET /api/v1/position/:address.
func (h *Handlers) GetPosition(c *gin.Context) {
	if h.deps.Index == nil {
		h.respondError(c, zkproof.WrapInputError("position", errIndexDisabled))
		return
	}
	p, err := h.deps.Index.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListPositions handles GET /api/v1/position.
func (h *Handlers) ListPositions(c *gin.Context) {
	if h.deps.Index == nil {
		h.respondError(c, zkproof.WrapInputError("position", errIndexDisabled))
		return
	}
	all, err := h.deps.Index.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if all == nil {
		all = []lending.Position{}
	}
	c.JSON(http.StatusOK, gin.H{"positions": all, "count": len(all)})
}

// DeletePosition handles DELETE /api/v1/position/:address.
func (h *Handlers) DeletePosition(c *gin.Context) {
	if h.deps.Index == nil {
		h.respondError(c, zkproof.WrapInputError("position", errIndexDisabled))
		return
	}
	if err := h.deps.Index.Delete(c.Request.Context(), c.Param("address")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

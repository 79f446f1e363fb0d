package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/privlend/v1/internal/core/zkproof"
)

// proofEvent is the payload pushed to websocket subscribers when a proof is
// generated. Only public data: kind, public inputs and timing.
type proofEvent struct {
	Kind         zkproof.CircuitKind `json:"kind"`
	PublicInputs []string            `json:"public_inputs"`
	JobID        string              `json:"job_id,omitempty"`
}

// CollateralProof handles POST /api/v1/proof/collateral.
func (h *Handlers) CollateralProof(c *gin.Context) {
	var req zkproof.CollateralProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, zkproof.WrapInputError("body", err))
		return
	}
	if c.Query("async") == "true" {
		h.submitAsync(c, zkproof.CircuitCollateral, req)
		return
	}
	result, err := h.deps.Prover.GenerateCollateralProof(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.broadcast("proof", proofEvent{Kind: result.Kind, PublicInputs: result.PublicInputs})
	c.JSON(http.StatusOK, result)
}

// LTVProof handles POST /api/v1/proof/ltv.
func (h *Handlers) LTVProof(c *gin.Context) {
	var req zkproof.LTVProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, zkproof.WrapInputError("body", err))
		return
	}
	if c.Query("async") == "true" {
		h.submitAsync(c, zkproof.CircuitLTV, req)
		return
	}
	result, err := h.deps.Prover.GenerateLTVProof(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.broadcast("proof", proofEvent{Kind: result.Kind, PublicInputs: result.PublicInputs})
	c.JSON(http.StatusOK, result)
}

// LiquidationProof handles POST /api/v1/proof/liquidation.
func (h *Handlers) LiquidationProof(c *gin.Context) {
	var req zkproof.LiquidationProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, zkproof.WrapInputError("body", err))
		return
	}
	if c.Query("async") == "true" {
		h.submitAsync(c, zkproof.CircuitLiquidation, req)
		return
	}
	result, err := h.deps.Prover.GenerateLiquidationProof(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.broadcast("proof", proofEvent{Kind: result.Kind, PublicInputs: result.PublicInputs})
	c.JSON(http.StatusOK, result)
}

func (h *Handlers) submitAsync(c *gin.Context, kind zkproof.CircuitKind, payload any) {
	if h.deps.Pool == nil {
		h.respondError(c, zkproof.WrapInputError("async", errAsyncDisabled))
		return
	}
	id, err := h.deps.Pool.Submit(kind, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": id, "status": zkproof.JobQueued})
}

// ProofJob handles GET /api/v1/proof/jobs/:id.
func (h *Handlers) ProofJob(c *gin.Context) {
	if h.deps.Pool == nil {
		h.respondError(c, zkproof.WrapInputError("async", errAsyncDisabled))
		return
	}
	job, ok := h.deps.Pool.Lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorBody{Error: "unknown job", Code: "not_found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

type verifyRequest struct {
	Kind         string   `json:"kind"`
	Proof        string   `json:"proof"`
	PublicInputs []string `json:"public_inputs"`
}

// VerifyProof handles POST /api/v1/proof/verify. A well-formed proof that
// fails the pairing check is not an error: the endpoint answers valid=false.
func (h *Handlers) VerifyProof(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, zkproof.WrapInputError("body", err))
		return
	}
	data, err := zkproof.ProofDataFromHex(req.Proof)
	if err != nil {
		h.respondError(c, err)
		return
	}
	err = h.deps.Prover.Verify(c.Request.Context(), zkproof.CircuitKind(req.Kind), data, req.PublicInputs)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"valid": true})
	case isVerificationFailure(err):
		c.JSON(http.StatusOK, gin.H{"valid": false})
	default:
		h.respondError(c, err)
	}
}

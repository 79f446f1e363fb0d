package lending

import "time"

// ProofTelemetry receives proof generation timings. Implementations must be
// non-blocking; the prover calls this on its hot path and ignores failures.
type ProofTelemetry interface {
	ObserveProof(kind string, d time.Duration, success bool)
}

// NopTelemetry discards all observations.
type NopTelemetry struct{}

func (NopTelemetry) ObserveProof(string, time.Duration, bool) {}

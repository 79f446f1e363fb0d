package zkproof

import (
	"errors"
	"fmt"
)

// Sentinel errors classify every failure the proving service can surface.
// Handlers map the class to a transport status; the wrapped detail stays in
// the logs and never leaks private witness data to callers.
var (
	// ErrInvalidInput marks malformed caller input: unparseable amounts,
	// values outside the circuit bit budget, bad hex. Maps to 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPreconditionFailed marks well-formed input whose statement is false
	// (collateral below threshold, LTV above maximum, position healthy).
	// Proving would only burn CPU to fail, so the service rejects upfront.
	// Maps to 422.
	ErrPreconditionFailed = errors.New("statement precondition failed")

	// ErrKeyInitFailed marks circuit compilation or trusted setup failure.
	ErrKeyInitFailed = errors.New("proving key initialization failed")

	// ErrProofGeneration marks witness construction or proving failure.
	ErrProofGeneration = errors.New("proof generation failed")

	// ErrVerification marks a proof that did not verify.
	ErrVerification = errors.New("proof verification failed")

	// ErrProofEncoding marks malformed proof bytes on the wire.
	ErrProofEncoding = errors.New("proof encoding invalid")
)

// WrapInputError tags err as caller-side invalid input.
func WrapInputError(field string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidInput, field, err)
}

// WrapPreconditionError tags a false statement with its human-readable reason.
func WrapPreconditionError(reason string) error {
	return fmt.Errorf("%w: %s", ErrPreconditionFailed, reason)
}

// WrapKeyInitError tags a setup failure for the named circuit.
func WrapKeyInitError(circuit string, err error) error {
	return fmt.Errorf("%w: circuit %s: %v", ErrKeyInitFailed, circuit, err)
}

// WrapProvingError tags a proving failure for the named circuit.
func WrapProvingError(circuit string, err error) error {
	return fmt.Errorf("%w: circuit %s: %v", ErrProofGeneration, circuit, err)
}

// WrapVerificationError tags a verification failure for the named circuit.
func WrapVerificationError(circuit string, err error) error {
	return fmt.Errorf("%w: circuit %s: %v", ErrVerification, circuit, err)
}

// IsCallerError reports whether err is the caller's fault (bad input or a
// false statement) as opposed to an internal failure. Transports use this to
// pick between 4xx and 5xx without inspecting error strings.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrPreconditionFailed) ||
		errors.Is(err, ErrProofEncoding)
}

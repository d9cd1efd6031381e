package sim

import "errors"

var (
	// ErrInvalidStep is fatal: the step was not taken.
	ErrInvalidStep = errors.New("invalid step")

	// The following are recoverable and reported as step faults.
	ErrInvalidRequest   = errors.New("invalid request")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrPolicyViolation  = errors.New("policy violation")
)

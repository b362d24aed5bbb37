package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrJobNotFound         = errors.New("job not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrEscrowNotFound      = errors.New("escrow not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidTransition   = errors.New("illegal lifecycle transition")
	ErrNoScoredSubmissions = errors.New("job has no scored submissions")
	ErrAlreadySettled      = errors.New("job already settled")
	ErrInvalidExecContext  = errors.New("invalid executor context")

	// ErrSimulatedFailure is only produced by the settlement fault-injection
	// point; production callers never request it.
	ErrSimulatedFailure = errors.New("simulated settlement failure")
)

package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrJobNotFound  = errors.New("job not found")
	// ErrJobNotEligible is the only hard failure of the matching pipeline: the
	// job exists but is not featured. Everything else is recorded in the
	// result object and the run keeps going.
	ErrJobNotEligible = errors.New("job not eligible for matching")
	ErrInternal       = errors.New("internal error")
)

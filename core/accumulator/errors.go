package accumulator

import "errors"

var (
	ErrInvalidSecurityLevel      = errors.New("security level below 2048 bits")
	ErrMalformedParameters       = errors.New("malformed parameters")
	ErrDuplicateElement          = errors.New("element already accumulated")
	ErrElementNotPresent         = errors.New("element not accumulated")
	ErrElementIsMember           = errors.New("element is accumulated")
	ErrInvalidWitness            = errors.New("witness does not verify against the current value")
	ErrStaleWitnessUnrecoverable = errors.New("witness cannot be updated past deletions")
)

package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCoachType   = errors.New("unknown coach type")
	ErrSessionNotEligible = errors.New("session is not eligible for enrichment")
	ErrInvalidExecContext = errors.New("invalid sql execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)

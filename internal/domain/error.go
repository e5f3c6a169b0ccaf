package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrTenantMismatch     = errors.New("entity belongs to a different partner")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrStatusConflict     = errors.New("status changed concurrently")
	ErrReservationExpired = errors.New("order number reservation expired")
	ErrFolderLocked       = errors.New("folder is locked by another operation")

	// Storage-boundary errors
	ErrInvalidExecContext = errors.New("invalid transaction execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)

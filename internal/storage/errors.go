package storage

import "errors"

// Storage errors shared by all result-store backends.
var (
	// ErrTableNotFound is returned when a requested table does not exist.
	ErrTableNotFound = errors.New("table not found")

	// ErrNoColumns is returned when a bulk read is requested with an
	// empty column list.
	ErrNoColumns = errors.New("no columns requested")
)

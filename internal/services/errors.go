package services

import "errors"

// Service-level sentinel errors. The HTTP error handler maps these onto
// RFC 7807 problem responses.
var (
	// ErrDatasetNotLoaded is returned when a query arrives before the first
	// successful dataset load.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// ErrUnknownFormat is returned for an export format that is neither
	// csv nor xlsx.
	ErrUnknownFormat = errors.New("unknown export format")
)

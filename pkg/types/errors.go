package types

import "errors"

// Domain errors for type validation
var (
	ErrEmptyTripName = errors.New("trip name cannot be empty")
	ErrInvalidStatus = errors.New("invalid trip status")
	ErrEmptyQuery    = errors.New("query cannot be empty")
	ErrInvalidLimit  = errors.New("limit must be >= 1")
)

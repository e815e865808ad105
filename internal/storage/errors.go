package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// complexityMarkers are the engine error fragments that indicate a query was
// rejected for performance or complexity reasons rather than a data problem.
// These trigger tier fallback; everything else propagates to the caller.
var complexityMarkers = []string{
	"like or glob pattern too complex",
	"pattern too complex",
	"too many terms",
	"parser stack overflow",
	"interrupted",
	"query timeout",
	"database is locked",
}

// IsComplexityError reports whether err is a performance/complexity-class
// engine rejection. Data errors (constraint violations, missing columns)
// are never classified as complexity errors.
func IsComplexityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range complexityMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

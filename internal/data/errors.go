package data

import (
	"errors"

	apperrors "github.com/practicejobs/ingest/internal/errors"
)

var (
	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = errors.New("job not found")
	// ErrCompanyNotFound is returned when a company is not found.
	ErrCompanyNotFound = errors.New("company not found")
)

// IsNotFound reports whether err is any of this layer's not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound) ||
		errors.Is(err, ErrCompanyNotFound) ||
		apperrors.IsNotFound(err)
}

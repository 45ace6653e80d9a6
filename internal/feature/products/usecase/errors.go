// Package usecase implements the business logic for the products feature.
package usecase

import (
	"errors"
	"strings"
)

var (
	// ErrProductNotFound is returned by the repository when no record has the id.
	ErrProductNotFound = errors.New("product not found")

	// ErrNotFoundOrForbidden is returned when a product is absent or owned by someone else.
	// Both cases are reported identically.
	ErrNotFoundOrForbidden = errors.New("product not found or doesn't belong to the user")

	// ErrValidation is the kind shared by every input rejection.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedFileType is returned for image names outside the allowed extensions.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrEmptyUpload is returned when an endpoint requires a file and none was sent.
	ErrEmptyUpload = errors.New("no file uploaded")

	// ErrStorageFailure wraps persistence and filesystem faults.
	ErrStorageFailure = errors.New("storage failure")
)

// ValidationError reports every rejected input with one message each.
// It matches ErrValidation and, when set, Kind.
type ValidationError struct {
	Kind    error
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() []error {
	if e.Kind == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Kind}
}

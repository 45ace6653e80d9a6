package usecase

import (
	"errors"
	"strings"
)

// ErrUserNotFound is returned by the credential store when no identity matches.
var ErrUserNotFound = errors.New("user not found")

// CredentialRejectedError is returned by the credential store when it refuses to create an identity.
// Reasons lists every violated rule so callers can render them separately.
type CredentialRejectedError struct {
	Reasons []string
}

func (e *CredentialRejectedError) Error() string {
	return "credential rejected: " + strings.Join(e.Reasons, ", ")
}

package usecase

import "time"

// Code classifies an authentication outcome.
type Code string

const (
	CodeOK                   Code = ""
	CodeDuplicateEmail       Code = "DuplicateEmail"
	CodeDuplicateUsername    Code = "DuplicateUsername"
	CodeCredentialRejected   Code = "CredentialRejected"
	CodeAuthenticationFailed Code = "AuthenticationFailed"
	CodeUnexpectedFailure    Code = "UnexpectedFailure"
)

// Outcome is the structured result of Register and Login.
// Failures are reported here rather than as errors.
type Outcome struct {
	Success      bool
	Code         Code
	Token        string
	ExpiresAt    time.Time
	UserID       string
	Email        string
	UserName     string
	Message      string
	ErrorDetails []string
}

func failure(code Code, message string, details ...string) Outcome {
	return Outcome{
		Success:      false,
		Code:         code,
		Message:      message,
		ErrorDetails: details,
	}
}

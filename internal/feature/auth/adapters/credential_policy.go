package adapters

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// allowedUserNameSymbols are the non-alphanumeric characters a username may contain.
const allowedUserNameSymbols = "-._@+"

// PasswordPolicy describes the rules a new password must satisfy.
type PasswordPolicy struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// DefaultPasswordPolicy returns the policy applied at registration.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:              6,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
	}
}

// Check returns one message per violated rule, or nil.
func (p PasswordPolicy) Check(password string) []string {
	var reasons []string

	if len(password) < p.MinLength {
		reasons = append(reasons, fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}

	var digit, lower, upper, other bool
	for _, r := range password {
		switch {
		case isDigit(r):
			digit = true
		case isLower(r):
			lower = true
		case isUpper(r):
			upper = true
		default:
			other = true
		}
	}

	if p.RequireNonAlphanumeric && !other {
		reasons = append(reasons, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !digit {
		reasons = append(reasons, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !lower {
		reasons = append(reasons, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !upper {
		reasons = append(reasons, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	return reasons
}

// checkIdentity validates the username charset and the email shape.
func checkIdentity(v *validator.Validate, username, email string) []string {
	var reasons []string
	if !validUserName(username) {
		reasons = append(reasons, fmt.Sprintf("Username '%s' is invalid, can only contain letters or digits.", username))
	}
	if err := v.Var(email, "required,email"); err != nil {
		reasons = append(reasons, fmt.Sprintf("Email '%s' is invalid.", email))
	}
	return reasons
}

func validUserName(username string) bool {
	if username == "" {
		return false
	}
	for _, r := range username {
		if isDigit(r) || isLower(r) || isUpper(r) || strings.ContainsRune(allowedUserNameSymbols, r) {
			continue
		}
		return false
	}
	return true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

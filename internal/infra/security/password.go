package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	minOperatorPasswordLength = 12
	minOperatorZxcvbnScore    = 3
)

// PasswordValidationError represents a single operator password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// ValidateOperatorPassword enforces the policy for the single admin password:
// a minimum length plus a zxcvbn strength score, since this one credential
// gates every administrative surface.
func ValidateOperatorPassword(password string) error {
	if len([]rune(password)) < minOperatorPasswordLength {
		return &PasswordValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("password must be at least %d characters long", minOperatorPasswordLength),
		}
	}

	result := zxcvbn.PasswordStrength(password, nil)
	if result.Score < minOperatorZxcvbnScore {
		return &PasswordValidationError{
			Code:    "weak_password",
			Message: "password is too weak; choose a longer or less predictable value",
		}
	}

	return nil
}

package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/task-manager/backend/internal/common/constants"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRule     = fmt.Sprintf("email,max=%d", constants.EmailMaxLength)
	fieldValidate = validator.New()
)

// IsValidUsername reports whether s uses only the allowed username alphabet.
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// NormalizeEmail trims and lower-cases email. An empty result means no email.
func NormalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return nil
	}
	return &normalized
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < constants.UsernameMinLength || n > constants.UsernameMaxLength {
		return ErrValidationUsernameLength
	}
	if !IsValidUsername(username) {
		return ErrValidationUsernameChars
	}
	return nil
}

// validatePassword also bounds the byte length: bcrypt ignores everything
// past 72 bytes.
func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < constants.PasswordMinLength || n > constants.PasswordMaxLength || len(password) > constants.PasswordMaxLength {
		return ErrValidationPasswordLength
	}
	return nil
}

func validateEmail(email *string) error {
	if email == nil {
		return nil
	}
	if err := fieldValidate.Var(*email, emailRule); err != nil {
		return ErrValidationEmail.WithCause(err)
	}
	return nil
}

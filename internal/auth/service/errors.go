package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/task-manager/backend/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthenticated,
		http.StatusUnauthorized,
		"Invalid credentials",
	)

	// ErrUsernameTaken is reported as 400, not 409, to keep the status clients
	// already handle.
	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusBadRequest,
		"Username already exists",
	)

	ErrUserNotFound = commonerrors.NewDomainError(
		"USER_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"User not found",
	)

	ErrValidationUsernameLength = commonerrors.NewValidationError(
		"USERNAME_LENGTH",
		"Username must be between 3 and 30 characters",
	)

	ErrValidationUsernameChars = commonerrors.NewValidationError(
		"USERNAME_CHARS",
		"Username can only contain letters, numbers and underscores",
	)

	ErrValidationPasswordLength = commonerrors.NewValidationError(
		"PASSWORD_LENGTH",
		"Password must be between 6 and 72 characters",
	)

	ErrValidationEmail = commonerrors.NewValidationError(
		"EMAIL_INVALID",
		"Please provide a valid email",
	)
)

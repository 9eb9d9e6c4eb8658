package service

import (
	"fmt"
	"net/http"

	"github.com/AlibekovAA/task-manager/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/task-manager/backend/internal/common/errors"
)

var (
	// ErrTaskNotFound is also returned for tasks owned by another user.
	ErrTaskNotFound = commonerrors.NewDomainError(
		"TASK_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"Task not found",
	)

	ErrInvalidTaskID = commonerrors.NewValidationError(
		"INVALID_TASK_ID",
		"Invalid task ID",
	)

	ErrEmptyUpdate = commonerrors.NewValidationError(
		"EMPTY_UPDATE",
		"At least one field must be provided",
	)

	ErrTitleRequired = commonerrors.NewValidationError(
		"TITLE_REQUIRED",
		"Title is required",
	)

	ErrTitleTooLong = commonerrors.NewValidationError(
		"TITLE_TOO_LONG",
		fmt.Sprintf("Title cannot exceed %d characters", constants.TaskTitleMaxLength),
	)

	ErrDescriptionTooLong = commonerrors.NewValidationError(
		"DESCRIPTION_TOO_LONG",
		fmt.Sprintf("Description cannot exceed %d characters", constants.TaskDescriptionMaxLength),
	)

	ErrInvalidStatus = commonerrors.NewValidationError(
		"INVALID_STATUS",
		"Status must be one of: pending, in progress, completed",
	)
)

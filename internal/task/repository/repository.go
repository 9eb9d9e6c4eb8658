package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AlibekovAA/task-manager/backend/internal/task/domain"
	userdomain "github.com/AlibekovAA/task-manager/backend/internal/user/domain"
)

// Repository methods that address a single task take the owner as well as
// the task id. A task owned by someone else is reported as ErrTaskNotFound.
type Repository interface {
	ListByOwner(ctx context.Context, owner userdomain.ID) ([]domain.Task, error)
	Create(ctx context.Context, task domain.Task) error
	Update(ctx context.Context, owner userdomain.ID, id domain.ID, patch domain.Patch, updatedAt time.Time) (domain.Task, error)
	Delete(ctx context.Context, owner userdomain.ID, id domain.ID) error
}

var ErrTaskNotFound = errors.New("task not found")

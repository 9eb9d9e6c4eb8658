package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/AlibekovAA/task-manager/backend/internal/common/clock"
	"github.com/AlibekovAA/task-manager/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/task-manager/backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/task-manager/backend/internal/common/errors"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/observability/metrics"
	"github.com/AlibekovAA/task-manager/backend/internal/task/domain"
	"github.com/AlibekovAA/task-manager/backend/internal/task/repository"
	userdomain "github.com/AlibekovAA/task-manager/backend/internal/user/domain"
)

type CreateInput struct {
	Title       string
	Description string
	Status      string
}

type UpdateInput struct {
	Title       *string
	Description *string
	Status      *string
}

type TaskService struct {
	repo        repository.Repository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewTaskService(repo repository.Repository, idGenerator commoncrypto.IDGenerator, clk clock.Clock, log *logger.Logger) *TaskService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &TaskService{repo: repo, idGenerator: idGenerator, clock: clk, log: log}
}

func (s *TaskService) List(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, s.fail(ctx, "list", owner, "", err)
	}
	metrics.TaskOperationsTotal.WithLabelValues("list", "success").Inc()
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, owner userdomain.ID, input CreateInput) (domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)

	if err := validateTitle(title); err != nil {
		return domain.Task{}, s.reject("create", err)
	}
	if err := validateDescription(description); err != nil {
		return domain.Task{}, s.reject("create", err)
	}

	status := domain.StatusPending
	if input.Status != "" {
		parsed, ok := domain.ParseStatus(input.Status)
		if !ok {
			return domain.Task{}, s.reject("create", ErrInvalidStatus)
		}
		status = parsed
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Task{}, s.fail(ctx, "create", owner, "", err)
	}

	now := s.clock.Now().UTC()
	task := domain.Task{
		ID:          domain.ID(id),
		UserID:      owner,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return domain.Task{}, s.fail(ctx, "create", owner, task.ID, err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("create", "success").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(owner),
		"task_id": string(task.ID),
		"action":  "task_created",
	}).Debug("task created")

	return task, nil
}

func (s *TaskService) Update(ctx context.Context, owner userdomain.ID, id domain.ID, input UpdateInput) (domain.Task, error) {
	var patch domain.Patch

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTitle(title); err != nil {
			return domain.Task{}, s.reject("update", err)
		}
		patch.Title = &title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if err := validateDescription(description); err != nil {
			return domain.Task{}, s.reject("update", err)
		}
		patch.Description = &description
	}
	if input.Status != nil {
		status, ok := domain.ParseStatus(*input.Status)
		if !ok {
			return domain.Task{}, s.reject("update", ErrInvalidStatus)
		}
		patch.Status = &status
	}
	if patch.IsEmpty() {
		return domain.Task{}, s.reject("update", ErrEmptyUpdate)
	}

	task, err := s.repo.Update(ctx, owner, id, patch, s.clock.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			metrics.TaskOperationsTotal.WithLabelValues("update", "not_found").Inc()
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, s.fail(ctx, "update", owner, id, err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("update", "success").Inc()
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, owner userdomain.ID, id domain.ID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			metrics.TaskOperationsTotal.WithLabelValues("delete", "not_found").Inc()
			return ErrTaskNotFound
		}
		return s.fail(ctx, "delete", owner, id, err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("delete", "success").Inc()
	return nil
}

func (s *TaskService) reject(operation string, err error) error {
	metrics.TaskOperationsTotal.WithLabelValues(operation, "invalid").Inc()
	return err
}

func (s *TaskService) fail(ctx context.Context, operation string, owner userdomain.ID, id domain.ID, err error) error {
	metrics.TaskOperationsTotal.WithLabelValues(operation, "error").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(owner),
		"task_id": string(id),
		"action":  "task_" + operation + "_failed",
	}).Errorf("task %s failed: %v", operation, err)
	return commonerrors.ErrInternal.WithCause(err)
}

func validateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > constants.TaskTitleMaxLength {
		return ErrTitleTooLong
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > constants.TaskDescriptionMaxLength {
		return ErrDescriptionTooLong
	}
	return nil
}

package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/AlibekovAA/task-manager/backend/internal/task/domain"
	userdomain "github.com/AlibekovAA/task-manager/backend/internal/user/domain"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[domain.ID]domain.Task
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[domain.ID]domain.Task)}
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	tasks := make([]domain.Task, 0)
	for _, t := range r.tasks {
		if t.UserID == owner {
			tasks = append(tasks, t)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(tasks, func(a, b domain.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return tasks, nil
}

func (r *MemoryRepository) Create(ctx context.Context, task domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, owner userdomain.ID, id domain.ID, patch domain.Patch, updatedAt time.Time) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != owner {
		return domain.Task{}, ErrTaskNotFound
	}
	patch.Apply(&t)
	t.UpdatedAt = updatedAt
	r.tasks[id] = t
	return t, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, owner userdomain.ID, id domain.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != owner {
		return ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/task-manager/backend/internal/task/domain"
	userdomain "github.com/AlibekovAA/task-manager/backend/internal/user/domain"
)

var base = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *MemoryRepository, id domain.ID, owner string, offset time.Duration) {
	t.Helper()
	task := domain.Task{
		ID:        id,
		UserID:    userdomain.ID("owner-" + owner),
		Title:     string(id),
		Status:    domain.StatusPending,
		CreatedAt: base.Add(offset),
		UpdatedAt: base.Add(offset),
	}
	require.NoError(t, repo.Create(context.Background(), task))
}

func TestMemoryRepository_ListIsOwnerScopedNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, "t1", "a", 0)
	seed(t, repo, "t2", "a", time.Minute)
	seed(t, repo, "t3", "b", 2*time.Minute)
	seed(t, repo, "t4", "a", 3*time.Minute)

	tasks, err := repo.ListByOwner(context.Background(), "owner-a")
	require.NoError(t, err)

	var ids []domain.ID
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []domain.ID{"t4", "t2", "t1"}, ids)

	none, err := repo.ListByOwner(context.Background(), "owner-c")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryRepository_UpdateRespectsOwner(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, "t1", "a", 0)
	ctx := context.Background()

	title := "changed"
	_, err := repo.Update(ctx, "owner-b", "t1", domain.Patch{Title: &title}, base.Add(time.Hour))
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = repo.Update(ctx, "owner-a", "missing", domain.Patch{Title: &title}, base.Add(time.Hour))
	assert.ErrorIs(t, err, ErrTaskNotFound)

	updated, err := repo.Update(ctx, "owner-a", "t1", domain.Patch{Title: &title}, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Title)
	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Equal(t, base, updated.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), updated.UpdatedAt)
}

func TestMemoryRepository_DeleteRespectsOwner(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, "t1", "a", 0)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Delete(ctx, "owner-b", "t1"), ErrTaskNotFound)

	tasks, err := repo.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	require.NoError(t, repo.Delete(ctx, "owner-a", "t1"))
	assert.ErrorIs(t, repo.Delete(ctx, "owner-a", "t1"), ErrTaskNotFound)
}

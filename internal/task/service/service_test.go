package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/task-manager/backend/internal/auth/gate"
	"github.com/AlibekovAA/task-manager/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/task-manager/backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/task-manager/backend/internal/common/errors"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/task/domain"
	"github.com/AlibekovAA/task-manager/backend/internal/task/repository"
	userdomain "github.com/AlibekovAA/task-manager/backend/internal/user/domain"
)

type mockRepository struct {
	repository.Repository
	listByOwnerFunc func(ctx context.Context, owner userdomain.ID) ([]domain.Task, error)
}

func (m *mockRepository) ListByOwner(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	return m.listByOwnerFunc(ctx, owner)
}

var start = time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)

func newTestService(repo repository.Repository) (*TaskService, *clock.MockClock) {
	clk := clock.NewMockClock(start)
	log := logger.NewWithWriter(io.Discard, "test", "error")
	return NewTaskService(repo, commoncrypto.NewUUIDGenerator(), clk, log), clk
}

func ptr[T any](v T) *T { return &v }

func TestTaskService_CreateDefaultsAndTrims(t *testing.T) {
	svc, _ := newTestService(repository.NewMemoryRepository())

	task, err := svc.Create(context.Background(), "alice", CreateInput{Title: "  Buy milk  ", Description: " 2 litres "})
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 litres", task.Description)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Equal(t, userdomain.ID("alice"), task.UserID)
	assert.Equal(t, start, task.CreatedAt)
	assert.Len(t, string(task.ID), 36)
}

func TestTaskService_CreateValidation(t *testing.T) {
	svc, _ := newTestService(repository.NewMemoryRepository())

	cases := map[string]struct {
		input CreateInput
		want  error
	}{
		"blank title":      {CreateInput{Title: "   "}, ErrTitleRequired},
		"long title":       {CreateInput{Title: strings.Repeat("x", 101)}, ErrTitleTooLong},
		"long description": {CreateInput{Title: "ok", Description: strings.Repeat("x", 501)}, ErrDescriptionTooLong},
		"unknown status":   {CreateInput{Title: "ok", Status: "done"}, ErrInvalidStatus},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "alice", tc.input)
			require.ErrorIs(t, err, tc.want)
			de, ok := commonerrors.AsDomainError(err)
			require.True(t, ok)
			assert.Equal(t, 400, de.HTTPStatus())
		})
	}

	_, err := svc.Create(context.Background(), "alice", CreateInput{Title: strings.Repeat("é", 100), Description: strings.Repeat("ü", 500)})
	assert.NoError(t, err, "limits count characters, not bytes")
}

func TestTaskService_UpdateIsPartial(t *testing.T) {
	svc, clk := newTestService(repository.NewMemoryRepository())
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", CreateInput{Title: "Write report", Description: "Q3"})
	require.NoError(t, err)

	clk.Advance(time.Hour)
	updated, err := svc.Update(ctx, "alice", task.ID, UpdateInput{Status: ptr("in progress")})
	require.NoError(t, err)

	assert.Equal(t, "Write report", updated.Title)
	assert.Equal(t, "Q3", updated.Description)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, start, updated.CreatedAt)
	assert.Equal(t, start.Add(time.Hour), updated.UpdatedAt)

	cleared, err := svc.Update(ctx, "alice", task.ID, UpdateInput{Description: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, cleared.Description)
}

func TestTaskService_UpdateValidation(t *testing.T) {
	svc, _ := newTestService(repository.NewMemoryRepository())
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", CreateInput{Title: "t"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "alice", task.ID, UpdateInput{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	_, err = svc.Update(ctx, "alice", task.ID, UpdateInput{Title: ptr("  ")})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.Update(ctx, "alice", task.ID, UpdateInput{Status: ptr("archived")})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTaskService_OwnershipIsIndistinguishableFromAbsence(t *testing.T) {
	svc, _ := newTestService(repository.NewMemoryRepository())
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", CreateInput{Title: "private"})
	require.NoError(t, err)

	_, foreignErr := svc.Update(ctx, "bob", task.ID, UpdateInput{Title: ptr("mine now")})
	_, missingErr := svc.Update(ctx, "bob", "00000000-0000-0000-0000-000000000000", UpdateInput{Title: ptr("x")})
	assert.ErrorIs(t, foreignErr, ErrTaskNotFound)
	assert.Equal(t, missingErr, foreignErr)

	assert.ErrorIs(t, svc.Delete(ctx, "bob", task.ID), ErrTaskNotFound)

	bobTasks, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobTasks)

	aliceTasks, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceTasks, 1)
	assert.Equal(t, "private", aliceTasks[0].Title)

	require.NoError(t, svc.Delete(ctx, "alice", task.ID))
}

func TestTaskService_StoreFailureIsInternal(t *testing.T) {
	svc, _ := newTestService(&mockRepository{
		listByOwnerFunc: func(context.Context, userdomain.ID) ([]domain.Task, error) {
			return nil, errors.New("connection lost")
		},
	})

	_, err := svc.List(context.Background(), "alice")
	require.ErrorIs(t, err, commonerrors.ErrInternal)
	de, _ := commonerrors.AsDomainError(err)
	assert.NotContains(t, de.Message(), "connection lost")
}

func TestOwnerFromContext(t *testing.T) {
	_, err := OwnerFromContext(context.Background())
	assert.ErrorIs(t, err, gate.ErrUnauthenticated)

	ctx := gate.WithIdentity(context.Background(), gate.Identity{UserID: "alice", Username: "alice"})
	owner, err := OwnerFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, userdomain.ID("alice"), owner)
}

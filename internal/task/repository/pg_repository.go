package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/task-manager/backend/internal/common/db"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/task/domain"
	userdomain "github.com/AlibekovAA/task-manager/backend/internal/user/domain"
)

const taskColumns = `id, user_id, title, description, status, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PgRepository {
	return &PgRepository{pool: pool, log: log}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PgRepository) ListByOwner(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	var tasks []domain.Task
	start := time.Now()
	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, db.IsTransientError, func() error {
		var err error
		tasks, err = r.listByOwner(ctx, owner)
		return err
	})
	if err := db.HandleExecError(err, "list tasks", start); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *PgRepository) listByOwner(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		string(owner),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *PgRepository) Create(ctx context.Context, task domain.Task) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(task.ID),
		string(task.UserID),
		task.Title,
		task.Description,
		string(task.Status),
		task.CreatedAt,
		task.UpdatedAt,
	)
	return db.HandleExecError(err, "create task", start)
}

func (r *PgRepository) Update(ctx context.Context, owner userdomain.ID, id domain.ID, patch domain.Patch, updatedAt time.Time) (domain.Task, error) {
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE tasks
		 SET title = COALESCE($3, title),
		     description = COALESCE($4, description),
		     status = COALESCE($5, status),
		     updated_at = $6
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+taskColumns,
		string(id),
		string(owner),
		patch.Title,
		patch.Description,
		status,
		updatedAt,
	)

	t, err := scanTask(row)
	if err := db.HandleQueryError(err, ErrTaskNotFound, "update task", start); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (r *PgRepository) Delete(ctx context.Context, owner userdomain.ID, id domain.ID) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		string(id),
		string(owner),
	)
	if err := db.HandleExecError(err, "delete task", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/task-manager/backend/internal/common/db"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/user/domain"
)

const usernameUniqueConstraint = "users_username_key"

type PgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PgRepository {
	return &PgRepository{pool: pool, log: log}
}

// Create relies on the unique constraint to detect duplicates, so two
// concurrent registrations for one username cannot both succeed.
func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(user.ID),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if db.IsUniqueViolation(err, usernameUniqueConstraint) {
		db.MeasureQueryDuration("create user", start)
		return ErrUsernameAlreadyExists
	}
	return db.HandleExecError(err, "create user", start)
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.findOne(ctx, "find user by username", `WHERE username = $1`, username)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	return r.findOne(ctx, "find user by id", `WHERE id = $1`, string(id))
}

// findOne retries transient failures; the auth gate resolves a user on every
// authenticated request.
func (r *PgRepository) findOne(ctx context.Context, operation, where string, arg any) (domain.User, error) {
	var user domain.User
	start := time.Now()
	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, db.IsTransientError, func() error {
		row := r.pool.QueryRow(
			ctx,
			`SELECT id, username, email, password_hash, created_at, updated_at FROM users `+where,
			arg,
		)
		return row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	})
	if err := db.HandleQueryError(err, ErrUserNotFound, operation, start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/AlibekovAA/task-manager/backend/internal/common/constants"
	"github.com/AlibekovAA/task-manager/backend/internal/common/db/migrations"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/observability/metrics"
)

// Migrate applies the embedded goose migrations. It opens its own
// database/sql handle because goose does not speak pgxpool.
func Migrate(ctx context.Context, log *logger.Logger, databaseURL string) error {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(ctx, constants.DBMigrationTimeout)
	defer cancel()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	metrics.DBSchemaVersion.Set(float64(version))
	log.Infof("database schema at version %d", version)

	return nil
}

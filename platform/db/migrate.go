package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"leadqualify_backend/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies all pending goose migrations found in fsys.
func RunMigrations(ctx context.Context, cfg config.DatabaseConfig, fsys fs.FS) error {
	return withGoose(ctx, cfg, fsys, func(db *sql.DB) error {
		return goose.UpContext(ctx, db, ".")
	})
}

// MigrationStatus prints the applied/pending state of every migration.
func MigrationStatus(ctx context.Context, cfg config.DatabaseConfig, fsys fs.FS) error {
	return withGoose(ctx, cfg, fsys, func(db *sql.DB) error {
		return goose.StatusContext(ctx, db, ".")
	})
}

func withGoose(ctx context.Context, cfg config.DatabaseConfig, fsys fs.FS, fn func(db *sql.DB) error) error {
	if fsys == nil {
		return nil
	}

	db, err := sql.Open("pgx", cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping migration connection: %w", err)
	}

	goose.SetBaseFS(fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return fn(db)
}

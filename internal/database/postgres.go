package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/config"
)

// NewPostgres opens a connection pool and runs the given migrations.
// Each service owns its migration list; statements must be idempotent.
func NewPostgres(cfg config.DBConfig, migrations []string) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return nil, fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	slog.Info("database migrations completed")

	return db, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"creditlens/internal/config"
)

// ReportsTable holds one row per uploaded report.
const ReportsTable = "credit_reports"

// NewDB creates a new PostgreSQL connection pool.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	return db, nil
}

// EnsureSchema fails when the reports table has not been migrated yet, so the
// server refuses to start instead of failing every upload.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	var found sql.NullString
	if err := db.GetContext(ctx, &found, "SELECT to_regclass($1)::text", "public."+ReportsTable); err != nil {
		return fmt.Errorf("postgres.EnsureSchema: %w", err)
	}
	if !found.Valid {
		return fmt.Errorf("postgres.EnsureSchema: table %s is missing; run `migrate up`", ReportsTable)
	}
	return nil
}

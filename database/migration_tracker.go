package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const migrationsTableName = "schema_migrations"

// migration именованное изменение схемы, применяется один раз
type migration struct {
	name string
	up   func(ctx context.Context, tx *sql.Tx) error
}

// ensureMigrationTable создает таблицу schema_migrations при необходимости.
func ensureMigrationTable(ctx context.Context, db *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, migrationsTableName)

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}
	return nil
}

// isMigrationApplied проверяет, была ли уже применена миграция.
func isMigrationApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var appliedAt sql.NullTime
	query := fmt.Sprintf(`SELECT applied_at FROM %s WHERE name = ?`, migrationsTableName)
	err := db.QueryRowContext(ctx, query, name).Scan(&appliedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}

	return appliedAt.Valid, nil
}

// applyMigrations выполняет еще не примененные миграции по порядку, каждую в своей транзакции.
func applyMigrations(ctx context.Context, db *sql.DB, migrations []migration, logger *slog.Logger) error {
	if err := ensureMigrationTable(ctx, db); err != nil {
		return err
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(ctx, db, m.name)
		if err != nil {
			return err
		}
		if applied {
			logger.Debug("Skipping migration, already applied", "migration", m.name)
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", m.name, err)
		}
		if err := m.up(ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}

		query := fmt.Sprintf(`INSERT OR REPLACE INTO %s(name, applied_at) VALUES(?, ?)`, migrationsTableName)
		if _, err := tx.ExecContext(ctx, query, m.name, time.Now().UTC()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to mark migration %s as applied: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.name, err)
		}

		logger.Info("Migration applied", "migration", m.name)
	}
	return nil
}

// execStatements выполняет набор DDL-запросов
func execStatements(statements ...string) func(ctx context.Context, tx *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, statement := range statements {
			if _, err := tx.ExecContext(ctx, statement); err != nil {
				return err
			}
		}
		return nil
	}
}

// schemaMigrations схема хранилища
var schemaMigrations = []migration{
	{
		name: "001_lookup_cache",
		up: execStatements(`
			CREATE TABLE IF NOT EXISTS lookup_cache (
				cache_key TEXT PRIMARY KEY,
				found INTEGER NOT NULL,
				record_json TEXT,
				expires_at TIMESTAMP NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_lookup_cache_expires ON lookup_cache(expires_at)`,
		),
	},
	{
		name: "002_batches",
		up: execStatements(`
			CREATE TABLE IF NOT EXISTS batches (
				id TEXT PRIMARY KEY,
				started_at TIMESTAMP NOT NULL,
				config_json TEXT NOT NULL,
				summary_json TEXT NOT NULL,
				total_occurrences INTEGER NOT NULL,
				matched INTEGER NOT NULL,
				match_rate REAL NOT NULL,
				cancelled INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_batches_started ON batches(started_at)`,
			`CREATE TABLE IF NOT EXISTS batch_results (
				batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				result_json TEXT NOT NULL,
				PRIMARY KEY (batch_id, position)
			)`,
		),
	},
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig конфигурация пула соединений
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store SQLite-хранилище: кэш ответов реестра и история пакетов
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore открывает базу и применяет миграции
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	config := DBConfig{}

	// Для in-memory SQLite требуется ровно одно соединение,
	// иначе каждое новое соединение получит пустую БД без таблиц.
	if isInMemory(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	return NewStoreWithConfig(ctx, dbPath, config)
}

// isInMemory определяет, что путь относится к in-memory SQLite
func isInMemory(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}
	return strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory")
}

// withForeignKeys включает внешние ключи для каждого соединения пула
func withForeignKeys(dbPath string) string {
	if strings.Contains(dbPath, "_foreign_keys") || strings.Contains(dbPath, "_fk=") {
		return dbPath
	}
	if strings.Contains(dbPath, "?") {
		return dbPath + "&_foreign_keys=on"
	}
	return dbPath + "?_foreign_keys=on"
}

// NewStoreWithConfig открывает базу с заданным пулом соединений
func NewStoreWithConfig(ctx context.Context, dbPath string, config DBConfig) (*Store, error) {
	logger := slog.Default().With("component", "store")

	conn, err := sql.Open("sqlite3", withForeignKeys(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		// SQLite плохо переносит много параллельных писателей
		conn.SetMaxOpenConns(10)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(3)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if !isInMemory(dbPath) {
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			logger.Warn("Failed to enable WAL mode", "error", err.Error())
		}
	}

	if err := applyMigrations(ctx, conn, schemaMigrations, logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{conn: conn, logger: logger, now: time.Now}, nil
}

// Close закрывает соединение
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping проверяет подключение
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var embedded embed.FS

const migrationsDir = "sql"

// Migrator applies the embedded goose migrations
type Migrator struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewMigrator wraps the pool in a database/sql handle for goose
func NewMigrator(pool *pgxpool.Pool, logger zerolog.Logger) (*Migrator, error) {
	goose.SetBaseFS(embedded)
	goose.SetLogger(gooseLogger{logger: logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return &Migrator{
		db:     stdlib.OpenDBFromPool(pool),
		logger: logger,
	}, nil
}

// Run executes a goose command: up, down, status, version, reset or redo
func (m *Migrator) Run(ctx context.Context, command string) error {
	var err error
	switch strings.ToLower(command) {
	case "up":
		err = goose.UpContext(ctx, m.db, migrationsDir)
	case "down":
		err = goose.DownContext(ctx, m.db, migrationsDir)
	case "redo":
		err = goose.RedoContext(ctx, m.db, migrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, m.db, migrationsDir)
	case "status":
		err = goose.StatusContext(ctx, m.db, migrationsDir)
	case "version":
		var version int64
		version, err = goose.GetDBVersionContext(ctx, m.db)
		if err == nil {
			m.logger.Info().Int64("version", version).Msg("Current database version")
		}
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}

// Up applies all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	return m.Run(ctx, "up")
}

// Close releases the database/sql handle; the underlying pool stays open
func (m *Migrator) Close() error {
	return m.db.Close()
}

// Files lists the embedded migration files in apply order
func Files() ([]string, error) {
	entries, err := fs.Glob(embedded, migrationsDir+"/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)
	return entries, nil
}

type gooseLogger struct {
	logger zerolog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatal().Msgf(strings.TrimSpace(format), v...)
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info().Msgf(strings.TrimSpace(format), v...)
}

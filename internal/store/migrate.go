package store

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SchemaVersion is the migration version this build expects.
const SchemaVersion = 2

// gooseLogger forwards goose output to slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}

func setupGoose(logger *slog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger: logger})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// migrate runs all pending database migrations.
func (s *SQLiteStore) migrate() error {
	if err := setupGoose(s.logger); err != nil {
		return err
	}
	before, _ := goose.GetDBVersion(s.db)
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	after, _ := goose.GetDBVersion(s.db)
	if after != before {
		s.logger.Info("database migrated", "from", before, "to", after)
	}
	return nil
}

// migrateTo applies migrations up to and including version.
func migrateTo(db *sql.DB, version int64, logger *slog.Logger) error {
	if err := setupGoose(logger); err != nil {
		return err
	}
	if err := goose.UpTo(db, "migrations", version); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationVersion returns the applied schema version.
func (s *SQLiteStore) MigrationVersion() (int64, error) {
	if err := setupGoose(s.logger); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(s.db)
}

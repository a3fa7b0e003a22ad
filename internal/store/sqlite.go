package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Options configures a SQLiteStore.
type Options struct {
	// BackupDir holds daily snapshots. Defaults to <db dir>/backups.
	BackupDir string
	// BackupKeep is how many snapshots survive rotation. Defaults to 7.
	BackupKeep int
	// DisableBackups turns off automatic snapshots.
	DisableBackups bool
	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	entropy *rand.Rand
	logger  *slog.Logger
	backups *backupPolicy
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path,
// applies pending migrations and takes the daily snapshot.
func NewSQLiteStore(dbPath string, opts Options) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := newStore(db, opts)
	s.path = dbPath
	if !opts.DisableBackups {
		s.backups = newBackupPolicy(dbPath, opts)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	ctx := context.Background()
	if _, err := s.ensureDefaultSession(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("default session: %w", err)
	}
	s.afterWrite(ctx)

	return s, nil
}

// newStore wraps an already opened database without migrating it.
func newStore(db *sql.DB, opts Options) *SQLiteStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// afterWrite runs after every successful mutation. It makes sure today's
// snapshot exists; failures are logged, never returned.
func (s *SQLiteStore) afterWrite(ctx context.Context) {
	if s.backups == nil {
		return
	}
	if _, _, err := s.backups.ensureDaily(ctx, s.db); err != nil {
		s.logger.Warn("snapshot failed", "err", err)
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(what, ref string) error {
	return fmt.Errorf("%s %q: %w", what, ref, ErrNotFound)
}

func noRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// rowsAffected returns the affected row count, 0 when the driver cannot tell.
func rowsAffected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

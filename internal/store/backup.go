package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	backupPrefix      = "calculator-"
	backupSuffix      = ".db"
	defaultBackupKeep = 7
)

// BackupInfo describes one snapshot file.
type BackupInfo struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

type backupPolicy struct {
	dir     string
	keep    int
	lastDay string
}

func newBackupPolicy(dbPath string, opts Options) *backupPolicy {
	dir := opts.BackupDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(dbPath), "backups")
	}
	keep := opts.BackupKeep
	if keep <= 0 {
		keep = defaultBackupKeep
	}
	return &backupPolicy{dir: dir, keep: keep}
}

func backupName(t time.Time) string {
	return backupPrefix + t.Format("2006-01-02") + backupSuffix
}

// ensureDaily writes today's snapshot unless it already exists.
func (p *backupPolicy) ensureDaily(ctx context.Context, db *sql.DB) (string, bool, error) {
	day := time.Now().Format("2006-01-02")
	path := filepath.Join(p.dir, backupName(time.Now()))
	if p.lastDay == day {
		return path, false, nil
	}
	if _, err := os.Stat(path); err == nil {
		p.lastDay = day
		return path, false, nil
	}
	if err := p.snapshot(ctx, db, path); err != nil {
		return "", false, err
	}
	p.lastDay = day
	return path, true, p.prune()
}

// snapshot copies the live database to path through a temp file so a
// partial write never shadows a good snapshot.
func (p *backupPolicy) snapshot(ctx context.Context, db *sql.DB, path string) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	tmp := path + ".tmp"
	os.Remove(tmp)
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("vacuum into %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// prune keeps the newest snapshots by modification time.
func (p *backupPolicy) prune() error {
	backups, err := p.list()
	if err != nil {
		return err
	}
	for i := p.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove old snapshot: %w", err)
		}
	}
	return nil
}

// list returns snapshots newest first.
func (p *backupPolicy) list() ([]BackupInfo, error) {
	entries, err := os.ReadDir(p.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var backups []BackupInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:    filepath.Join(p.dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// Backup takes today's snapshot. With force an existing snapshot for
// today is replaced.
func (s *SQLiteStore) Backup(ctx context.Context, force bool) (*BackupInfo, error) {
	if s.backups == nil {
		return nil, fmt.Errorf("backups are disabled")
	}
	path := filepath.Join(s.backups.dir, backupName(time.Now()))
	if force {
		if err := s.backups.snapshot(ctx, s.db, path); err != nil {
			return nil, err
		}
		s.backups.lastDay = time.Now().Format("2006-01-02")
		if err := s.backups.prune(); err != nil {
			return nil, err
		}
	} else {
		s.backups.lastDay = ""
		if _, _, err := s.backups.ensureDaily(ctx, s.db); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}
	s.logger.Info("snapshot written", "path", path, "size", info.Size())
	return &BackupInfo{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Backups lists existing snapshots newest first.
func (s *SQLiteStore) Backups() ([]BackupInfo, error) {
	if s.backups == nil {
		return nil, nil
	}
	return s.backups.list()
}

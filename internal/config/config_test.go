package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("db", "", "")
	fs.String("backup-dir", "", "")
	fs.Int("backup-keep", 7, "")
	fs.Bool("no-backup", false, "")
	fs.String("log-level", "warn", "")
	fs.StringP("format", "f", "json", "")
	fs.String("history-file", "", "")
	return fs
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"DB", "BACKUP_DIR", "BACKUP_KEEP", "NO_BACKUP", "LOG_LEVEL", "FORMAT", "HISTORY_FILE"} {
		os.Unsetenv(EnvPrefix + key)
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".desk-calc", "calculator.db"), cfg.DB)
	assert.Equal(t, filepath.Join(home, ".desk-calc", "repl_history"), cfg.HistoryFile)
	assert.Equal(t, 7, cfg.BackupKeep)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.False(t, cfg.NoBackup)
	assert.Empty(t, cfg.File)
}

func TestLoadPrecedence(t *testing.T) {
	home := isolate(t)
	cfgPath := filepath.Join(home, ".desk-calc", "config.yaml")
	writeFile(t, cfgPath, "db: /from/file.db\nformat: text\nbackup_keep: 3\nlog_level: info\n")

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, cfgPath, cfg.File)
		assert.Equal(t, "/from/file.db", cfg.DB)
		assert.Equal(t, FormatText, cfg.Format)
		assert.Equal(t, 3, cfg.BackupKeep)
		assert.Equal(t, slog.LevelInfo, cfg.Level())
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("DESK_CALC_DB", "/from/env.db")
		t.Setenv("DESK_CALC_BACKUP_KEEP", "5")
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, "/from/env.db", cfg.DB)
		assert.Equal(t, 5, cfg.BackupKeep)
		assert.Equal(t, FormatText, cfg.Format)
	})

	t.Run("set flags over env", func(t *testing.T) {
		t.Setenv("DESK_CALC_DB", "/from/env.db")
		fs := testFlags()
		require.NoError(t, fs.Parse([]string{"--db", "/from/flag.db", "--backup-keep", "9"}))
		cfg, err := Load("", fs)
		require.NoError(t, err)
		assert.Equal(t, "/from/flag.db", cfg.DB)
		assert.Equal(t, 9, cfg.BackupKeep)
		// unset flags keep the file value, not the flag default
		assert.Equal(t, FormatText, cfg.Format)
	})
}

func TestLoadExplicitFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom.yaml")
	writeFile(t, path, "history_file: ~/hist\nno_backup: true\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "hist"), cfg.HistoryFile)
	assert.True(t, cfg.NoBackup)

	_, err = Load(filepath.Join(home, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{name: "bad format", env: map[string]string{"DESK_CALC_FORMAT": "xml"}, errMsg: "unknown format"},
		{name: "bad level", env: map[string]string{"DESK_CALC_LOG_LEVEL": "loud"}, errMsg: "unknown log level"},
		{name: "bad keep", env: map[string]string{"DESK_CALC_BACKUP_KEEP": "0"}, errMsg: "backup_keep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// Package cli implements the desk-calc CLI commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rcliao/desk-calc/internal/calc"
	"github.com/rcliao/desk-calc/internal/config"
	"github.com/rcliao/desk-calc/internal/store"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = slog.New(slog.DiscardHandler)
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "desk-calc",
	Short: "A desktop calculator core with history, sessions and variables",
	Long: "Evaluate expressions in standard, scientific or programmer mode. Results, settings,\n" +
		"memory slots, sessions and variables live in a local SQLite database.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.Level()}))
		if c.File != "" {
			logger.Debug("config loaded", "file", c.File)
		}
		return nil
	},
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/.desk-calc/config.yaml)")
	pf.StringP("db", "d", "", "Database path (default: $DESK_CALC_DB or ~/.desk-calc/calculator.db)")
	pf.StringP("format", "f", config.FormatJSON, "Output format: json or text")
	pf.String("log-level", "warn", "Log level: debug, info, warn, error")
	pf.String("backup-dir", "", "Snapshot directory (default: <db dir>/backups)")
	pf.Int("backup-keep", 7, "Number of daily snapshots to keep")
	pf.Bool("no-backup", false, "Disable automatic daily snapshots")
	pf.String("history-file", "", "REPL line history file (default: ~/.desk-calc/repl_history)")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DB, store.Options{
		BackupDir:      cfg.BackupDir,
		BackupKeep:     cfg.BackupKeep,
		DisableBackups: cfg.NoBackup,
		Logger:         logger,
	})
}

// openService opens the store and wraps it in a calculator service. The
// caller closes the returned store.
func openService(ctx context.Context) (*calc.Service, *store.SQLiteStore, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	svc, err := calc.New(ctx, s, logger)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return svc, s, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

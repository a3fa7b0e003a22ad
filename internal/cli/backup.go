package cli

import (
	"github.com/rcliao/desk-calc/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Take today's database snapshot",
		Long: "Snapshots are taken automatically after the first write of each day and rotated\n" +
			"to keep the newest few. This takes one now; --force replaces today's snapshot.",
		Run: runBackup,
	}

	cmd.Flags().Bool("force", false, "Replace today's snapshot if it exists")
	cmd.Flags().Bool("list", false, "List snapshots instead of taking one")

	RootCmd.AddCommand(cmd)
}

func runBackup(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")
	list, _ := cmd.Flags().GetBool("list")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if list {
		backups, err := s.Backups()
		if err != nil {
			exitErr("backup list", err)
		}
		printBackups(cmd, backups)
		return
	}

	info, err := s.Backup(cmd.Context(), force)
	if err != nil {
		exitErr("backup", err)
	}
	printBackups(cmd, []store.BackupInfo{*info})
}

func printBackups(cmd *cobra.Command, backups []store.BackupInfo) {
	if !textOutput() {
		if backups == nil {
			backups = []store.BackupInfo{}
		}
		printJSON(cmd, backups)
		return
	}
	t := newTable(cmd.OutOrStdout(), "Path", "Size", "Modified")
	for _, b := range backups {
		t.AppendRow([]interface{}{b.Path, b.Size, b.ModTime.Local().Format("2006-01-02 15:04:05")})
	}
	t.Render()
}

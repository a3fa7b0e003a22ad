package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	if !textOutput() {
		printJSON(cmd, stats)
		return
	}

	w := cmd.OutOrStdout()
	t := newTable(w, "Database", "Size", "Schema", "History", "Pinned", "Memory slots")
	t.AppendRow([]interface{}{stats.DBPath, stats.DBSizeBytes, stats.SchemaVersion, stats.HistoryEntries, stats.PinnedEntries, stats.MemorySlots})
	t.Render()

	st := newTable(w, "Session", "Default", "History", "Variables")
	for _, ss := range stats.Sessions {
		def := ""
		if ss.IsDefault {
			def = "yes"
		}
		st.AppendRow([]interface{}{ss.Name, def, ss.History, ss.Variables})
	}
	st.Render()

	if len(stats.Backups) > 0 {
		printBackups(cmd, stats.Backups)
	}
}

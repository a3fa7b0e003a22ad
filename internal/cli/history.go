package cli

import (
	"fmt"

	"github.com/rcliao/desk-calc/internal/model"
	"github.com/rcliao/desk-calc/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage calculation history",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List history, newest first",
		Run:   runHistoryList,
	}
	listCmd.Flags().IntP("limit", "l", 20, "Max results")
	listCmd.Flags().Int("offset", 0, "Skip this many entries")
	listCmd.Flags().StringP("session", "s", "", "Only entries of this session (ID or name)")
	listCmd.Flags().Bool("pinned", false, "Only pinned entries")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search expressions and results",
		Args:  cobra.ExactArgs(1),
		Run:   runHistorySearch,
	}
	searchCmd.Flags().IntP("limit", "l", 20, "Max results")
	searchCmd.Flags().StringP("session", "s", "", "Only entries of this session (ID or name)")

	pinCmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle the pinned flag of an entry",
		Args:  cobra.ExactArgs(1),
		Run:   runHistoryPin,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a history entry",
		Args:  cobra.ExactArgs(1),
		Run:   runHistoryRm,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete history entries",
		Run:   runHistoryClear,
	}
	clearCmd.Flags().StringP("session", "s", "", "Only entries of this session (ID or name)")
	clearCmd.Flags().Bool("keep-pinned", false, "Keep pinned entries")

	historyCmd.AddCommand(listCmd, searchCmd, pinCmd, rmCmd, clearCmd)
	RootCmd.AddCommand(historyCmd)
}

// sessionFlag resolves the --session flag to an ID. Empty stays empty.
func sessionFlag(cmd *cobra.Command, s store.SessionStore) string {
	ref, _ := cmd.Flags().GetString("session")
	if ref == "" {
		return ""
	}
	sess, err := s.ResolveSession(cmd.Context(), ref)
	if err != nil {
		exitErr("session", err)
	}
	return sess.ID
}

func runHistoryList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	pinned, _ := cmd.Flags().GetBool("pinned")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.ListHistory(cmd.Context(), store.ListHistoryParams{
		Limit:      limit,
		Offset:     offset,
		SessionID:  sessionFlag(cmd, s),
		PinnedOnly: pinned,
	})
	if err != nil {
		exitErr("history list", err)
	}
	printHistory(cmd, entries)
}

func runHistorySearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.SearchHistory(cmd.Context(), store.SearchHistoryParams{
		Query:     args[0],
		SessionID: sessionFlag(cmd, s),
		Limit:     limit,
	})
	if err != nil {
		exitErr("history search", err)
	}
	printHistory(cmd, entries)
}

func runHistoryPin(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	pinned, err := s.TogglePin(cmd.Context(), args[0])
	if err != nil {
		exitErr("history pin", err)
	}
	state := "unpinned"
	if pinned {
		state = "pinned"
	}
	printOK(cmd, fmt.Sprintf("%s %s", state, args[0]), map[string]interface{}{"id": args[0], "pinned": pinned})
}

func runHistoryRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteHistory(cmd.Context(), args[0]); err != nil {
		exitErr("history rm", err)
	}
	printOK(cmd, "deleted "+args[0], map[string]interface{}{"deleted": args[0]})
}

func runHistoryClear(cmd *cobra.Command, args []string) {
	keepPinned, _ := cmd.Flags().GetBool("keep-pinned")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.ClearHistory(cmd.Context(), store.ClearHistoryParams{
		SessionID:  sessionFlag(cmd, s),
		KeepPinned: keepPinned,
	})
	if err != nil {
		exitErr("history clear", err)
	}
	printOK(cmd, fmt.Sprintf("cleared %d entries", n), map[string]interface{}{"cleared": n})
}

func printHistory(cmd *cobra.Command, entries []model.HistoryEntry) {
	if !textOutput() {
		if entries == nil {
			entries = []model.HistoryEntry{}
		}
		printJSON(cmd, entries)
		return
	}
	t := newTable(cmd.OutOrStdout(), "ID", "Time", "Mode", "Expression", "Result", "Pin")
	for _, e := range entries {
		pin := ""
		if e.Pinned {
			pin = "*"
		}
		t.AppendRow([]interface{}{e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Mode, e.Expression, e.Result, pin})
	}
	t.Render()
}

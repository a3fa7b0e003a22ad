package cli

import (
	"github.com/rcliao/desk-calc/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage calculation sessions",
		Long:  "Sessions scope variables and history. One default session always exists.",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, default first",
		Run:   runSessionList,
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a session",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionCreate,
	}
	createCmd.Flags().Bool("use", false, "Select the new session")

	renameCmd := &cobra.Command{
		Use:   "rename <session> <new-name>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		Run:   runSessionRename,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <session>",
		Short: "Delete a session and its variables; its history is kept",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionRm,
	}

	useCmd := &cobra.Command{
		Use:   "use <session>",
		Short: "Select the session used by eval, batch, var and repl",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionUse,
	}

	sessionCmd.AddCommand(listCmd, createCmd, renameCmd, rmCmd, useCmd)
	RootCmd.AddCommand(sessionCmd)
}

func runSessionList(cmd *cobra.Command, args []string) {
	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sessions, err := s.ListSessions(cmd.Context())
	if err != nil {
		exitErr("session list", err)
	}
	current, err := svc.CurrentSession(cmd.Context())
	if err != nil {
		exitErr("session list", err)
	}

	if !textOutput() {
		type sessionOut struct {
			model.Session
			Current bool `json:"current"`
		}
		out := make([]sessionOut, 0, len(sessions))
		for _, sess := range sessions {
			out = append(out, sessionOut{Session: sess, Current: sess.ID == current.ID})
		}
		printJSON(cmd, out)
		return
	}

	t := newTable(cmd.OutOrStdout(), "", "ID", "Name", "Default", "Created")
	for _, sess := range sessions {
		marker := ""
		if sess.ID == current.ID {
			marker = "*"
		}
		def := ""
		if sess.IsDefault {
			def = "yes"
		}
		t.AppendRow([]interface{}{marker, sess.ID, sess.Name, def, sess.CreatedAt.Local().Format("2006-01-02 15:04")})
	}
	t.Render()
}

func runSessionCreate(cmd *cobra.Command, args []string) {
	use, _ := cmd.Flags().GetBool("use")

	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := s.CreateSession(cmd.Context(), args[0])
	if err != nil {
		exitErr("session create", err)
	}
	if use {
		if _, err := svc.UseSession(cmd.Context(), sess.ID); err != nil {
			exitErr("session use", err)
		}
	}
	printSession(cmd, "created", sess)
}

func runSessionRename(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := s.ResolveSession(cmd.Context(), args[0])
	if err != nil {
		exitErr("session rename", err)
	}
	sess, err = s.RenameSession(cmd.Context(), sess.ID, args[1])
	if err != nil {
		exitErr("session rename", err)
	}
	printSession(cmd, "renamed", sess)
}

func runSessionRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := s.ResolveSession(cmd.Context(), args[0])
	if err != nil {
		exitErr("session rm", err)
	}
	if err := s.DeleteSession(cmd.Context(), sess.ID); err != nil {
		exitErr("session rm", err)
	}
	printOK(cmd, "deleted session "+sess.Name, map[string]interface{}{"deleted": sess.ID})
}

func runSessionUse(cmd *cobra.Command, args []string) {
	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := svc.UseSession(cmd.Context(), args[0])
	if err != nil {
		exitErr("session use", err)
	}
	printSession(cmd, "using", sess)
}

func printSession(cmd *cobra.Command, verb string, sess *model.Session) {
	if textOutput() {
		printOK(cmd, verb+" session "+sess.Name+" ("+sess.ID+")", nil)
		return
	}
	printJSON(cmd, sess)
}

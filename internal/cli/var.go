package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/desk-calc/internal/calc"
	"github.com/rcliao/desk-calc/internal/engine"
	"github.com/rcliao/desk-calc/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	varCmd := &cobra.Command{
		Use:   "var",
		Short: "Manage session variables",
		Long: "Variables are bound per session and substituted into expressions before they are\n" +
			"evaluated. Names are identifiers and may not shadow functions, constants or ans.",
	}

	setCmd := &cobra.Command{
		Use:     "set <name> <expression>",
		Short:   "Evaluate an expression and bind it to a name",
		Example: "  desk-calc var set rate 7.5/100\n  desk-calc var set -s mortgage principal 250000",
		Args:    cobra.MinimumNArgs(2),
		Run:     runVarSet,
	}

	getCmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print a variable",
		Args:  cobra.ExactArgs(1),
		Run:   runVarGet,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a session's variables",
		Run:   runVarList,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a variable",
		Args:  cobra.ExactArgs(1),
		Run:   runVarRm,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all of a session's variables",
		Run:   runVarClear,
	}

	for _, c := range []*cobra.Command{setCmd, getCmd, listCmd, rmCmd, clearCmd} {
		c.Flags().StringP("session", "s", "", "Session ID or name (default: current session)")
	}

	varCmd.AddCommand(setCmd, getCmd, listCmd, rmCmd, clearCmd)
	RootCmd.AddCommand(varCmd)
}

// evalArgs evaluates the joined args in the --session scope without
// recording history.
func evalArgs(cmd *cobra.Command, svc *calc.Service, args []string) (string, error) {
	session, _ := cmd.Flags().GetString("session")
	resp, err := svc.Calculate(cmd.Context(), calc.CalculateRequest{
		Expression: strings.Join(args, " "),
		SessionID:  session,
	})
	if err != nil {
		return "", displayErr(err)
	}
	return resp.Value, nil
}

// displayErr turns evaluation errors into their user-facing message.
func displayErr(err error) error {
	var evalErr *engine.EvalError
	if errors.As(err, &evalErr) {
		return errors.New(engine.Message(err))
	}
	return err
}

// targetSession resolves --session, defaulting to the current session.
func targetSession(ctx context.Context, cmd *cobra.Command, svc *calc.Service) *model.Session {
	ref, _ := cmd.Flags().GetString("session")
	sess, err := svc.Session(ctx, ref)
	if err != nil {
		exitErr("session", err)
	}
	return sess
}

func runVarSet(cmd *cobra.Command, args []string) {
	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess := targetSession(cmd.Context(), cmd, svc)
	v, err := svc.SetVariable(cmd.Context(), sess.ID, args[0], strings.Join(args[1:], " "))
	if err != nil {
		exitErr("var set", displayErr(err))
	}
	if textOutput() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", v.Name, v.Value)
		return
	}
	printJSON(cmd, v)
}

func runVarGet(cmd *cobra.Command, args []string) {
	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess := targetSession(cmd.Context(), cmd, svc)
	v, err := s.GetVariable(cmd.Context(), sess.ID, args[0])
	if err != nil {
		exitErr("var get", err)
	}
	if textOutput() {
		fmt.Fprintln(cmd.OutOrStdout(), v.Value)
		return
	}
	printJSON(cmd, v)
}

func runVarList(cmd *cobra.Command, args []string) {
	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess := targetSession(cmd.Context(), cmd, svc)
	vars, err := s.ListVariables(cmd.Context(), sess.ID)
	if err != nil {
		exitErr("var list", err)
	}
	printVariables(cmd, sess, vars)
}

func printVariables(cmd *cobra.Command, sess *model.Session, vars []model.Variable) {
	if !textOutput() {
		if vars == nil {
			vars = []model.Variable{}
		}
		printJSON(cmd, vars)
		return
	}
	t := newTable(cmd.OutOrStdout(), "Name", "Value", "Updated")
	t.SetTitle("Session: " + sess.Name)
	for _, v := range vars {
		t.AppendRow([]interface{}{v.Name, v.Value, v.UpdatedAt.Local().Format("2006-01-02 15:04:05")})
	}
	t.Render()
}

func runVarRm(cmd *cobra.Command, args []string) {
	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess := targetSession(cmd.Context(), cmd, svc)
	if err := s.DeleteVariable(cmd.Context(), sess.ID, args[0]); err != nil {
		exitErr("var rm", err)
	}
	printOK(cmd, "deleted "+args[0], map[string]interface{}{"deleted": args[0], "session_id": sess.ID})
}

func runVarClear(cmd *cobra.Command, args []string) {
	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess := targetSession(cmd.Context(), cmd, svc)
	n, err := s.ClearVariables(cmd.Context(), sess.ID)
	if err != nil {
		exitErr("var clear", err)
	}
	printOK(cmd, fmt.Sprintf("cleared %d variables", n), map[string]interface{}{"cleared": n, "session_id": sess.ID})
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rcliao/desk-calc/internal/calc"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Evaluate a file of expressions line by line",
		Long: "Evaluate multi-line input from a file or stdin. Blank lines and lines starting with\n" +
			"# or // are skipped, name = expr binds a variable, ans is the previous result.",
		Args: cobra.MaximumNArgs(1),
		Run:  runBatch,
	}

	cmd.Flags().StringP("session", "s", "", "Session ID or name (default: current session)")
	cmd.Flags().Bool("no-record", false, "Do not add results to history")
	cmd.Flags().Bool("no-save", false, "Do not save assignments as session variables")

	RootCmd.AddCommand(cmd)
}

func runBatch(cmd *cobra.Command, args []string) {
	session, _ := cmd.Flags().GetString("session")
	noRecord, _ := cmd.Flags().GetBool("no-record")
	noSave, _ := cmd.Flags().GetBool("no-save")

	var data []byte
	var err error
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	resp, err := svc.Batch(cmd.Context(), calc.BatchRequest{
		Input:     string(data),
		SessionID: session,
		Record:    !noRecord,
		Persist:   !noSave,
	})
	if err != nil {
		exitErr("batch", err)
	}
	printBatch(cmd, resp)
	if resp.Failed > 0 {
		os.Exit(1)
	}
}

func printBatch(cmd *cobra.Command, resp *calc.BatchResponse) {
	if !textOutput() {
		printJSON(cmd, resp)
		return
	}
	t := newTable(cmd.OutOrStdout(), "Line", "Input", "Result")
	for _, l := range resp.Lines {
		result := l.Error
		if l.Result != nil {
			result = l.Result.Value
			if l.Assign != "" {
				result = fmt.Sprintf("%s = %s", l.Assign, l.Result.Value)
			}
		}
		t.AppendRow([]interface{}{l.Line, l.Input, result})
	}
	t.AppendFooter([]interface{}{"", "failed", resp.Failed})
	t.Render()
}

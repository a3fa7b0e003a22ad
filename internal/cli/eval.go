package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rcliao/desk-calc/internal/calc"
	"github.com/rcliao/desk-calc/internal/model"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	cmd := &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate an expression",
		Long: "Evaluate an expression in the current session. The expression can be a positional\n" +
			"arg or piped via stdin; multi-line stdin is evaluated as a batch.",
		Example: "  desk-calc eval '2pi * 3'\n  desk-calc eval --mode programmer '0xFF & 0b1010'",
		Run:     runEval,
	}

	cmd.Flags().StringP("session", "s", "", "Session ID or name (default: current session)")
	cmd.Flags().StringP("mode", "m", "", "Mode for this evaluation: standard, scientific, programmer")
	cmd.Flags().Bool("no-record", false, "Do not add the result to history")
	cmd.Flags().BoolP("copy", "c", false, "Copy the result to the clipboard")

	RootCmd.AddCommand(cmd)
}

func runEval(cmd *cobra.Command, args []string) {
	session, _ := cmd.Flags().GetString("session")
	mode, _ := cmd.Flags().GetString("mode")
	noRecord, _ := cmd.Flags().GetBool("no-record")
	copyResult, _ := cmd.Flags().GetBool("copy")

	// positional arg first, then stdin when it is not a terminal
	var input string
	if len(args) > 0 {
		input = strings.Join(args, " ")
	} else if !term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		input = strings.TrimSpace(string(b))
	}
	if strings.TrimSpace(input) == "" {
		exitErr("eval", fmt.Errorf("expression is required (positional arg or stdin)"))
	}

	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if strings.Contains(input, "\n") {
		resp, err := svc.Batch(cmd.Context(), calc.BatchRequest{
			Input:     input,
			SessionID: session,
			Mode:      model.Mode(mode),
			Record:    !noRecord,
			Persist:   true,
		})
		if err != nil {
			exitErr("batch", err)
		}
		printBatch(cmd, resp)
		return
	}

	resp, err := svc.Calculate(cmd.Context(), calc.CalculateRequest{
		Expression: input,
		SessionID:  session,
		Mode:       model.Mode(mode),
		Record:     !noRecord,
	})
	if err != nil {
		exitErr("eval", displayErr(err))
	}

	if copyResult {
		if err := clipboard.WriteAll(resp.Value); err != nil {
			logger.Warn("copy to clipboard failed", "err", err)
		}
	}

	if textOutput() {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, resp.Display)
		if resp.Hex != "" {
			fmt.Fprintf(w, "hex %s\nbin %s\noct %s\n", resp.Hex, resp.Bin, resp.Oct)
		}
		return
	}
	printJSON(cmd, resp)
}

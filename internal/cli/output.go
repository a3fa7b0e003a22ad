package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rcliao/desk-calc/internal/config"
	"github.com/spf13/cobra"
)

func textOutput() bool {
	return cfg != nil && cfg.Format == config.FormatText
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitErr("encode output", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

// printOK writes the {"ok":true,...} acknowledgement used by mutating
// commands, or msg in text mode.
func printOK(cmd *cobra.Command, msg string, fields map[string]interface{}) {
	if textOutput() {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return
	}
	out := map[string]interface{}{"ok": true}
	for k, v := range fields {
		out[k] = v
	}
	printJSON(cmd, out)
}

func newTable(w io.Writer, header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

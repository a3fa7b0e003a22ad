package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rcliao/desk-calc/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a session from JSON or YAML",
		Long: "Import a session produced by export (stdin or file). It always becomes a new,\n" +
			"non-default session; use --name when the exported name is taken.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	cmd.Flags().String("name", "", "Name for the imported session (default: exported name)")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")

	var data []byte
	var err error
	src := "stdin"
	if len(args) == 1 && args[0] != "-" {
		src = args[0]
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read "+src, err)
	}

	doc, err := decodeExport(data, isYAMLPath(src))
	if err != nil {
		exitErr("parse "+src, err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := s.ImportSession(cmd.Context(), doc, name)
	if err != nil {
		exitErr("import", err)
	}
	printOK(cmd, fmt.Sprintf("imported session %s (%s)", sess.Name, sess.ID), map[string]interface{}{
		"session_id": sess.ID,
		"name":       sess.Name,
		"variables":  len(doc.Variables),
		"history":    len(doc.History),
	})
}

// decodeExport accepts JSON, or YAML when the source looks like YAML.
func decodeExport(data []byte, preferYAML bool) (*store.SessionExport, error) {
	var doc store.SessionExport
	trimmed := strings.TrimSpace(string(data))
	if !preferYAML && strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func jsonIndent(v interface{}) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export [session]",
		Short: "Export a session as JSON or YAML",
		Long: "Export a session with its variables and history. Defaults to the current session\n" +
			"and JSON on stdout; a .yaml or .yml --out file is written as YAML.",
		Args: cobra.MaximumNArgs(1),
		Run:  runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().Bool("yaml", false, "Encode as YAML")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	asYAML = asYAML || isYAMLPath(out)

	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ref := ""
	if len(args) == 1 {
		ref = args[0]
	}
	sess, err := svc.Session(cmd.Context(), ref)
	if err != nil {
		exitErr("export", err)
	}

	doc, err := s.ExportSession(cmd.Context(), sess.ID)
	if err != nil {
		exitErr("export", err)
	}

	if out == "" {
		if asYAML {
			b, err := yaml.Marshal(doc)
			if err != nil {
				exitErr("encode yaml", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(b))
			return
		}
		printJSON(cmd, doc)
		return
	}

	var b []byte
	if asYAML {
		b, err = yaml.Marshal(doc)
	} else {
		b, err = jsonIndent(doc)
	}
	if err != nil {
		exitErr("encode export", err)
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		exitErr("write export", err)
	}
	printOK(cmd, fmt.Sprintf("exported %s to %s", sess.Name, out), map[string]interface{}{
		"session_id": sess.ID,
		"file":       out,
		"variables":  len(doc.Variables),
		"history":    len(doc.History),
	})
}

func isYAMLPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

package cli

import (
	"fmt"
	"sort"

	"github.com/rcliao/desk-calc/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change calculator settings",
		Long: "Settings are process-wide key/value pairs. Known keys are validated:\n" +
			"  theme            system, light, dark\n" +
			"  scatteredKeypad  true, false\n" +
			"  calculationMode  standard, scientific, programmer\n" +
			"  numberFormat     international, indian\n" +
			"  currentSession   session ID or name",
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		Run:   runSettingsGet,
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		Run:   runSettingsSet,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print all settings",
		Run:   runSettingsList,
	}

	settingsCmd.AddCommand(getCmd, setCmd, listCmd)
	RootCmd.AddCommand(settingsCmd)
}

func runSettingsGet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	v, err := s.GetSetting(cmd.Context(), args[0])
	if err != nil {
		exitErr("settings get", err)
	}
	if textOutput() {
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return
	}
	printJSON(cmd, model.Setting{Key: args[0], Value: v})
}

func runSettingsSet(cmd *cobra.Command, args []string) {
	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := svc.SetSetting(cmd.Context(), args[0], args[1]); err != nil {
		exitErr("settings set", err)
	}
	printOK(cmd, args[0]+" = "+args[1], map[string]interface{}{"key": args[0], "value": args[1]})
}

func runSettingsList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	all, err := s.AllSettings(cmd.Context())
	if err != nil {
		exitErr("settings list", err)
	}
	if !textOutput() {
		printJSON(cmd, all)
		return
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t := newTable(cmd.OutOrStdout(), "Key", "Value")
	for _, k := range keys {
		t.AppendRow([]interface{}{k, all[k]})
	}
	t.Render()
}

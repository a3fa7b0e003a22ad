package cli

import (
	"errors"
	"fmt"

	"github.com/rcliao/desk-calc/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	memoryCmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage persisted memory slots",
		Long: "Named memory slots survive restarts. The REPL's M+/M-/MR/MC/MS accumulator is\n" +
			"separate and lives only for the REPL session.",
	}

	setCmd := &cobra.Command{
		Use:   "set <slot> <expression>",
		Short: "Evaluate an expression and store it in a slot",
		Args:  cobra.MinimumNArgs(2),
		Run:   runMemorySet,
	}

	getCmd := &cobra.Command{
		Use:   "get <slot>",
		Short: "Print a slot",
		Args:  cobra.ExactArgs(1),
		Run:   runMemoryGet,
	}

	clearCmd := &cobra.Command{
		Use:   "clear [slot]",
		Short: "Clear one slot, or all with --all",
		Args:  cobra.MaximumNArgs(1),
		Run:   runMemoryClear,
	}
	clearCmd.Flags().Bool("all", false, "Clear every slot")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List slots, most recently written first",
		Run:   runMemoryList,
	}

	memoryCmd.AddCommand(setCmd, getCmd, clearCmd, listCmd)
	RootCmd.AddCommand(memoryCmd)
}

func runMemorySet(cmd *cobra.Command, args []string) {
	svc, s, err := openService(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	value, err := evalArgs(cmd, svc, args[1:])
	if err != nil {
		exitErr("memory set", err)
	}
	if err := s.SetMemory(cmd.Context(), args[0], value); err != nil {
		exitErr("memory set", err)
	}
	printOK(cmd, fmt.Sprintf("%s = %s", args[0], value), map[string]interface{}{"slot": args[0], "value": value})
}

func runMemoryGet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	v, err := s.GetMemory(cmd.Context(), args[0])
	if err != nil {
		exitErr("memory get", err)
	}
	if textOutput() {
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return
	}
	printJSON(cmd, model.MemorySlot{SlotName: args[0], Value: v})
}

func runMemoryClear(cmd *cobra.Command, args []string) {
	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) == 0 {
		exitErr("memory clear", errors.New("a slot name or --all is required"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var slots []string
	if all {
		existing, err := s.AllMemory(cmd.Context())
		if err != nil {
			exitErr("memory clear", err)
		}
		for _, m := range existing {
			slots = append(slots, m.SlotName)
		}
	} else {
		slots = args
	}
	for _, slot := range slots {
		if err := s.ClearMemory(cmd.Context(), slot); err != nil {
			exitErr("memory clear", err)
		}
	}
	printOK(cmd, fmt.Sprintf("cleared %d slots", len(slots)), map[string]interface{}{"cleared": len(slots)})
}

func runMemoryList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	slots, err := s.AllMemory(cmd.Context())
	if err != nil {
		exitErr("memory list", err)
	}
	if !textOutput() {
		if slots == nil {
			slots = []model.MemorySlot{}
		}
		printJSON(cmd, slots)
		return
	}
	t := newTable(cmd.OutOrStdout(), "Slot", "Value", "Written")
	for _, m := range slots {
		t.AppendRow([]interface{}{m.SlotName, m.Value, m.CreatedAt.Local().Format("2006-01-02 15:04:05")})
	}
	t.Render()
}

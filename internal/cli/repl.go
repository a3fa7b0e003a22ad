package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/rcliao/desk-calc/internal/calc"
	"github.com/rcliao/desk-calc/internal/engine"
	"github.com/rcliao/desk-calc/internal/model"
	"github.com/rcliao/desk-calc/internal/store"
	"github.com/spf13/cobra"
)

var (
	accent = lipgloss.Color("#A8E6CF")
	muted  = lipgloss.Color("#6B7280")
	alert  = lipgloss.Color("#FFB3BA")

	promptStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	resultStyle = lipgloss.NewStyle().Foreground(accent)
	radixStyle  = lipgloss.NewStyle().Foreground(muted)
	errorStyle  = lipgloss.NewStyle().Foreground(alert)
)

func init() {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive calculator",
		Long:  "Evaluate expressions interactively. Type .help for commands, .quit to exit.",
		Run:   runRepl,
	}

	cmd.Flags().StringP("session", "s", "", "Session ID or name (default: current session)")

	RootCmd.AddCommand(cmd)
}

func runRepl(cmd *cobra.Command, args []string) {
	ref, _ := cmd.Flags().GetString("session")
	ctx := cmd.Context()

	svc, s, err := openService(ctx)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	r, err := newRepl(ctx, svc, s, ref, cmd.OutOrStdout())
	if err != nil {
		exitErr("repl", err)
	}

	if cfg.HistoryFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryFile), 0o755); err != nil {
			logger.Warn("create history dir", "err", err)
		}
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.prompt(),
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    newCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		exitErr("repl", fmt.Errorf("failed to initialize REPL: %w", err))
	}
	defer rl.Close()

	fmt.Fprintf(r.out, "desk-calc (%s mode, session %s)\n", svc.Mode(), r.session.Name)
	fmt.Fprintln(r.out, "Type .help for commands, .quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if r.handle(line) {
			break
		}
		rl.SetPrompt(r.prompt())
	}
}

// repl holds the state of one interactive session.
type repl struct {
	ctx     context.Context
	svc     *calc.Service
	store   store.Store
	out     io.Writer
	session *model.Session
	last    string
}

func newRepl(ctx context.Context, svc *calc.Service, st store.Store, ref string, out io.Writer) (*repl, error) {
	sess, err := svc.Session(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &repl{ctx: ctx, svc: svc, store: st, out: out, session: sess}, nil
}

func (r *repl) prompt() string {
	indicator := ""
	if r.svc.Scratch().HasMemory() {
		indicator = "M "
	}
	return promptStyle.Render(fmt.Sprintf("%s%s:%s> ", indicator, r.session.Name, r.svc.Mode()))
}

// handle processes one input line and reports whether to quit.
func (r *repl) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || engine.IsComment(line) {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return r.dotCommand(line)
	}

	if name, rhs, ok := engine.ParseAssignment(line); ok {
		v, err := r.svc.SetVariable(r.ctx, r.session.ID, name, rhs)
		if err != nil {
			r.fail(err)
			return false
		}
		r.last = v.Value
		fmt.Fprintf(r.out, "%s = %s\n", v.Name, resultStyle.Render(r.svc.Display(r.ctx, v.Value)))
		return false
	}

	resp, err := r.svc.Calculate(r.ctx, calc.CalculateRequest{
		Expression: line,
		SessionID:  r.session.ID,
		Record:     true,
	})
	if err != nil {
		r.fail(err)
		return false
	}
	r.last = resp.Value
	fmt.Fprintln(r.out, resultStyle.Render("= "+resp.Display))
	if resp.Hex != "" {
		fmt.Fprintln(r.out, radixStyle.Render(fmt.Sprintf("  %s  %s  %s", resp.Hex, resp.Bin, resp.Oct)))
	}
	return false
}

func (r *repl) fail(err error) {
	fmt.Fprintln(r.out, errorStyle.Render("Error: "+displayErr(err).Error()))
}

func (r *repl) dotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printReplHelp(r.out)

	case ".mode":
		if rest == "" {
			fmt.Fprintln(r.out, r.svc.Mode())
			return false
		}
		if err := r.svc.SetMode(r.ctx, model.Mode(rest)); err != nil {
			r.fail(err)
			return false
		}
		fmt.Fprintf(r.out, "mode %s\n", r.svc.Mode())

	case ".session":
		if rest == "" {
			fmt.Fprintf(r.out, "%s (%s)\n", r.session.Name, r.session.ID)
			return false
		}
		sess, err := r.svc.UseSession(r.ctx, rest)
		if err != nil {
			r.fail(err)
			return false
		}
		r.session = sess
		fmt.Fprintf(r.out, "using session %s\n", sess.Name)

	case ".vars":
		vars, err := r.store.ListVariables(r.ctx, r.session.ID)
		if err != nil {
			r.fail(err)
			return false
		}
		if len(vars) == 0 {
			fmt.Fprintln(r.out, radixStyle.Render("(no variables)"))
		}
		for _, v := range vars {
			fmt.Fprintf(r.out, "%s = %s\n", v.Name, v.Value)
		}

	case ".history":
		entries, err := r.store.ListHistory(r.ctx, store.ListHistoryParams{SessionID: r.session.ID, Limit: 10})
		if err != nil {
			r.fail(err)
			return false
		}
		for i := len(entries) - 1; i >= 0; i-- {
			fmt.Fprintf(r.out, "%s = %s\n", entries[i].Expression, entries[i].Result)
		}

	case ".m+", ".m-", ".ms", ".mr", ".mc":
		value := r.last
		if rest != "" {
			resp, err := r.svc.Calculate(r.ctx, calc.CalculateRequest{Expression: rest, SessionID: r.session.ID})
			if err != nil {
				r.fail(err)
				return false
			}
			value = resp.Value
		}
		v, err := r.svc.Memory(calc.MemoryOp(strings.TrimPrefix(command, ".")), value)
		if err != nil {
			r.fail(err)
			return false
		}
		fmt.Fprintf(r.out, "M = %s\n", v)

	case ".slots":
		for _, slot := range r.svc.Scratch().Slots() {
			fmt.Fprintf(r.out, "%s = %s\n", slot.Name, slot.Value)
		}

	case ".slot":
		if len(parts) < 2 {
			fmt.Fprintln(r.out, "Usage: .slot <name> [expression]")
			return false
		}
		name := parts[1]
		expr := strings.TrimSpace(strings.TrimPrefix(rest, name))
		if expr == "" {
			fmt.Fprintf(r.out, "%s = %s\n", name, r.svc.Scratch().RecallSlot(name))
			return false
		}
		resp, err := r.svc.Calculate(r.ctx, calc.CalculateRequest{Expression: expr, SessionID: r.session.ID})
		if err != nil {
			r.fail(err)
			return false
		}
		if err := r.svc.Scratch().StoreSlot(name, resp.Value); err != nil {
			r.fail(err)
			return false
		}
		fmt.Fprintf(r.out, "%s = %s\n", name, resp.Value)

	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help                 Show this help message
  .mode [mode]          Show or set the mode: standard, scientific, programmer
  .session [session]    Show or switch the session
  .vars                 List session variables
  .history              Show the last 10 results of this session
  .m+ .m- .ms [expr]    Memory add, subtract, store (default: last result)
  .mr .mc               Memory recall, clear
  .slots                List scratch slots M1..M4
  .slot <name> [expr]   Recall or store a scratch slot
  .quit / .exit         Exit the REPL

Tips:
  - name = expr binds a session variable
  - ans is the previous result
`
	fmt.Fprintln(w, help)
}

func newCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".mode",
			readline.PcItem(string(model.ModeStandard)),
			readline.PcItem(string(model.ModeScientific)),
			readline.PcItem(string(model.ModeProgrammer)),
		),
		readline.PcItem(".session"),
		readline.PcItem(".vars"),
		readline.PcItem(".history"),
		readline.PcItem(".m+"),
		readline.PcItem(".m-"),
		readline.PcItem(".ms"),
		readline.PcItem(".mr"),
		readline.PcItem(".mc"),
		readline.PcItem(".slots"),
		readline.PcItem(".slot"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	}
	return readline.NewPrefixCompleter(items...)
}

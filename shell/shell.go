// Package shell is a line-oriented front end for the assistant. Each line
// is one command; free text goes to the voice assistant through "say".
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"pantryassistant"
	"pantryassistant/api"
	"pantryassistant/storage"
	"pantryassistant/ui"
)

// ErrQuit is returned by Exec when the user asks to leave.
var ErrQuit = errors.New("quit")

// HealthChecker reports the server status.
type HealthChecker interface {
	Health(ctx context.Context) (string, error)
}

// Sharer posts the shopping list somewhere outside the client.
type Sharer interface {
	Enabled() bool
	ShareShoppingList(ctx context.Context, entries []pantryassistant.ShoppingListEntry) error
}

// ScriptOpener resolves a script location to its source.
type ScriptOpener interface {
	Open(ctx context.Context, location string) (storage.ScriptState, error)
}

type Shell struct {
	app      *ui.App
	out      io.Writer
	health   HealthChecker
	registry *api.Registry
	share    Sharer
	scripts  ScriptOpener
	commands map[string]command
}

type Opts struct {
	App *ui.App
	Out io.Writer
	// The remaining fields are optional; commands that need a missing one
	// report it instead of running.
	Health   HealthChecker
	Registry *api.Registry
	Share    Sharer
	Scripts  ScriptOpener
}

func New(opts Opts) *Shell {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	s := &Shell{
		app:      opts.App,
		out:      out,
		health:   opts.Health,
		registry: opts.Registry,
		share:    opts.Share,
		scripts:  opts.Scripts,
	}
	s.commands = builtins()
	return s
}

// Exec runs a single command line. Blank lines and comments are no-ops.
func (s *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, rest, _ := strings.Cut(line, " ")
	cmd, ok := s.commands[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown command %q (try \"help\")", name)
	}

	// free text keeps apostrophes and quotes as typed
	if cmd.raw {
		return cmd.run(ctx, s, []string{strings.TrimSpace(rest)})
	}

	args, err := shellquote.Split(rest)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if len(args) < cmd.minArgs {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(ctx, s, args)
}

// Run reads commands from in until EOF or quit. Command errors are printed
// and do not stop the loop.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	s.prompt()
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.Exec(ctx, sc.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			slog.Debug("APP: Command failed", "line", sc.Text(), "error", err)
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		s.prompt()
	}
	return sc.Err()
}

func (s *Shell) prompt() {
	fmt.Fprint(s.out, "> ")
}

func (s *Shell) printHelp() {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := s.commands[name]
		fmt.Fprintf(s.out, "  %-34s %s\n", c.usage, c.help)
	}
}

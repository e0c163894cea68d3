package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pantryassistant"
	"pantryassistant/storage"
	"pantryassistant/ui"
)

type command struct {
	usage   string
	help    string
	minArgs int
	// raw commands receive the rest of the line unsplit as their only arg.
	raw bool
	run func(ctx context.Context, s *Shell, args []string) error
}

func builtins() map[string]command {
	return map[string]command{
		"help": {
			usage: "help",
			help:  "list commands",
			run: func(ctx context.Context, s *Shell, args []string) error {
				s.printHelp()
				return nil
			},
		},
		"inventory": {
			usage: "inventory",
			help:  "reload and show the inventory",
			run: func(ctx context.Context, s *Shell, args []string) error {
				s.app.LoadInventory(ctx)
				return s.show(ui.TabInventory)
			},
		},
		"add": {
			usage:   "add <name> <quantity> [unit]",
			help:    "add an item to the inventory",
			minArgs: 2,
			run:     runAdd,
		},
		"remove": {
			usage:   "remove <name> [quantity]",
			help:    "remove some or all of an item",
			minArgs: 1,
			run:     runRemove,
		},
		"threshold": {
			usage:   "threshold <name> <quantity>",
			help:    "set the low-stock threshold for an item",
			minArgs: 2,
			run:     runThreshold,
		},
		"suggest": {
			usage:   "suggest <servings> [preferences...]",
			help:    "ask for a recipe",
			minArgs: 1,
			run:     runSuggest,
		},
		"apply": {
			usage:   "apply <servings>",
			help:    "cook the current recipe, removing its ingredients",
			minArgs: 1,
			run: func(ctx context.Context, s *Shell, args []string) error {
				servings, err := parseServings(args[0])
				if err != nil {
					return err
				}
				if err := s.app.Recipe.Apply(ctx, servings); err != nil {
					return err
				}
				return s.show(ui.TabInventory)
			},
		},
		"recipe": {
			usage: "recipe",
			help:  "show the current recipe",
			run: func(ctx context.Context, s *Shell, args []string) error {
				return s.show(ui.TabRecipe)
			},
		},
		"shopping": {
			usage: "shopping",
			help:  "reload and show the shopping list",
			run: func(ctx context.Context, s *Shell, args []string) error {
				s.app.LoadShoppingList(ctx)
				return s.show(ui.TabShopping)
			},
		},
		"tab": {
			usage:   "tab <inventory|recipe|shopping>",
			help:    "switch the active tab",
			minArgs: 1,
			run: func(ctx context.Context, s *Shell, args []string) error {
				t, err := ui.ParseTab(args[0])
				if err != nil {
					return err
				}
				return s.show(t)
			},
		},
		"say": {
			usage: "say <text>",
			help:  "send a command to the assistant as if spoken",
			raw:   true,
			run: func(ctx context.Context, s *Shell, args []string) error {
				if err := s.app.Voice.SubmitText(ctx, args[0]); err != nil {
					return err
				}
				s.printResponse()
				return nil
			},
		},
		"listen": {
			usage: "listen",
			help:  "start or stop speech capture",
			run: func(ctx context.Context, s *Shell, args []string) error {
				if err := s.app.Voice.ToggleListening(ctx); err != nil {
					return err
				}
				if s.app.Voice.Listening() {
					fmt.Fprintln(s.out, "Listening...")
				} else if r := s.app.Voice.Response(); r != "" {
					fmt.Fprintln(s.out, r)
				}
				return nil
			},
		},
		"stop": {
			usage: "stop",
			help:  "stop speaking",
			run: func(ctx context.Context, s *Shell, args []string) error {
				s.app.Voice.StopSpeaking()
				return nil
			},
		},
		"commands": {
			usage: "commands",
			help:  "list what the assistant understands",
			run: func(ctx context.Context, s *Shell, args []string) error {
				for _, c := range s.app.Voice.Help(ctx) {
					fmt.Fprintf(s.out, "  %s\n", c)
				}
				return nil
			},
		},
		"endpoints": {
			usage: "endpoints",
			help:  "print the server routes and their JSON schemas",
			run:   runEndpoints,
		},
		"health": {
			usage: "health",
			help:  "check the server",
			run: func(ctx context.Context, s *Shell, args []string) error {
				if s.health == nil {
					return errors.New("health check is not available")
				}
				status, err := s.health.Health(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "server: %s\n", status)
				return nil
			},
		},
		"share": {
			usage: "share",
			help:  "post the shopping list to Slack",
			run:   runShare,
		},
		"run": {
			usage:   "run <file|s3://bucket/key>",
			help:    "send each line of a script to the assistant",
			minArgs: 1,
			run:     runScript,
		},
		"debug": {
			usage: "debug",
			help:  "dump client state",
			run: func(ctx context.Context, s *Shell, args []string) error {
				pantryassistant.Dump(s.out, "state",
					s.app.Tab().String(),
					s.app.InventoryItems(),
					s.app.CurrentRecipe(),
					s.app.ShoppingList(),
				)
				return nil
			},
		},
		"render": {
			usage: "render",
			help:  "draw the whole screen",
			run: func(ctx context.Context, s *Shell, args []string) error {
				s.app.Render(s.out)
				return nil
			},
		},
		"quit": {
			usage: "quit",
			help:  "exit",
			run: func(ctx context.Context, s *Shell, args []string) error {
				return ErrQuit
			},
		},
	}
}

func (s *Shell) show(t ui.Tab) error {
	if err := s.app.SetTab(t); err != nil {
		return err
	}
	switch t {
	case ui.TabInventory:
		s.app.Inventory.Render(s.out, s.app.InventoryItems())
	case ui.TabRecipe:
		s.app.Recipe.Render(s.out, s.app.CurrentRecipe())
	case ui.TabShopping:
		s.app.Shopping.Render(s.out, s.app.ShoppingList())
	}
	return nil
}

func (s *Shell) printResponse() {
	if r := s.app.Voice.Response(); r != "" {
		fmt.Fprintf(s.out, "Assistant: %s\n", r)
	}
}

func runAdd(ctx context.Context, s *Shell, args []string) error {
	var unit pantryassistant.Unit
	if len(args) > 2 {
		u, err := pantryassistant.ParseUnit(args[2])
		if err != nil {
			return err
		}
		unit = u
	}
	if err := s.app.Inventory.Add(ctx, args[0], args[1], unit); err != nil {
		return err
	}
	return s.show(ui.TabInventory)
}

func runRemove(ctx context.Context, s *Shell, args []string) error {
	var qty *float64
	if len(args) > 1 {
		v, err := ui.ParseQuantity(args[1])
		if err != nil {
			return err
		}
		qty = &v
	}
	if err := s.app.Inventory.Remove(ctx, args[0], qty); err != nil {
		return err
	}
	return s.show(ui.TabInventory)
}

func runThreshold(ctx context.Context, s *Shell, args []string) error {
	v, err := ui.ParseQuantity(args[1])
	if err != nil {
		return err
	}
	if err := s.app.Inventory.SetThreshold(ctx, args[0], v); err != nil {
		return err
	}
	return s.show(ui.TabShopping)
}

func runSuggest(ctx context.Context, s *Shell, args []string) error {
	servings, err := parseServings(args[0])
	if err != nil {
		return err
	}
	var prefs *string
	if len(args) > 1 {
		p := strings.Join(args[1:], " ")
		prefs = &p
	}
	if err := s.app.Recipe.SuggestWithPreferences(ctx, prefs, servings); err != nil {
		return err
	}
	return s.show(ui.TabRecipe)
}

// parseServings leaves range checks to the recipe view so the user sees
// its message.
func parseServings(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ui.ErrInvalidServings, arg)
	}
	return n, nil
}

func runEndpoints(ctx context.Context, s *Shell, args []string) error {
	if s.registry == nil {
		return errors.New("endpoint registry is not available")
	}
	data, err := json.MarshalIndent(s.registry.GetEndpoints(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal endpoints: %w", err)
	}
	fmt.Fprintln(s.out, string(data))
	return nil
}

func runShare(ctx context.Context, s *Shell, args []string) error {
	if s.share == nil || !s.share.Enabled() {
		return errors.New("sharing is not configured (set SLACK_WEBHOOK_URL)")
	}
	s.app.LoadShoppingList(ctx)
	if err := s.share.ShareShoppingList(ctx, s.app.ShoppingList()); err != nil {
		return fmt.Errorf("share shopping list: %w", err)
	}
	fmt.Fprintln(s.out, "Shopping list shared.")
	return nil
}

// runScript submits every command of a script in order. A failing command
// is reported and the rest still run.
func runScript(ctx context.Context, s *Shell, args []string) error {
	if s.scripts == nil {
		return errors.New("scripts are not available")
	}
	state, err := s.scripts.Open(ctx, args[0])
	if err != nil {
		return err
	}
	cmds, err := storage.LoadScript(ctx, state)
	if err != nil {
		return fmt.Errorf("load script %s: %w", args[0], err)
	}

	var errs []error
	for i, text := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "[%d/%d] %s\n", i+1, len(cmds), text)
		if err := s.app.Voice.SubmitScripted(ctx, text); err != nil {
			errs = append(errs, fmt.Errorf("command %d: %w", i+1, err))
			continue
		}
		s.printResponse()
	}
	return errors.Join(errs...)
}

package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"pantryassistant"
)

// RecipeState tracks the recipe view's progress.
type RecipeState uint8

const (
	RecipeNone RecipeState = iota
	RecipeSuggesting
	RecipeShown
	RecipeApplying
	RecipeApplied
)

func (s RecipeState) String() string {
	switch s {
	case RecipeNone:
		return "no-recipe"
	case RecipeSuggesting:
		return "suggesting"
	case RecipeShown:
		return "recipe-shown"
	case RecipeApplying:
		return "applying"
	case RecipeApplied:
		return "applied"
	}
	return fmt.Sprintf("RecipeState(%d)", uint8(s))
}

const defaultServings = 4

// RecipeView requests suggestions and applies the current recipe.
type RecipeView struct {
	api     API
	alerter Alerter

	current   func() *pantryassistant.Recipe
	onSuggest func(r *pantryassistant.Recipe)
	onApply   func(ctx context.Context)
	onClear   func()

	mu    sync.Mutex
	state RecipeState
}

type RecipeViewOpts struct {
	API     API
	Alerter Alerter
	// Current returns the recipe held by the controller.
	Current   func() *pantryassistant.Recipe
	OnSuggest func(r *pantryassistant.Recipe)
	OnApply   func(ctx context.Context)
	OnClear   func()
}

func NewRecipeView(opts RecipeViewOpts) *RecipeView {
	return &RecipeView{
		api:       opts.API,
		alerter:   opts.Alerter,
		current:   opts.Current,
		onSuggest: opts.OnSuggest,
		onApply:   opts.OnApply,
		onClear:   opts.OnClear,
	}
}

func (v *RecipeView) State() RecipeState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *RecipeView) setState(s RecipeState) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
}

// shown is called by the controller whenever a recipe is set from outside
// the view, e.g. by a voice command.
func (v *RecipeView) shown() { v.setState(RecipeShown) }

func (v *RecipeView) reset() {
	v.setState(RecipeNone)
	v.onClear()
}

// Suggest asks the server for a recipe for servings people.
func (v *RecipeView) Suggest(ctx context.Context, servings int) error {
	return v.SuggestWithPreferences(ctx, nil, servings)
}

func (v *RecipeView) SuggestWithPreferences(ctx context.Context, preferences *string, servings int) error {
	if servings < 1 {
		v.alerter.Alert("Please enter a valid number of people (at least 1).")
		return ErrInvalidServings
	}

	v.setState(RecipeSuggesting)
	recipe, err := v.api.SuggestRecipe(ctx, preferences, servings)
	if err != nil {
		slog.Error("APP: Error suggesting recipe", "servings", servings, "error", err)
		v.alerter.Alert("Error suggesting recipe. Please try again.")
		v.reset()
		return err
	}

	v.onSuggest(recipe)
	return nil
}

// Apply removes the current recipe's ingredients, scaled to servings, from
// the inventory.
func (v *RecipeView) Apply(ctx context.Context, servings int) error {
	recipe := v.current()
	if recipe == nil || recipe.Name == "" {
		v.alerter.Alert("No recipe selected to apply")
		return ErrNoRecipe
	}
	if servings < 1 {
		v.alerter.Alert("Please enter a valid number of people (at least 1).")
		return ErrInvalidServings
	}

	v.setState(RecipeApplying)
	if err := v.api.ApplyRecipe(ctx, recipe.Name, servings); err != nil {
		slog.Error("APP: Error applying recipe", "recipe", recipe.Name, "error", err)
		v.alerter.Alert("Error applying recipe. Please try again.")
		v.reset()
		return err
	}

	v.setState(RecipeApplied)
	v.alerter.Alert("Recipe applied! Ingredients have been removed from inventory.")
	v.onApply(ctx)
	return nil
}

func (v *RecipeView) Render(w io.Writer, recipe *pantryassistant.Recipe) {
	fmt.Fprintln(w, "== Recipe Suggestion ==")
	if v.State() == RecipeSuggesting {
		fmt.Fprintln(w, "Finding a recipe...")
		return
	}
	if recipe == nil {
		fmt.Fprintln(w, "No recipe yet. Ask for a suggestion to get a recipe based on your available ingredients!")
		return
	}

	servings := recipe.Servings
	if servings == 0 {
		servings = defaultServings
	}

	fmt.Fprintln(w, recipe.Name)
	if recipe.Description != "" {
		fmt.Fprintln(w, recipe.Description)
	}
	fmt.Fprintf(w, "Serves: %d\n", servings)

	fmt.Fprintln(w, "Ingredients:")
	for _, ing := range recipe.Ingredients {
		unit := ing.Unit
		if unit == "" {
			unit = pantryassistant.UnitUnits
		}
		fmt.Fprintf(w, "  - %s %s of %s\n", formatQty(ing.Quantity), unit, ing.Name)
	}

	fmt.Fprintln(w, "Instructions:")
	for i, step := range recipe.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}

	if v.State() == RecipeApplied {
		fmt.Fprintln(w, "(applied)")
	}
}

package ui

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantryassistant"
)

func pancakes() *pantryassistant.Recipe {
	return &pantryassistant.Recipe{
		Name:        "Pancakes",
		Description: "Fluffy breakfast pancakes",
		Servings:    2,
		Ingredients: []pantryassistant.RecipeIngredient{
			{Name: "flour", Quantity: 1.5, Unit: pantryassistant.UnitCups},
			{Name: "eggs", Quantity: 2},
		},
		Instructions: []string{"Mix", "Cook"},
	}
}

func TestRecipeView_SuggestRejectsServings(t *testing.T) {
	for _, servings := range []int{0, -1, -20} {
		api := &fakeAPI{recipe: pancakes()}
		alerts := &recordingAlerter{}
		app := NewApp(api, AppOpts{Alerter: alerts})

		err := app.Recipe.Suggest(context.Background(), servings)
		assert.ErrorIs(t, err, ErrInvalidServings)
		assert.Empty(t, api.suggestCalls, "servings %d must not reach the server", servings)
		assert.Equal(t, []string{"Please enter a valid number of people (at least 1)."}, alerts.all())
		assert.Equal(t, RecipeNone, app.Recipe.State())
	}
}

func TestRecipeView_SuggestSuccess(t *testing.T) {
	api := &fakeAPI{recipe: pancakes()}
	app := NewApp(api, AppOpts{})

	require.NoError(t, app.Recipe.Suggest(context.Background(), 3))

	assert.Equal(t, []int{3}, api.suggestCalls)
	assert.Equal(t, "Pancakes", app.CurrentRecipe().Name)
	assert.Equal(t, RecipeShown, app.Recipe.State())
	assert.Equal(t, TabRecipe, app.Tab())
}

func TestRecipeView_SuggestFailureClearsRecipe(t *testing.T) {
	api := &fakeAPI{recipe: pancakes()}
	alerts := &recordingAlerter{}
	app := NewApp(api, AppOpts{Alerter: alerts})
	require.NoError(t, app.Recipe.Suggest(context.Background(), 2))

	api.writeErr = errNetwork
	assert.ErrorIs(t, app.Recipe.Suggest(context.Background(), 2), errNetwork)

	assert.Nil(t, app.CurrentRecipe())
	assert.Equal(t, RecipeNone, app.Recipe.State())
	assert.Equal(t, []string{"Error suggesting recipe. Please try again."}, alerts.all())
}

func TestRecipeView_Apply(t *testing.T) {
	t.Run("no recipe", func(t *testing.T) {
		api := &fakeAPI{}
		alerts := &recordingAlerter{}
		app := NewApp(api, AppOpts{Alerter: alerts})

		assert.ErrorIs(t, app.Recipe.Apply(context.Background(), 4), ErrNoRecipe)
		assert.Empty(t, api.applies)
		assert.Equal(t, []string{"No recipe selected to apply"}, alerts.all())
	})

	t.Run("invalid servings", func(t *testing.T) {
		api := &fakeAPI{}
		app := NewApp(api, AppOpts{})
		app.ShowRecipe(pancakes())

		assert.ErrorIs(t, app.Recipe.Apply(context.Background(), 0), ErrInvalidServings)
		assert.Empty(t, api.applies)
		assert.Equal(t, RecipeShown, app.Recipe.State())
	})

	t.Run("success", func(t *testing.T) {
		api := &fakeAPI{}
		alerts := &recordingAlerter{}
		app := NewApp(api, AppOpts{Alerter: alerts})
		app.ShowRecipe(pancakes())

		require.NoError(t, app.Recipe.Apply(context.Background(), 6))

		assert.Equal(t, []applyCall{{Name: "Pancakes", Servings: 6}}, api.applies)
		assert.Equal(t, RecipeApplied, app.Recipe.State())
		assert.Equal(t, []string{"Recipe applied! Ingredients have been removed from inventory."}, alerts.all())
		inv, shop := api.counts()
		assert.Equal(t, 1, inv)
		assert.Equal(t, 1, shop)
		assert.NotNil(t, app.CurrentRecipe(), "applied recipe stays visible")
	})

	t.Run("failure", func(t *testing.T) {
		api := &fakeAPI{writeErr: errNetwork}
		alerts := &recordingAlerter{}
		app := NewApp(api, AppOpts{Alerter: alerts})
		app.ShowRecipe(pancakes())

		assert.Error(t, app.Recipe.Apply(context.Background(), 2))
		assert.Equal(t, []string{"Error applying recipe. Please try again."}, alerts.all())
		assert.Equal(t, RecipeNone, app.Recipe.State())
		assert.Nil(t, app.CurrentRecipe())
		inv, _ := api.counts()
		assert.Zero(t, inv)
	})
}

func TestRecipeView_Render(t *testing.T) {
	app := NewApp(&fakeAPI{}, AppOpts{})

	var buf bytes.Buffer
	app.Recipe.Render(&buf, nil)
	assert.Contains(t, buf.String(), "No recipe yet.")

	r := pancakes()
	r.Servings = 0
	buf.Reset()
	app.Recipe.Render(&buf, r)
	out := buf.String()
	assert.Contains(t, out, "Serves: 4")
	assert.Contains(t, out, "  - 1.5 cups of flour\n")
	assert.Contains(t, out, "  - 2 units of eggs\n")
	assert.Contains(t, out, "  2. Cook\n")
}

func TestRecipeState_String(t *testing.T) {
	assert.Equal(t, "no-recipe", RecipeNone.String())
	assert.Equal(t, "applied", RecipeApplied.String())
	assert.Equal(t, "RecipeState(42)", RecipeState(42).String())
}

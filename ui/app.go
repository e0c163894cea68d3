package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"pantryassistant"
	"pantryassistant/speech"
)

// App is the root controller. It owns the inventory, current recipe,
// shopping list and active tab, and reloads them after mutations. Failed
// background loads are logged and leave the previous data in place.
type App struct {
	api API

	Inventory *InventoryView
	Recipe    *RecipeView
	Shopping  ShoppingView
	Voice     *VoiceAssistant

	mu        sync.Mutex
	inventory []pantryassistant.InventoryItem
	recipe    *pantryassistant.Recipe
	shopping  []pantryassistant.ShoppingListEntry
	loading   int
	tab       Tab
}

type AppOpts struct {
	Alerter     Alerter
	Recognizer  speech.Recognizer
	Synthesizer speech.Synthesizer
	Logger      pantryassistant.CommandLogger
	VoiceRate   float64
}

func NewApp(api API, opts AppOpts) *App {
	app := &App{
		api:       api,
		inventory: make([]pantryassistant.InventoryItem, 0),
		shopping:  make([]pantryassistant.ShoppingListEntry, 0),
		tab:       TabInventory,
	}

	alerter := opts.Alerter
	if alerter == nil {
		alerter = NewWriterAlerter(io.Discard)
	}

	app.Inventory = NewInventoryView(api, alerter, app.HandleInventoryUpdate)
	app.Recipe = NewRecipeView(RecipeViewOpts{
		API:       api,
		Alerter:   alerter,
		Current:   app.CurrentRecipe,
		OnSuggest: app.ShowRecipe,
		OnApply:   app.HandleInventoryUpdate,
		OnClear:   app.clearRecipe,
	})
	app.Voice = NewVoiceAssistant(VoiceAssistantOpts{
		API:         api,
		Recognizer:  opts.Recognizer,
		Synthesizer: opts.Synthesizer,
		Logger:      opts.Logger,
		Rate:        opts.VoiceRate,
		Handlers: VoiceHandlers{
			OnInventoryUpdate:    app.HandleInventoryUpdate,
			OnRecipeUpdate:       app.ShowRecipe,
			OnShoppingListUpdate: app.LoadShoppingList,
		},
	})
	return app
}

// Mount loads inventory and shopping list concurrently and prepares the
// voice assistant.
func (a *App) Mount(ctx context.Context) {
	a.Voice.Mount()
	a.reloadAll(ctx)
}

func (a *App) Unmount() {
	a.Voice.Unmount()
}

func (a *App) reloadAll(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.LoadInventory(ctx)
	}()
	go func() {
		defer wg.Done()
		a.LoadShoppingList(ctx)
	}()
	wg.Wait()
}

func (a *App) LoadInventory(ctx context.Context) {
	a.mu.Lock()
	a.loading++
	a.mu.Unlock()

	items, err := a.api.Inventory(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading--
	if err != nil {
		slog.Error("APP: Error loading inventory", "error", err)
		return
	}
	a.inventory = items
}

func (a *App) LoadShoppingList(ctx context.Context) {
	list, err := a.api.ShoppingList(ctx)
	if err != nil {
		slog.Error("APP: Error loading shopping list", "error", err)
		return
	}
	a.mu.Lock()
	a.shopping = list
	a.mu.Unlock()
}

// HandleInventoryUpdate reloads inventory and shopping list after a mutation.
func (a *App) HandleInventoryUpdate(ctx context.Context) {
	a.reloadAll(ctx)
}

// ShowRecipe replaces the current recipe and switches to the recipe tab.
func (a *App) ShowRecipe(r *pantryassistant.Recipe) {
	a.mu.Lock()
	a.recipe = r
	a.tab = TabRecipe
	a.mu.Unlock()
	a.Recipe.shown()
}

func (a *App) clearRecipe() {
	a.mu.Lock()
	a.recipe = nil
	a.mu.Unlock()
}

func (a *App) SetTab(t Tab) error {
	if !t.valid() {
		return fmt.Errorf("unknown tab %s", t)
	}
	a.mu.Lock()
	a.tab = t
	a.mu.Unlock()
	return nil
}

func (a *App) Tab() Tab {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tab
}

func (a *App) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading > 0
}

func (a *App) CurrentRecipe() *pantryassistant.Recipe {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recipe
}

func (a *App) InventoryItems() []pantryassistant.InventoryItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]pantryassistant.InventoryItem(nil), a.inventory...)
}

func (a *App) ShoppingList() []pantryassistant.ShoppingListEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]pantryassistant.ShoppingListEntry(nil), a.shopping...)
}

// Render writes the voice panel, the tab bar and the active tab.
func (a *App) Render(w io.Writer) {
	fmt.Fprintln(w, "Agentic Shopping Assistant")
	fmt.Fprintln(w, "Smart inventory management and recipe suggestions")
	fmt.Fprintln(w)

	a.Voice.Render(w)
	fmt.Fprintln(w)

	tab := a.Tab()
	for i, t := range Tabs {
		if i > 0 {
			fmt.Fprint(w, " | ")
		}
		if t == tab {
			fmt.Fprintf(w, "[%s]", t.Title())
		} else {
			fmt.Fprint(w, t.Title())
		}
	}
	fmt.Fprintln(w)

	if a.Loading() {
		fmt.Fprintln(w, "Loading...")
	}

	switch tab {
	case TabInventory:
		a.Inventory.Render(w, a.InventoryItems())
	case TabRecipe:
		a.Recipe.Render(w, a.CurrentRecipe())
	case TabShopping:
		a.Shopping.Render(w, a.ShoppingList())
	}
}

package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"pantryassistant"
)

// AddItemForm is the draft of the add-item form.
type AddItemForm struct {
	Name     string
	Quantity string
	Unit     pantryassistant.Unit
}

// InventoryView lists items and adds or removes them.
type InventoryView struct {
	api      API
	alerter  Alerter
	onUpdate func(ctx context.Context)

	mu    sync.Mutex
	draft AddItemForm
}

func NewInventoryView(api API, alerter Alerter, onUpdate func(ctx context.Context)) *InventoryView {
	return &InventoryView{
		api:      api,
		alerter:  alerter,
		onUpdate: onUpdate,
		draft:    AddItemForm{Unit: pantryassistant.UnitUnits},
	}
}

// Draft returns the current form contents.
func (v *InventoryView) Draft() AddItemForm {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft
}

// Add submits the form. Name is required and quantity must parse as a
// finite number; otherwise nothing is sent. On success the form is
// cleared and a reload is requested.
func (v *InventoryView) Add(ctx context.Context, name, quantity string, unit pantryassistant.Unit) error {
	if unit == "" {
		unit = pantryassistant.UnitUnits
	}
	v.mu.Lock()
	v.draft = AddItemForm{Name: name, Quantity: quantity, Unit: unit}
	v.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	qty, err := ParseQuantity(quantity)
	if err != nil {
		return err
	}

	if err := v.api.AddItem(ctx, name, qty, unit); err != nil {
		slog.Error("APP: Error adding item", "item", name, "error", err)
		v.alerter.Alert("Error adding item. Please try again.")
		return err
	}

	v.mu.Lock()
	v.draft = AddItemForm{Unit: pantryassistant.UnitUnits}
	v.mu.Unlock()

	v.onUpdate(ctx)
	return nil
}

// Remove takes quantity of name out of the inventory. A nil quantity
// removes the item entirely.
func (v *InventoryView) Remove(ctx context.Context, name string, quantity *float64) error {
	if err := v.api.RemoveItem(ctx, name, quantity); err != nil {
		slog.Error("APP: Error removing item", "item", name, "error", err)
		v.alerter.Alert("Error removing item. Please try again.")
		return err
	}
	v.onUpdate(ctx)
	return nil
}

// SetThreshold changes the low-stock threshold used for the shopping list.
func (v *InventoryView) SetThreshold(ctx context.Context, name string, threshold float64) error {
	if err := v.api.UpdateThreshold(ctx, name, threshold); err != nil {
		slog.Error("APP: Error updating threshold", "item", name, "error", err)
		v.alerter.Alert("Error updating threshold. Please try again.")
		return err
	}
	v.onUpdate(ctx)
	return nil
}

func (v *InventoryView) Render(w io.Writer, items []pantryassistant.InventoryItem) {
	fmt.Fprintln(w, "== Inventory ==")
	if len(items) == 0 {
		fmt.Fprintln(w, "Your inventory is empty. Add some items to get started!")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "- %s: %s %s\n", it.Name, formatQty(it.Quantity), it.Unit)
	}
}

// ParseQuantity parses a user-entered amount. NaN and infinities are
// rejected along with anything strconv cannot parse.
func ParseQuantity(s string) (float64, error) {
	qty, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return qty, nil
}

// Package ui holds the client's controller and views. Views render plain
// text to an io.Writer and report user-facing failures through an Alerter.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"pantryassistant"
)

// API is the subset of the server client the views call.
type API interface {
	Inventory(ctx context.Context) ([]pantryassistant.InventoryItem, error)
	AddItem(ctx context.Context, name string, quantity float64, unit pantryassistant.Unit) error
	RemoveItem(ctx context.Context, name string, quantity *float64) error
	SuggestRecipe(ctx context.Context, preferences *string, servings int) (*pantryassistant.Recipe, error)
	ApplyRecipe(ctx context.Context, name string, servings int) error
	ShoppingList(ctx context.Context) ([]pantryassistant.ShoppingListEntry, error)
	UpdateThreshold(ctx context.Context, name string, threshold float64) error
	ProcessVoice(ctx context.Context, text string) (*pantryassistant.VoiceResponse, error)
	SupportedCommands(ctx context.Context) ([]string, error)
}

// Alerter shows a blocking, user-facing message.
type Alerter interface {
	Alert(msg string)
}

// WriterAlerter prints alerts as "! msg" lines.
type WriterAlerter struct {
	w io.Writer
}

func NewWriterAlerter(w io.Writer) *WriterAlerter {
	return &WriterAlerter{w: w}
}

func (a *WriterAlerter) Alert(msg string) {
	fmt.Fprintf(a.w, "! %s\n", msg)
}

var (
	ErrEmptyName       = errors.New("item name is required")
	ErrInvalidQuantity = errors.New("quantity must be a number")
	ErrInvalidServings = errors.New("servings must be at least 1")
	ErrNoRecipe        = errors.New("no recipe selected")
	ErrMicDisabled     = errors.New("microphone is disabled while the assistant is speaking")
)

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package ui

import (
	"fmt"
	"io"
	"strings"

	"pantryassistant"
)

// ShoppingRow is the display form of one shopping list entry.
type ShoppingRow struct {
	Name         string
	Current      string
	Threshold    string
	Suggested    string
	HighPriority bool
}

// ShoppingRows formats entries for display. Threshold is left empty when
// the entry has none.
func ShoppingRows(entries []pantryassistant.ShoppingListEntry) []ShoppingRow {
	rows := make([]ShoppingRow, 0, len(entries))
	for _, e := range entries {
		row := ShoppingRow{
			Name:         e.Name,
			Current:      formatQty(e.CurrentQuantity) + " " + string(e.Unit),
			Suggested:    formatQty(e.SuggestedQuantity) + " " + string(e.Unit),
			HighPriority: e.Priority == pantryassistant.PriorityHigh,
		}
		if e.Threshold > 0 {
			row.Threshold = formatQty(e.Threshold) + " " + string(e.Unit)
		}
		rows = append(rows, row)
	}
	return rows
}

const allGoodMessage = "Great! You have all the items you need. Your inventory looks good!"

// ShoppingView renders the shopping list. It has no mutations.
type ShoppingView struct{}

func (ShoppingView) Render(w io.Writer, entries []pantryassistant.ShoppingListEntry) {
	fmt.Fprintln(w, "== Shopping List ==")
	fmt.Fprint(w, FormatShoppingList(entries))
}

// FormatShoppingList renders entries as plain text, one block per row.
func FormatShoppingList(entries []pantryassistant.ShoppingListEntry) string {
	if len(entries) == 0 {
		return allGoodMessage + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d item(s) needed\n", len(entries))
	for _, row := range ShoppingRows(entries) {
		if row.HighPriority {
			fmt.Fprintf(&b, "* %s [HIGH PRIORITY]\n", row.Name)
		} else {
			fmt.Fprintf(&b, "* %s\n", row.Name)
		}
		fmt.Fprintf(&b, "    Current: %s", row.Current)
		if row.Threshold != "" {
			fmt.Fprintf(&b, "  Threshold: %s", row.Threshold)
		}
		fmt.Fprintf(&b, "\n    Suggested: %s\n", row.Suggested)
	}
	return b.String()
}

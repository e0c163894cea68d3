package ui

import "fmt"

// Tab selects the view shown in the main area.
type Tab uint8

const (
	TabInventory Tab = iota
	TabRecipe
	TabShopping
)

// Tabs lists every tab in navigation order.
var Tabs = []Tab{TabInventory, TabRecipe, TabShopping}

func (t Tab) String() string {
	switch t {
	case TabInventory:
		return "inventory"
	case TabRecipe:
		return "recipe"
	case TabShopping:
		return "shopping"
	}
	return fmt.Sprintf("Tab(%d)", uint8(t))
}

// Title is the label shown in the navigation bar.
func (t Tab) Title() string {
	switch t {
	case TabInventory:
		return "Inventory"
	case TabRecipe:
		return "Recipe"
	case TabShopping:
		return "Shopping List"
	}
	return t.String()
}

func (t Tab) valid() bool { return t <= TabShopping }

func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tab %q", s)
}

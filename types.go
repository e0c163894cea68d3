package pantryassistant

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Unit is the measurement unit of an inventory item. The server accepts any
// string; the client offers the set below.
type Unit string

const (
	UnitUnits       Unit = "units"
	UnitCups        Unit = "cups"
	UnitGrams       Unit = "grams"
	UnitKilograms   Unit = "kilograms"
	UnitLiters      Unit = "liters"
	UnitPieces      Unit = "pieces"
	UnitTablespoons Unit = "tablespoons"
	UnitBottles     Unit = "bottles"
	UnitCloves      Unit = "cloves"
	UnitHead        Unit = "head"
	UnitLoaf        Unit = "loaf"
)

// Units lists the units offered by the add-item form, in display order.
var Units = []Unit{
	UnitUnits, UnitCups, UnitGrams, UnitKilograms, UnitLiters, UnitPieces,
	UnitTablespoons, UnitBottles, UnitCloves, UnitHead, UnitLoaf,
}

// ParseUnit maps a form value onto a Unit. An empty value selects UnitUnits.
func ParseUnit(s string) (Unit, error) {
	if s == "" {
		return UnitUnits, nil
	}
	for _, u := range Units {
		if string(u) == s {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

// InventoryItem mirrors one row of GET /api/inventory.
type InventoryItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
}

type RecipeIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit,omitempty"`
}

type Recipe struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Servings     int                `json:"servings,omitempty"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
}

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ShoppingListEntry is a server-computed shortfall for one item.
type ShoppingListEntry struct {
	Name              string   `json:"name"`
	CurrentQuantity   float64  `json:"current_quantity"`
	Unit              Unit     `json:"unit"`
	Threshold         float64  `json:"threshold"`
	SuggestedQuantity float64  `json:"suggested_quantity"`
	Priority          Priority `json:"priority"`
}

// Action tags which view refresh a voice reply asks for.
type Action string

const (
	ActionNone             Action = ""
	ActionInventoryUpdated Action = "inventory_updated"
	ActionRecipeSuggested  Action = "recipe_suggested"
	ActionShoppingList     Action = "shopping_list"
	ActionInventoryList    Action = "inventory_list"
)

// VoiceResponse is the reply of POST /api/voice/process. Data is kept raw
// because its shape depends on Action.
type VoiceResponse struct {
	Text   string          `json:"text"`
	Action Action          `json:"action,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Recipe decodes Data for a recipe_suggested reply.
func (vr *VoiceResponse) Recipe() (*Recipe, error) {
	if len(vr.Data) == 0 || string(vr.Data) == "null" {
		return nil, fmt.Errorf("voice response carries no recipe")
	}
	var r Recipe
	if err := json.Unmarshal(vr.Data, &r); err != nil {
		return nil, fmt.Errorf("decode recipe payload: %w", err)
	}
	return &r, nil
}

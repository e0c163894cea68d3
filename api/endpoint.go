package api

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const (
	EndpointHealth            = "health"
	EndpointInventory         = "inventory_list"
	EndpointInventoryAdd      = "inventory_add"
	EndpointInventoryRemove   = "inventory_remove"
	EndpointSuggestRecipe     = "planner_suggest_recipe"
	EndpointApplyRecipe       = "planner_apply_recipe"
	EndpointShoppingList      = "shopping_list"
	EndpointUpdateThreshold   = "shopping_update_threshold"
	EndpointVoiceProcess      = "voice_process"
	EndpointSupportedCommands = "voice_supported_commands"
)

// Endpoint describes one server route and the JSON it exchanges.
// Request is nil for routes without a body.
type Endpoint struct {
	Name     string             `json:"name"`
	Title    string             `json:"title"`
	Method   string             `json:"method"`
	Path     string             `json:"path"`
	Request  *jsonschema.Schema `json:"request,omitempty"`
	Response *jsonschema.Schema `json:"response"`
}

// URL joins the endpoint path onto base, substituting {param} segments.
func (e Endpoint) URL(base string, params map[string]string) (string, error) {
	path := e.Path
	for k, v := range params {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("endpoint %q: unresolved path parameter in %s", e.Name, path)
	}
	return strings.TrimRight(base, "/") + path, nil
}

// Registry maps endpoint names to their definitions
type Registry map[string]Endpoint

// NewRegistry returns the registry of every route the client talks to.
func NewRegistry() *Registry {
	endpoints := []Endpoint{
		{
			Name: EndpointHealth, Title: "Health check",
			Method: http.MethodGet, Path: "/health",
			Response: object(map[string]*jsonschema.Schema{"status": str()}, "status"),
		},
		{
			Name: EndpointInventory, Title: "List inventory",
			Method: http.MethodGet, Path: "/api/inventory",
			Response: object(map[string]*jsonschema.Schema{"inventory": array(inventoryItemSchema())}, "inventory"),
		},
		{
			Name: EndpointInventoryAdd, Title: "Add inventory item",
			Method: http.MethodPost, Path: "/api/inventory/add",
			Request: object(map[string]*jsonschema.Schema{
				"item_name": str(),
				"quantity":  num(),
				"unit":      unitSchema(),
			}, "item_name", "quantity"),
			Response: object(map[string]*jsonschema.Schema{"message": str()}),
		},
		{
			Name: EndpointInventoryRemove, Title: "Remove inventory item",
			Method: http.MethodPost, Path: "/api/inventory/remove",
			Request: object(map[string]*jsonschema.Schema{
				"item_name": str(),
				"quantity":  {Types: []string{"number", "null"}, Description: "null removes the whole item"},
			}, "item_name"),
			Response: object(map[string]*jsonschema.Schema{"message": str()}),
		},
		{
			Name: EndpointSuggestRecipe, Title: "Suggest recipe",
			Method: http.MethodPost, Path: "/api/planner/suggest-recipe",
			Request: object(map[string]*jsonschema.Schema{
				"preferences": {Types: []string{"string", "null"}},
				"servings":    positiveInt(),
			}, "servings"),
			Response: object(map[string]*jsonschema.Schema{"recipe": recipeSchema()}, "recipe"),
		},
		{
			Name: EndpointApplyRecipe, Title: "Apply recipe",
			Method: http.MethodPost, Path: "/api/planner/apply-recipe",
			Request: object(map[string]*jsonschema.Schema{
				"recipe_name": str(),
				"servings":    positiveInt(),
			}, "recipe_name"),
			Response: object(map[string]*jsonschema.Schema{"message": str()}),
		},
		{
			Name: EndpointShoppingList, Title: "Shopping list",
			Method: http.MethodGet, Path: "/api/shopping/list",
			Response: object(map[string]*jsonschema.Schema{"shopping_list": array(shoppingEntrySchema())}, "shopping_list"),
		},
		{
			Name: EndpointUpdateThreshold, Title: "Update low-stock threshold",
			Method: http.MethodPost, Path: "/api/shopping/update-threshold/{item_name}",
			Response: object(map[string]*jsonschema.Schema{"message": str()}),
		},
		{
			Name: EndpointVoiceProcess, Title: "Process voice command",
			Method: http.MethodPost, Path: "/api/voice/process",
			Request: object(map[string]*jsonschema.Schema{"text": str()}, "text"),
			Response: object(map[string]*jsonschema.Schema{
				"text":   str(),
				"action": {Types: []string{"string", "null"}},
				"data":   {Types: []string{"object", "array", "null"}},
			}, "text"),
		},
		{
			Name: EndpointSupportedCommands, Title: "Supported voice commands",
			Method: http.MethodGet, Path: "/api/voice/supported-commands",
			Response: object(map[string]*jsonschema.Schema{"commands": array(str())}, "commands"),
		},
	}

	r := make(Registry, len(endpoints))
	for _, e := range endpoints {
		r[e.Name] = e
	}
	return &r
}

// GetEndpoints returns all endpoints sorted by name
func (r *Registry) GetEndpoints() []Endpoint {
	out := make([]Endpoint, 0, len(*r))
	for _, e := range *r {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetEndpoint retrieves an endpoint by name from the registry
func (r Registry) GetEndpoint(name string) (Endpoint, error) {
	e, exists := r[name]
	if !exists {
		return Endpoint{}, fmt.Errorf("endpoint %q not found in registry", name)
	}
	return e, nil
}

func object(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func array(items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: items}
}

func str() *jsonschema.Schema { return &jsonschema.Schema{Type: "string"} }
func num() *jsonschema.Schema { return &jsonschema.Schema{Type: "number"} }

func positiveInt() *jsonschema.Schema {
	min := 1.0
	return &jsonschema.Schema{Type: "integer", Minimum: &min}
}

func unitSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: "measurement unit, defaults to units"}
}

func inventoryItemSchema() *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"id":       {Type: "integer"},
		"name":     str(),
		"quantity": num(),
		"unit":     unitSchema(),
	}, "name", "quantity", "unit")
}

func recipeSchema() *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"name":        str(),
		"description": str(),
		"servings":    positiveInt(),
		"ingredients": array(object(map[string]*jsonschema.Schema{
			"name":     str(),
			"quantity": num(),
			"unit":     unitSchema(),
		}, "name", "quantity")),
		"instructions": array(str()),
	}, "name", "ingredients", "instructions")
}

func shoppingEntrySchema() *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"name":               str(),
		"current_quantity":   num(),
		"unit":               unitSchema(),
		"threshold":          num(),
		"suggested_quantity": num(),
		"priority":           {Type: "string", Enum: []any{"normal", "high"}},
	}, "name", "current_quantity", "unit", "suggested_quantity", "priority")
}

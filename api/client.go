package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"pantryassistant"
)

// DefaultBaseURL is used when no API_URL override is configured.
const DefaultBaseURL = "http://localhost:8000"

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API: %s: %s: %s", e.Endpoint, e.Status, e.Body)
}

// Client is a stateless set of request builders, one per server endpoint.
type Client struct {
	baseURL    string
	httpClient pantryassistant.HTTPClient
	registry   *Registry
}

type ClientOpts struct {
	BaseURL    string
	HTTPClient pantryassistant.HTTPClient
	Registry   *Registry
}

func NewClient(opts ClientOpts) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", base)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	return &Client{baseURL: base, httpClient: hc, registry: reg}, nil
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Registry returns the endpoint registry used to build requests.
func (c *Client) Registry() *Registry { return c.registry }

type addItemRequest struct {
	ItemName string               `json:"item_name"`
	Quantity float64              `json:"quantity"`
	Unit     pantryassistant.Unit `json:"unit"`
}

type removeItemRequest struct {
	ItemName string   `json:"item_name"`
	Quantity *float64 `json:"quantity"`
}

type suggestRecipeRequest struct {
	Preferences *string `json:"preferences"`
	Servings    int     `json:"servings"`
}

type applyRecipeRequest struct {
	RecipeName string `json:"recipe_name"`
	Servings   *int   `json:"servings,omitempty"`
}

type voiceRequest struct {
	Text string `json:"text"`
}

func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, EndpointHealth, nil, nil, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) Inventory(ctx context.Context) ([]pantryassistant.InventoryItem, error) {
	var out struct {
		Inventory []pantryassistant.InventoryItem `json:"inventory"`
	}
	if err := c.do(ctx, EndpointInventory, nil, nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Inventory == nil {
		out.Inventory = make([]pantryassistant.InventoryItem, 0)
	}
	return out.Inventory, nil
}

// AddItem adds quantity of name to the inventory. An empty unit is sent as "units".
func (c *Client) AddItem(ctx context.Context, name string, quantity float64, unit pantryassistant.Unit) error {
	if unit == "" {
		unit = pantryassistant.UnitUnits
	}
	return c.do(ctx, EndpointInventoryAdd, nil, nil, addItemRequest{ItemName: name, Quantity: quantity, Unit: unit}, nil)
}

// RemoveItem reduces name by quantity. A nil quantity removes the item entirely.
func (c *Client) RemoveItem(ctx context.Context, name string, quantity *float64) error {
	return c.do(ctx, EndpointInventoryRemove, nil, nil, removeItemRequest{ItemName: name, Quantity: quantity}, nil)
}

func (c *Client) SuggestRecipe(ctx context.Context, preferences *string, servings int) (*pantryassistant.Recipe, error) {
	var out struct {
		Recipe *pantryassistant.Recipe `json:"recipe"`
	}
	if err := c.do(ctx, EndpointSuggestRecipe, nil, nil, suggestRecipeRequest{Preferences: preferences, Servings: servings}, &out); err != nil {
		return nil, err
	}
	if out.Recipe == nil {
		return nil, fmt.Errorf("API: %s: response has no recipe", EndpointSuggestRecipe)
	}
	return out.Recipe, nil
}

// ApplyRecipe consumes the recipe's ingredients. servings <= 0 leaves
// scaling to the server default.
func (c *Client) ApplyRecipe(ctx context.Context, name string, servings int) error {
	req := applyRecipeRequest{RecipeName: name}
	if servings > 0 {
		req.Servings = &servings
	}
	return c.do(ctx, EndpointApplyRecipe, nil, nil, req, nil)
}

func (c *Client) ShoppingList(ctx context.Context) ([]pantryassistant.ShoppingListEntry, error) {
	var out struct {
		ShoppingList []pantryassistant.ShoppingListEntry `json:"shopping_list"`
	}
	if err := c.do(ctx, EndpointShoppingList, nil, nil, nil, &out); err != nil {
		return nil, err
	}
	if out.ShoppingList == nil {
		out.ShoppingList = make([]pantryassistant.ShoppingListEntry, 0)
	}
	return out.ShoppingList, nil
}

func (c *Client) UpdateThreshold(ctx context.Context, name string, threshold float64) error {
	params := map[string]string{"item_name": name}
	query := url.Values{"threshold": {strconv.FormatFloat(threshold, 'f', -1, 64)}}
	return c.do(ctx, EndpointUpdateThreshold, params, query, nil, nil)
}

func (c *Client) ProcessVoice(ctx context.Context, text string) (*pantryassistant.VoiceResponse, error) {
	var out pantryassistant.VoiceResponse
	if err := c.do(ctx, EndpointVoiceProcess, nil, nil, voiceRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SupportedCommands(ctx context.Context) ([]string, error) {
	var out struct {
		Commands []string `json:"commands"`
	}
	if err := c.do(ctx, EndpointSupportedCommands, nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Commands, nil
}

// do sends one request for the named endpoint. Transport errors are
// returned as-is; non-2xx answers become *StatusError.
func (c *Client) do(ctx context.Context, name string, params map[string]string, query url.Values, body, out any) error {
	ep, err := c.registry.GetEndpoint(name)
	if err != nil {
		return err
	}
	target, err := ep.URL(c.baseURL, params)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("API: marshal %s request: %w", name, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	slog.Debug("API: request", "endpoint", name, "method", ep.Method, "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("API: read %s response: %w", name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Endpoint: name, StatusCode: resp.StatusCode, Status: resp.Status, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("API: decode %s response: %w", name, err)
	}
	return nil
}

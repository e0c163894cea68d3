package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantryassistant"
)

// recorded captures what the fake server received
type recorded struct {
	Method    string
	Path      string
	Query     string
	Body      map[string]any
	RawBody   string
	RequestID string
}

func newTestServer(t *testing.T, status int, reply string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec := recorded{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			RawBody:   string(b),
			RequestID: r.Header.Get("X-Request-ID"),
		}
		if len(b) > 0 {
			_ = json.Unmarshal(b, &rec.Body)
		}
		calls = append(calls, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(ClientOpts{BaseURL: baseURL, HTTPClient: http.DefaultClient})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{name: "default base url", base: "", want: "http://localhost:8000"},
		{name: "override", base: "https://pantry.example.com", want: "https://pantry.example.com"},
		{name: "unsupported scheme", base: "ftp://pantry", wantErr: true},
		{name: "unparseable", base: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(ClientOpts{BaseURL: tt.base})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.BaseURL())
			assert.NotNil(t, c.Registry())
		})
	}
}

func TestClient_Inventory(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"inventory":[
		{"id":1,"name":"flour","quantity":2.5,"unit":"cups"},
		{"id":2,"name":"eggs","quantity":6,"unit":"pieces"}
	]}`)
	c := newTestClient(t, srv.URL)

	items, err := c.Inventory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []pantryassistant.InventoryItem{
		{ID: 1, Name: "flour", Quantity: 2.5, Unit: pantryassistant.UnitCups},
		{ID: 2, Name: "eggs", Quantity: 6, Unit: pantryassistant.UnitPieces},
	}, items)
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodGet, (*calls)[0].Method)
	assert.Equal(t, "/api/inventory", (*calls)[0].Path)
	assert.NotEmpty(t, (*calls)[0].RequestID)
}

func TestClient_InventoryMissingField(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	items, err := c.Inventory(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClient_WriteRequests(t *testing.T) {
	half := 0.5
	prefs := "vegetarian"

	tests := []struct {
		name     string
		call     func(c *Client) error
		wantPath string
		wantBody map[string]any
		wantRaw  string
	}{
		{
			name:     "add item",
			call:     func(c *Client) error { return c.AddItem(context.Background(), "flour", 2, pantryassistant.UnitCups) },
			wantPath: "/api/inventory/add",
			wantBody: map[string]any{"item_name": "flour", "quantity": 2.0, "unit": "cups"},
		},
		{
			name:     "add item defaults unit",
			call:     func(c *Client) error { return c.AddItem(context.Background(), "salt", 1, "") },
			wantPath: "/api/inventory/add",
			wantBody: map[string]any{"item_name": "salt", "quantity": 1.0, "unit": "units"},
		},
		{
			name:     "remove with quantity",
			call:     func(c *Client) error { return c.RemoveItem(context.Background(), "milk", &half) },
			wantPath: "/api/inventory/remove",
			wantBody: map[string]any{"item_name": "milk", "quantity": 0.5},
		},
		{
			name:     "remove all sends explicit null",
			call:     func(c *Client) error { return c.RemoveItem(context.Background(), "milk", nil) },
			wantPath: "/api/inventory/remove",
			wantRaw:  `{"item_name":"milk","quantity":null}`,
		},
		{
			name:     "apply recipe with servings",
			call:     func(c *Client) error { return c.ApplyRecipe(context.Background(), "Pancakes", 3) },
			wantPath: "/api/planner/apply-recipe",
			wantBody: map[string]any{"recipe_name": "Pancakes", "servings": 3.0},
		},
		{
			name:     "apply recipe without servings omits field",
			call:     func(c *Client) error { return c.ApplyRecipe(context.Background(), "Pancakes", 0) },
			wantPath: "/api/planner/apply-recipe",
			wantRaw:  `{"recipe_name":"Pancakes"}`,
		},
		{
			name: "suggest recipe",
			call: func(c *Client) error {
				_, err := c.SuggestRecipe(context.Background(), &prefs, 2)
				return err
			},
			wantPath: "/api/planner/suggest-recipe",
			wantBody: map[string]any{"preferences": "vegetarian", "servings": 2.0},
		},
		{
			name: "suggest recipe without preferences",
			call: func(c *Client) error {
				_, err := c.SuggestRecipe(context.Background(), nil, 4)
				return err
			},
			wantPath: "/api/planner/suggest-recipe",
			wantRaw:  `{"preferences":null,"servings":4}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newTestServer(t, http.StatusOK, `{"message":"ok","recipe":{"name":"Pancakes","ingredients":[],"instructions":[]}}`)
			c := newTestClient(t, srv.URL)

			require.NoError(t, tt.call(c))
			require.Len(t, *calls, 1)
			got := (*calls)[0]
			assert.Equal(t, http.MethodPost, got.Method)
			assert.Equal(t, tt.wantPath, got.Path)
			if tt.wantBody != nil {
				assert.Equal(t, tt.wantBody, got.Body)
			}
			if tt.wantRaw != "" {
				assert.JSONEq(t, tt.wantRaw, got.RawBody)
			}
		})
	}
}

func TestClient_SuggestRecipe(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"recipe":{
		"name":"Omelette","description":"Quick","servings":2,
		"ingredients":[{"name":"eggs","quantity":3,"unit":"pieces"}],
		"instructions":["Whisk","Cook"]}}`)
	c := newTestClient(t, srv.URL)

	r, err := c.SuggestRecipe(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Equal(t, "Omelette", r.Name)
	assert.Equal(t, 2, r.Servings)
	assert.Equal(t, []string{"Whisk", "Cook"}, r.Instructions)
}

func TestClient_SuggestRecipeMissing(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"recipe":null}`)
	c := newTestClient(t, srv.URL)

	_, err := c.SuggestRecipe(context.Background(), nil, 2)
	assert.ErrorContains(t, err, "no recipe")
}

func TestClient_ShoppingList(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"shopping_list":[
		{"name":"Milk","current_quantity":0,"unit":"liters","threshold":1,"suggested_quantity":2,"priority":"high"}
	]}`)
	c := newTestClient(t, srv.URL)

	list, err := c.ShoppingList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []pantryassistant.ShoppingListEntry{{
		Name: "Milk", CurrentQuantity: 0, Unit: pantryassistant.UnitLiters,
		Threshold: 1, SuggestedQuantity: 2, Priority: pantryassistant.PriorityHigh,
	}}, list)
	assert.Equal(t, "/api/shopping/list", (*calls)[0].Path)
}

func TestClient_ProcessVoice(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"text":"Added 2 cups of flour.","action":"inventory_updated","data":{"name":"flour"}}`)
	c := newTestClient(t, srv.URL)

	resp, err := c.ProcessVoice(context.Background(), "add 2 cups of flour")
	require.NoError(t, err)
	assert.Equal(t, "Added 2 cups of flour.", resp.Text)
	assert.Equal(t, pantryassistant.ActionInventoryUpdated, resp.Action)
	assert.JSONEq(t, `{"name":"flour"}`, string(resp.Data))
	assert.Equal(t, map[string]any{"text": "add 2 cups of flour"}, (*calls)[0].Body)
}

func TestClient_UpdateThreshold(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"message":"Threshold updated"}`)
	c := newTestClient(t, srv.URL)

	require.NoError(t, c.UpdateThreshold(context.Background(), "olive oil", 1.5))
	got := (*calls)[0]
	assert.Equal(t, "/api/shopping/update-threshold/olive oil", got.Path)
	assert.Equal(t, "threshold=1.5", got.Query)
	assert.Empty(t, got.RawBody)
}

func TestClient_HealthAndCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status":"healthy"}`))
		case "/api/voice/supported-commands":
			_, _ = w.Write([]byte(`{"commands":["Suggest a recipe","What's my shopping list?"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	status, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status)

	cmds, err := c.SupportedCommands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Suggest a recipe", "What's my shopping list?"}, cmds)
}

func TestClient_StatusError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `{"detail":"Internal server error"}`)
	c := newTestClient(t, srv.URL)

	err := c.AddItem(context.Background(), "flour", 1, pantryassistant.UnitCups)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, EndpointInventoryAdd, se.Endpoint)
	assert.Contains(t, se.Error(), "Internal server error")
}

func TestClient_DecodeError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `not json`)
	c := newTestClient(t, srv.URL)

	_, err := c.ShoppingList(context.Background())
	assert.ErrorContains(t, err, "decode shopping_list response")
}

type mockDoer struct {
	err error
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	return nil, m.err
}

func TestClient_TransportErrorIsUnmodified(t *testing.T) {
	transportErr := errors.New("connection refused")
	c, err := NewClient(ClientOpts{HTTPClient: &mockDoer{err: transportErr}})
	require.NoError(t, err)

	_, err = c.Inventory(context.Background())
	assert.Same(t, transportErr, err)

	err = c.RemoveItem(context.Background(), "milk", nil)
	assert.Same(t, transportErr, err)
}

func TestClient_UnknownEndpoint(t *testing.T) {
	empty := Registry{}
	c, err := NewClient(ClientOpts{Registry: &empty, HTTPClient: &mockDoer{}})
	require.NoError(t, err)

	_, err = c.Health(context.Background())
	assert.ErrorContains(t, err, `endpoint "health" not found`)
}

func TestStatusError_Message(t *testing.T) {
	se := &StatusError{Endpoint: "inventory_list", StatusCode: 502, Status: "502 Bad Gateway", Body: "upstream"}
	assert.True(t, strings.HasPrefix(se.Error(), "API: inventory_list: 502 Bad Gateway"))
}

// Package slack shares the shopping list to a Slack channel through an
// incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"pantryassistant"
)

var ErrNoWebhook = errors.New("slack webhook URL is not configured")

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	webhookURL string
	channel    string
	httpClient doer
}

func NewClient(webhookURL, channel string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		channel:    channel,
		httpClient: httpClient,
	}
}

// Enabled reports whether a webhook is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.webhookURL != ""
}

func (c *Client) Channel() string {
	return c.channel
}

// PostMessage sends text to the configured channel.
func (c *Client) PostMessage(ctx context.Context, message string) error {
	if !c.Enabled() {
		return ErrNoWebhook
	}

	body := map[string]any{"text": message}
	if c.channel != "" {
		body["channel"] = c.channel
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if len(detail) > 0 {
			return fmt.Errorf("failed to post message: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
		}
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// ShareShoppingList posts the list formatted with Slack markup.
func (c *Client) ShareShoppingList(ctx context.Context, entries []pantryassistant.ShoppingListEntry) error {
	return c.PostMessage(ctx, FormatShoppingList(entries))
}

// FormatShoppingList renders entries as a Slack mrkdwn message.
func FormatShoppingList(entries []pantryassistant.ShoppingListEntry) string {
	if len(entries) == 0 {
		return ":white_check_mark: Nothing to buy, the pantry is stocked."
	}

	var b strings.Builder
	fmt.Fprintf(&b, ":shopping_trolley: *Shopping list* (%d %s)", len(entries), plural(len(entries), "item"))
	for _, e := range entries {
		b.WriteString("\n• ")
		if e.Priority == pantryassistant.PriorityHigh {
			fmt.Fprintf(&b, ":red_circle: *%s*", e.Name)
		} else {
			b.WriteString(e.Name)
		}
		fmt.Fprintf(&b, ": %s %s (have %s", qty(e.SuggestedQuantity), e.Unit, qty(e.CurrentQuantity))
		if e.Threshold > 0 {
			fmt.Fprintf(&b, ", threshold %s", qty(e.Threshold))
		}
		b.WriteString(")")
	}
	return b.String()
}

func qty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

package api

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"pantryassistant"
)

// InstrumentedClient wraps Client with a span and request metrics per call.
type InstrumentedClient struct {
	client *Client
	tracer trace.Tracer

	requests metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

func NewInstrumentedClient(client *Client, tracer trace.Tracer, meter metric.Meter) *InstrumentedClient {
	requests, _ := meter.Int64Counter("api_requests_total",
		metric.WithDescription("Total number of API requests issued"))
	failures, _ := meter.Int64Counter("api_requests_failed_total",
		metric.WithDescription("Total number of API requests that failed"))
	duration, _ := meter.Float64Histogram("api_request_duration_seconds",
		metric.WithDescription("Duration of API requests in seconds"))

	return &InstrumentedClient{
		client:   client,
		tracer:   tracer,
		requests: requests,
		failures: failures,
		duration: duration,
	}
}

func (c *InstrumentedClient) observe(ctx context.Context, endpoint string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := c.tracer.Start(ctx, "api."+endpoint, trace.WithAttributes(attrs...))
	defer span.End()

	epAttr := metric.WithAttributes(attribute.String("endpoint", endpoint))
	c.requests.Add(ctx, 1, epAttr)

	start := time.Now()
	err := fn(ctx)
	c.duration.Record(ctx, time.Since(start).Seconds(), epAttr)

	if err != nil {
		c.failures.Add(ctx, 1, epAttr)
		var se *StatusError
		if errors.As(err, &se) {
			span.SetAttributes(attribute.Int("http.status_code", se.StatusCode))
		}
		span.SetStatus(codes.Error, endpoint+" failed")
		span.RecordError(err)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *InstrumentedClient) Health(ctx context.Context) (status string, err error) {
	err = c.observe(ctx, EndpointHealth, func(ctx context.Context) error {
		status, err = c.client.Health(ctx)
		return err
	})
	return status, err
}

func (c *InstrumentedClient) Inventory(ctx context.Context) (items []pantryassistant.InventoryItem, err error) {
	err = c.observe(ctx, EndpointInventory, func(ctx context.Context) error {
		items, err = c.client.Inventory(ctx)
		return err
	})
	return items, err
}

func (c *InstrumentedClient) AddItem(ctx context.Context, name string, quantity float64, unit pantryassistant.Unit) error {
	return c.observe(ctx, EndpointInventoryAdd, func(ctx context.Context) error {
		return c.client.AddItem(ctx, name, quantity, unit)
	}, attribute.String("item.name", name), attribute.Float64("item.quantity", quantity))
}

func (c *InstrumentedClient) RemoveItem(ctx context.Context, name string, quantity *float64) error {
	attrs := []attribute.KeyValue{attribute.String("item.name", name), attribute.Bool("item.remove_all", quantity == nil)}
	return c.observe(ctx, EndpointInventoryRemove, func(ctx context.Context) error {
		return c.client.RemoveItem(ctx, name, quantity)
	}, attrs...)
}

func (c *InstrumentedClient) SuggestRecipe(ctx context.Context, preferences *string, servings int) (recipe *pantryassistant.Recipe, err error) {
	err = c.observe(ctx, EndpointSuggestRecipe, func(ctx context.Context) error {
		recipe, err = c.client.SuggestRecipe(ctx, preferences, servings)
		return err
	}, attribute.Int("recipe.servings", servings))
	return recipe, err
}

func (c *InstrumentedClient) ApplyRecipe(ctx context.Context, name string, servings int) error {
	return c.observe(ctx, EndpointApplyRecipe, func(ctx context.Context) error {
		return c.client.ApplyRecipe(ctx, name, servings)
	}, attribute.String("recipe.name", name), attribute.Int("recipe.servings", servings))
}

func (c *InstrumentedClient) ShoppingList(ctx context.Context) (entries []pantryassistant.ShoppingListEntry, err error) {
	err = c.observe(ctx, EndpointShoppingList, func(ctx context.Context) error {
		entries, err = c.client.ShoppingList(ctx)
		return err
	})
	return entries, err
}

func (c *InstrumentedClient) UpdateThreshold(ctx context.Context, name string, threshold float64) error {
	return c.observe(ctx, EndpointUpdateThreshold, func(ctx context.Context) error {
		return c.client.UpdateThreshold(ctx, name, threshold)
	}, attribute.String("item.name", name), attribute.Float64("item.threshold", threshold))
}

func (c *InstrumentedClient) ProcessVoice(ctx context.Context, text string) (resp *pantryassistant.VoiceResponse, err error) {
	err = c.observe(ctx, EndpointVoiceProcess, func(ctx context.Context) error {
		resp, err = c.client.ProcessVoice(ctx, text)
		return err
	}, attribute.Int("command.length", len(text)))
	return resp, err
}

func (c *InstrumentedClient) SupportedCommands(ctx context.Context) (commands []string, err error) {
	err = c.observe(ctx, EndpointSupportedCommands, func(ctx context.Context) error {
		commands, err = c.client.SupportedCommands(ctx)
		return err
	})
	return commands, err
}

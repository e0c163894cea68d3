package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joeshaw/envdecode"

	"pantryassistant"
	"pantryassistant/api"
	"pantryassistant/storage"
	"pantryassistant/ui"
)

func main() {
	scripts := storage.NewOpener(storage.DefaultS3Loader)

	fn := func(ctx context.Context, params Params) (Results, error) {
		var cfg pantryassistant.Config
		if err := envdecode.Decode(&cfg); err != nil {
			return Results{}, fmt.Errorf("failed to decode config: %w", err)
		}

		httpClient, err := api.NewHTTPClient(cfg.SOCKSProxy)
		if err != nil {
			return Results{}, err
		}
		client, err := api.NewClient(api.ClientOpts{BaseURL: cfg.APIURL, HTTPClient: httpClient})
		if err != nil {
			return Results{}, err
		}

		tracerProvider, meterProvider, otelShutdown, err := pantryassistant.InitOtel(ctx, pantryassistant.TracerNameLambda)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		instrumented := api.NewInstrumentedClient(client,
			tracerProvider.Tracer(pantryassistant.TracerNameLambda),
			meterProvider.Meter(pantryassistant.TracerNameLambda))

		h := &handler{
			voice: ui.NewVoiceAssistant(ui.VoiceAssistantOpts{
				API:    instrumented,
				Logger: pantryassistant.NewStdoutCommandLogger(),
			}),
			scripts: scripts,
		}
		return h.handle(ctx, params)
	}

	lambda.Start(fn)
}

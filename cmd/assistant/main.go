package main

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/kballard/go-shellquote"
	"github.com/lmittmann/tint"
	cli "github.com/spf13/pflag"

	"pantryassistant"
	"pantryassistant/api"
	"pantryassistant/shell"
	"pantryassistant/slack"
	"pantryassistant/speech"
	"pantryassistant/storage"
	"pantryassistant/ui"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// backend is what the views and the shell need from the server client.
type backend interface {
	ui.API
	shell.HealthChecker
}

type flags struct {
	withOtel   bool
	commandLog bool
	script     string
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "warn", "Log level")
	withOtel := cli.Bool("otel", false, "Export traces and metrics over OTLP")
	commandLog := cli.Bool("command-log", true, "Record voice commands under COMMAND_LOG_DIR")
	script := cli.StringP("script", "s", "", "Run a command script (path or s3://bucket/key) and exit")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	if err := godotenv.Load(*envFile); err != nil {
		log.Debug("SETUP: No env file loaded", "path", *envFile, "error", err)
	}

	var cfg pantryassistant.Config
	if err := envdecode.Decode(&cfg); err != nil {
		log.Error("SETUP: Failed to decode config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, flags{withOtel: *withOtel, commandLog: *commandLog, script: *script}); err != nil {
		log.Error("FAILURE: Assistant exited", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg pantryassistant.Config, f flags) error {
	httpClient, err := api.NewHTTPClient(cfg.SOCKSProxy)
	if err != nil {
		return fmt.Errorf("SETUP: %w", err)
	}

	client, err := api.NewClient(api.ClientOpts{BaseURL: cfg.APIURL, HTTPClient: httpClient})
	if err != nil {
		return err
	}
	log.Info("SETUP: API client ready", "url", client.BaseURL())

	var server backend = client
	if f.withOtel {
		tracerProvider, meterProvider, otelShutdown, err := pantryassistant.InitOtel(ctx, pantryassistant.TracerNameClient)
		if err != nil {
			return fmt.Errorf("SETUP: initialize OpenTelemetry: %w", err)
		}
		defer func() {
			if err := otelShutdown(context.Background()); err != nil {
				log.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()
		server = api.NewInstrumentedClient(client,
			tracerProvider.Tracer(pantryassistant.TracerNameClient),
			meterProvider.Meter(pantryassistant.TracerNameClient))
	}

	logger, cleanup, err := newCommandLogger(cfg.CommandLogDir, f.commandLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Error("SETUP: Failed to flush command log", "error", err)
		}
	}()

	opts := ui.AppOpts{
		Alerter:   ui.NewWriterAlerter(os.Stdout),
		Logger:    logger,
		VoiceRate: cfg.Voice.Rate,
	}
	if cfg.Voice.CaptureCommand != "" {
		rec, err := speech.NewCommandRecognizer(cfg.Voice.CaptureCommand, cfg.Voice.Language)
		if err != nil {
			log.Warn("SETUP: Speech capture disabled", "error", err)
		} else {
			opts.Recognizer = rec
		}
	}
	if cfg.Voice.SpeakCommand != "" {
		synth, err := speech.NewCommandSynthesizer(cfg.Voice.SpeakCommand)
		if err != nil {
			log.Warn("SETUP: Speech output disabled", "error", err)
		} else {
			opts.Synthesizer = synth
		}
	}

	app := ui.NewApp(server, opts)
	app.Mount(ctx)
	defer app.Unmount()

	sh := shell.New(shell.Opts{
		App:      app,
		Out:      os.Stdout,
		Health:   server,
		Registry: client.Registry(),
		Share:    slack.NewClient(cfg.Share.SlackWebhookURL, cfg.Share.SlackChannel, httpClient),
		Scripts:  storage.NewOpener(storage.DefaultS3Loader),
	})

	if f.script != "" {
		return sh.Exec(ctx, "run "+shellquote.Join(f.script))
	}

	app.Render(os.Stdout)
	fmt.Println(`Type "help" for commands.`)

	// Scanning stdin does not observe ctx, so an interrupt abandons the
	// reader and lets the deferred cleanup run.
	done := make(chan error, 1)
	go func() { done <- sh.Run(ctx, os.Stdin) }()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-ctx.Done():
		fmt.Println()
	}
	return nil
}

func newCommandLogger(dir string, enabled bool) (pantryassistant.CommandLogger, func() error, error) {
	if !enabled {
		return pantryassistant.NewNoOpCommandLogger(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	logFile, err := os.OpenFile(pantryassistant.NewCommandLogFilePath(dir), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := pantryassistant.NewFileCommandLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}

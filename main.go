// Command matchbot is the main entrypoint for the match channel provisioning API.
// It:
//   - Loads configuration and initializes structured logging.
//   - Logs the bot into the Discord gateway for the configured guild.
//   - Exposes the HTTP API: POST /generate-invite plus /, /healthz, /status,
//     and /metrics.
//   - Owns the in-memory cleanup scheduler that deletes provisioned channels
//     after their TTL.
//
// Shutdown is graceful on SIGINT/SIGTERM. Pending cleanups are in-memory only
// and do not survive a restart.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/qparty/matchbot/config"
	"github.com/qparty/matchbot/discord"
	"github.com/qparty/matchbot/match"
	"github.com/qparty/matchbot/server"
	"github.com/qparty/matchbot/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config invalid", slog.Any("err", err))
		os.Exit(1)
	}
	if cfg.APIKey == "" {
		slog.Warn("API_KEY not set - every provisioning request will be rejected")
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("matchbot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Discord gateway
	client, err := discord.Connect(cfg.DiscordToken, cfg.GuildID)
	if err != nil {
		slog.Error("discord connect failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.Error("failed to close discord session", slog.Any("err", err))
		}
	}()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := match.NewScheduler(client)
	provisioner := match.NewProvisioner(client, scheduler, cfg.InviteTTL, cfg.ChannelTTL)
	handlers := server.NewHandlers(cfg, provisioner, scheduler, client)

	slog.Info("starting http server",
		slog.String("addr", cfg.Addr()),
		slog.String("guild", cfg.GuildID),
		slog.Duration("invite_ttl", cfg.InviteTTL),
		slog.Duration("channel_ttl", cfg.ChannelTTL))

	go func() {
		if err := server.Start(ctx, handlers, cfg.Addr()); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}

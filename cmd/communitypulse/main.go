package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"communityPulse/internal/client"
	"communityPulse/internal/config"
	"communityPulse/internal/geo"
	"communityPulse/internal/lib/logger/handlers/slogpretty"
	"communityPulse/internal/lib/logger/sl"
	"communityPulse/internal/metrics"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const usage = `community pulse client

Usage: communitypulse <command> [flags]

Commands:
  events      list events (general and nearby, fetched concurrently)
  show        show one event with registration window state
  create      create an event
  delete      delete an event
  interest    mark interest in an event
  confirm     confirm registration with an attendee roster
  cancel      cancel a registration
  like        like an event
  unlike      remove a like
  report      report an event
  dashboard   organizer analytics for an event
  issues      list civic issues
  issue       report a civic issue
  vote        upvote an issue
  unvote      remove an issue vote
  me          show the authenticated user
  admin       moderation: pending | approve | reject | verify
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	api, err := client.New(client.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Retry: client.RetryPolicy{
			Attempts: cfg.API.RetryAttempts,
			Initial:  cfg.API.RetryInitial,
			Max:      cfg.API.RetryMax,
		},
		Tokens:    tokenSource(cfg),
		Transport: metrics.NewRoundTripper(nil),
	}, log)
	if err != nil {
		log.Error("failed to build api client", sl.Err(err))
		os.Exit(1)
	}

	locator, err := geo.NewLocator(cfg.Geo)
	if err != nil {
		log.Error("failed to build locator", sl.Err(err))
		os.Exit(1)
	}

	app := &app{
		cfg:     cfg,
		log:     log,
		api:     api,
		locator: locator,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err = app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Error("command failed", slog.String("command", os.Args[1]), sl.Err(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func tokenSource(cfg *config.Config) client.TokenSource {
	if cfg.API.Token == "" {
		return nil
	}

	return client.StaticToken(cfg.API.Token)
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		opts := slogpretty.PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}
		log = slog.New(opts.NewPrettyHandler(os.Stderr))
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

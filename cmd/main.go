package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/dishaagrawalcodes/eventmappr/config"
	authhandler "github.com/dishaagrawalcodes/eventmappr/internal/auth/handler"
	authservice "github.com/dishaagrawalcodes/eventmappr/internal/auth/service"
	eventhandler "github.com/dishaagrawalcodes/eventmappr/internal/event/handler"
	eventservice "github.com/dishaagrawalcodes/eventmappr/internal/event/service"
	"github.com/dishaagrawalcodes/eventmappr/internal/logger"
	"github.com/dishaagrawalcodes/eventmappr/internal/metrics"
	"github.com/dishaagrawalcodes/eventmappr/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "eventmappr: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, !cfg.IsProduction())
	if !cfg.IsProduction() {
		figure.NewFigure(cfg.AppName, "cybermedium", true).Print()
		fmt.Println()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	m := metrics.New()
	tokenService := authservice.NewTokenServiceFromConfig(cfg)
	userService := authservice.NewUserService(st.users, tokenService, cfg,
		authservice.WithLogger(log.With().Str("component", "auth").Logger()),
		authservice.WithMetrics(m),
	)
	eventService := eventservice.NewEventService(st.events, cfg,
		eventservice.WithLogger(log.With().Str("component", "events").Logger()),
		eventservice.WithMetrics(m),
	)

	app := server.New(cfg, log, m, server.Handlers{
		Auth:   authhandler.NewAuthHandler(userService, tokenService, cfg, log),
		Events: eventhandler.NewEventHandler(eventService, log),
	})

	log.Info().Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("starting")
	return server.Run(ctx, app, ":"+cfg.Port, log)
}

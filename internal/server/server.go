package server

import (
	"context"
	"errors"
	"time"

	"github.com/dishaagrawalcodes/eventmappr/config"
	authhandler "github.com/dishaagrawalcodes/eventmappr/internal/auth/handler"
	autherror "github.com/dishaagrawalcodes/eventmappr/internal/errors"
	eventhandler "github.com/dishaagrawalcodes/eventmappr/internal/event/handler"
	"github.com/dishaagrawalcodes/eventmappr/internal/metrics"
	"github.com/dishaagrawalcodes/eventmappr/internal/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

type Handlers struct {
	Auth   *authhandler.AuthHandler
	Events *eventhandler.EventHandler
}

// New builds the HTTP app with health and metrics endpoints and the user
// and event APIs mounted.
func New(cfg *config.Config, log zerolog.Logger, m *metrics.Metrics, h Handlers) *fiber.App {
	appName := "eventmappr"
	if cfg != nil && cfg.AppName != "" {
		appName = cfg.AppName
	}

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(requestid.New())
	app.Use(requestLogger(log, m))
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return response.JSON(c, fiber.StatusOK, "ok", nil)
	})
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	if h.Auth != nil {
		authhandler.RegisterRoutes(app, h.Auth)
		if h.Events != nil {
			eventhandler.RegisterRoutes(app, h.Events, h.Auth.RequireAuth)
		}
	}

	return app
}

// Run serves app on addr until ctx is cancelled, then shuts it down.
func Run(ctx context.Context, app *fiber.App, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	return <-errCh
}

func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if !errors.As(err, &fiberErr) && autherror.KindOf(err) == autherror.KindServerError {
			log.Error().Stack().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
		}
		return response.Error(c, err)
	}
}

func requestLogger(log zerolog.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		m.ObserveHTTP(c.Method(), c.Route().Path, status, elapsed)

		event := log.Info()
		if status >= fiber.StatusInternalServerError {
			event = log.Warn()
		}
		event.
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("request")
		return nil
	}
}

// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/trendprep/internal/logger"
)

const (
	serviceName = "trendprep"
	loggerName  = "trendprep:server"
)

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

// Handler processes an HTTP trigger. The returned value is serialized as
// the JSON response body; a nil value produces an empty 204 response.
type Handler func(ctx context.Context, params map[string]string) (any, error)

// Server exposes the pipeline trigger and status endpoints.
type Server interface {
	AddRoute(method string, path string, handler Handler)
	Start() error
	Stop() error
	StartAsync(ctx context.Context)
}

type impServer struct {
	config *Config
	app    *fiber.App
}

// NewServer builds the HTTP server from the environment configuration.
func NewServer(ctx context.Context) (Server, error) {
	cfg, err := LoadServerConfig()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.DisableStartupMessage,
	})
	log := logger.FromContext(ctx)
	app.Use(logger.RequestMiddlewareLogger(log, []string{"/-/"}))

	statusRoutes(app, serviceName)

	return &impServer{
		app:    app,
		config: cfg,
	}, nil
}

func (s *impServer) AddRoute(method string, path string, handler Handler) {
	s.app.Add(method, path, func(ctx *fiber.Ctx) error {
		result, err := handler(ctx.UserContext(), ctx.AllParams())
		if err != nil {
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"statusCode": http.StatusInternalServerError,
				"error":      http.StatusText(http.StatusInternalServerError),
				"message":    err.Error(),
			})
		}

		if result == nil {
			return ctx.SendStatus(http.StatusNoContent)
		}
		return ctx.Status(http.StatusOK).JSON(result)
	})
}

func (s *impServer) Start() error {
	if err := s.app.Listen(fmt.Sprintf("%s:%d", s.config.HTTPHost, s.config.HTTPPort)); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *impServer) Stop() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

func (s *impServer) StartAsync(ctx context.Context) {
	log := logger.FromContext(ctx).WithName(loggerName)
	go func() {
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}

// App exposes the underlying fiber application, used in tests to perform
// in-memory requests.
func (s *impServer) App() *fiber.App {
	return s.app
}

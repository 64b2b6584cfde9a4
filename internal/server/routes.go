// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/trendprep/internal/info"
)

// statusRoutes registers the liveness and readiness endpoints.
func statusRoutes(app *fiber.App, name string) {
	handler := func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"name":    name,
			"status":  "OK",
			"version": info.Version,
		})
	}

	app.Get("/-/healthz", handler)
	app.Get("/-/ready", handler)
}

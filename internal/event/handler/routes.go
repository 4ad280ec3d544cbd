package handler

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the event API. Reads are public; writes run behind
// requireAuth.
func RegisterRoutes(router fiber.Router, h *EventHandler, requireAuth fiber.Handler) {
	events := router.Group("/api/v1/events")
	events.Get("/", h.List)
	events.Get("/:id", h.Get)

	events.Post("/", requireAuth, h.Create)
	events.Delete("/:id", requireAuth, h.Delete)
}

package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(router fiber.Router, h *AuthHandler) {
	users := router.Group("/api/v1/users")
	users.Post("/register", h.Register)
	users.Post("/login", h.Login)
	users.Post("/refresh", h.Refresh)

	users.Post("/logout", h.RequireAuth, h.Logout)
	users.Post("/change-password", h.RequireAuth, h.ChangePassword)
	users.Get("/me", h.RequireAuth, h.Me)
}

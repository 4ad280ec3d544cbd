package handler

import (
	"strings"

	"github.com/dishaagrawalcodes/eventmappr/internal/auth/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const principalKey = "user"

// RequireAuth authenticates the request from the accessToken cookie or an
// Authorization bearer header and stores the user for later handlers.
func (h *AuthHandler) RequireAuth(c *fiber.Ctx) error {
	token := utils.CopyString(c.Cookies(AccessTokenCookie))
	if token == "" {
		token = bearerToken(c.Get(fiber.HeaderAuthorization))
	}

	user, err := h.userService.Authenticate(c.UserContext(), token)
	if err != nil {
		return h.fail(c, err)
	}

	SetPrincipal(c, user)
	return c.Next()
}

func SetPrincipal(c *fiber.Ctx, user *domain.User) {
	c.Locals(principalKey, user)
}

// Principal returns the user set by RequireAuth, or nil.
func Principal(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(principalKey).(*domain.User)
	return user
}

func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return utils.CopyString(strings.TrimSpace(token))
}

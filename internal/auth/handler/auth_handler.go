package handler

import (
	"time"

	"github.com/dishaagrawalcodes/eventmappr/config"
	"github.com/dishaagrawalcodes/eventmappr/internal/auth/dto"
	"github.com/dishaagrawalcodes/eventmappr/internal/auth/service"
	autherror "github.com/dishaagrawalcodes/eventmappr/internal/errors"
	"github.com/dishaagrawalcodes/eventmappr/internal/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type AuthHandler struct {
	userService  *service.UserService
	tokens       service.TokenGenerator
	cookieSecure bool
	log          zerolog.Logger
}

func NewAuthHandler(userService *service.UserService, tokens service.TokenGenerator, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokens:       tokens,
		cookieSecure: cfg == nil || cfg.CookieSecure,
		log:          log,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return h.fail(c, autherror.ErrInvalidInput)
	}

	user, err := h.userService.Register(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err)
	}

	return response.JSON(c, fiber.StatusCreated, "user registered successfully", user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return h.fail(c, autherror.ErrInvalidInput)
	}

	out, err := h.userService.Login(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err)
	}

	h.setTokenCookies(c, out.AccessToken, out.RefreshToken)
	return response.JSON(c, fiber.StatusOK, "user logged in successfully", out)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal := Principal(c)
	if principal == nil {
		return h.fail(c, autherror.ErrAccessTokenMissing)
	}

	if err := h.userService.Logout(c.UserContext(), principal.ID); err != nil {
		return h.fail(c, err)
	}

	h.clearTokenCookies(c)
	return response.JSON(c, fiber.StatusOK, "user logged out", nil)
}

// Refresh reads the refresh token from its cookie, falling back to the JSON
// body for clients that do not keep cookies.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	input := dto.RefreshInput{RefreshToken: utils.CopyString(c.Cookies(RefreshTokenCookie))}
	if input.RefreshToken == "" && len(c.Body()) > 0 {
		// An unreadable body carries no token; the service reports it missing.
		if err := c.BodyParser(&input); err != nil {
			input.RefreshToken = ""
		}
	}

	tokens, err := h.userService.Refresh(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err)
	}

	h.setTokenCookies(c, tokens.AccessToken, tokens.RefreshToken)
	return response.JSON(c, fiber.StatusOK, "access token refreshed", tokens)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal := Principal(c)
	if principal == nil {
		return h.fail(c, autherror.ErrAccessTokenMissing)
	}

	var input dto.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return h.fail(c, autherror.ErrInvalidInput)
	}

	if err := h.userService.ChangePassword(c.UserContext(), principal.ID, input); err != nil {
		return h.fail(c, err)
	}

	return response.JSON(c, fiber.StatusOK, "password changed successfully", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal := Principal(c)
	if principal == nil {
		return h.fail(c, autherror.ErrAccessTokenMissing)
	}

	return response.JSON(c, fiber.StatusOK, "current user fetched successfully", h.userService.CurrentUser(principal))
}

func (h *AuthHandler) setTokenCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	now := time.Now()
	c.Cookie(h.cookie(AccessTokenCookie, accessToken, now.Add(h.tokens.GetAccessTokenExpiry())))
	c.Cookie(h.cookie(RefreshTokenCookie, refreshToken, now.Add(h.tokens.GetRefreshTokenExpiry())))
}

func (h *AuthHandler) clearTokenCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(h.cookie(AccessTokenCookie, "", expired))
	c.Cookie(h.cookie(RefreshTokenCookie, "", expired))
}

func (h *AuthHandler) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (h *AuthHandler) fail(c *fiber.Ctx, err error) error {
	if autherror.KindOf(err) == autherror.KindServerError {
		h.log.Error().Stack().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}
	return response.Error(c, err)
}

package handler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	authhandler "github.com/dishaagrawalcodes/eventmappr/internal/auth/handler"
	autherror "github.com/dishaagrawalcodes/eventmappr/internal/errors"
	"github.com/dishaagrawalcodes/eventmappr/internal/event/dto"
	"github.com/dishaagrawalcodes/eventmappr/internal/event/service"
	"github.com/dishaagrawalcodes/eventmappr/internal/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"
)

type EventHandler struct {
	eventService *service.EventService
	log          zerolog.Logger
}

func NewEventHandler(eventService *service.EventService, log zerolog.Logger) *EventHandler {
	return &EventHandler{eventService: eventService, log: log}
}

// List supports ?category= (repeatable or comma separated), q, lat, lng,
// radiusKm and limit.
func (h *EventHandler) List(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return h.fail(c, err)
	}

	events, err := h.eventService.List(c.UserContext(), query)
	if err != nil {
		return h.fail(c, err)
	}

	return response.JSON(c, fiber.StatusOK, "events fetched successfully", events)
}

func (h *EventHandler) Get(c *fiber.Ctx) error {
	event, err := h.eventService.Get(c.UserContext(), utils.CopyString(c.Params("id")))
	if err != nil {
		return h.fail(c, err)
	}

	return response.JSON(c, fiber.StatusOK, "event fetched successfully", event)
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	principal := authhandler.Principal(c)
	if principal == nil {
		return h.fail(c, autherror.ErrAccessTokenMissing)
	}

	var input dto.CreateEventInput
	if err := c.BodyParser(&input); err != nil {
		return h.fail(c, autherror.ErrInvalidInput)
	}

	event, err := h.eventService.Create(c.UserContext(), principal.ID, input)
	if err != nil {
		return h.fail(c, err)
	}

	return response.JSON(c, fiber.StatusCreated, "event created successfully", event)
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	principal := authhandler.Principal(c)
	if principal == nil {
		return h.fail(c, autherror.ErrAccessTokenMissing)
	}

	if err := h.eventService.Delete(c.UserContext(), principal.ID, utils.CopyString(c.Params("id"))); err != nil {
		return h.fail(c, err)
	}

	return response.JSON(c, fiber.StatusOK, "event deleted successfully", nil)
}

func (h *EventHandler) fail(c *fiber.Ctx, err error) error {
	if autherror.KindOf(err) == autherror.KindServerError {
		h.log.Error().Stack().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}
	return response.Error(c, err)
}

func parseListQuery(c *fiber.Ctx) (dto.ListEventsQuery, error) {
	query := dto.ListEventsQuery{Query: utils.CopyString(c.Query("q"))}

	for _, raw := range c.Context().QueryArgs().PeekMulti("category") {
		for _, category := range strings.Split(string(raw), ",") {
			if category = strings.TrimSpace(category); category != "" {
				query.Categories = append(query.Categories, category)
			}
		}
	}

	var err error
	if query.Lat, err = floatParam(c, "lat"); err != nil {
		return query, err
	}
	if query.Lng, err = floatParam(c, "lng"); err != nil {
		return query, err
	}
	if query.RadiusKm, err = floatParam(c, "radiusKm"); err != nil {
		return query, err
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return query, autherror.New(autherror.KindBadRequest, "limit must be an integer")
		}
		query.Limit = limit
	}

	return query, nil
}

func floatParam(c *fiber.Ctx, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, autherror.New(autherror.KindBadRequest, fmt.Sprintf("%s must be a number", name))
	}
	return &v, nil
}

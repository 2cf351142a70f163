package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/regdocgpt/regdocgpt-api/internal/dto"
	"github.com/regdocgpt/regdocgpt-api/internal/repository"
	"github.com/regdocgpt/regdocgpt-api/internal/service"
	"github.com/regdocgpt/regdocgpt-api/internal/utils"
)

// AuditHandler exposes the audit trail endpoints.
type AuditHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches audit routes to the router group.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.append)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	limit, limitSet, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if !limitSet {
		limit = repository.DefaultAuditLimit
	}

	offset, _, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	adminID, err := parseQueryUint(c, "admin_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid admin id")
	}

	userID, err := parseQueryUint(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	req := dto.AuditListRequest{
		Actor:     c.Query("actor"),
		ActorRole: c.Query("actor_role"),
		AdminID:   adminID,
		UserID:    userID,
		Event:     c.Query("event"),
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
	}

	response, err := h.service.Query(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to query audit entries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to query audit entries")
	}

	return utils.SendSuccess(c, "audit entries", response)
}

func (h *AuditHandler) append(c *fiber.Ctx) error {
	var payload dto.AuditAppendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	id, err := h.service.Append(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAuditAppend):
			requestLogger(h.logger, c).Error().Err(err).Msg("audit append failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "audit append failed")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("audit append failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "audit append failed")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "audit entry recorded", fiber.Map{"id": id})
}

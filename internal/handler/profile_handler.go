package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/regdocgpt/regdocgpt-api/internal/dto"
	"github.com/regdocgpt/regdocgpt-api/internal/models"
	"github.com/regdocgpt/regdocgpt-api/internal/service"
	"github.com/regdocgpt/regdocgpt-api/internal/utils"
)

// ProfileHandler exposes profile read/update and password change endpoints.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register attaches profile routes to the router group.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("/:kind/:id", h.get)
	router.Patch("/:kind/:id", h.update)
	router.Post("/:kind/:id/password", h.changePassword)
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	kind, id, err := profileTarget(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	profile, err := h.service.Get(c.UserContext(), kind, id)
	if err != nil {
		if errors.Is(err, service.ErrNoSuchAccount) {
			return utils.SendError(c, fiber.StatusNotFound, "profile not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile", profile)
}

func (h *ProfileHandler) update(c *fiber.Ctx) error {
	kind, id, err := profileTarget(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.service.Update(c.UserContext(), kind, id, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoSuchAccount):
			return utils.SendError(c, fiber.StatusNotFound, "profile not found")
		case errors.Is(err, service.ErrDuplicateAccount):
			return utils.SendError(c, fiber.StatusConflict, "username or email already registered")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update profile")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update profile")
		}
	}

	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *ProfileHandler) changePassword(c *fiber.Ctx) error {
	kind, id, err := profileTarget(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChangePasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.ChangePassword(c.UserContext(), kind, id, payload); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoSuchAccount):
			return utils.SendError(c, fiber.StatusNotFound, "profile not found")
		case errors.Is(err, service.ErrBadCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "current password is incorrect")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to change password")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to change password")
		}
	}

	return utils.SendSuccess(c, "password changed", nil)
}

func profileTarget(c *fiber.Ctx) (models.AccountKind, uint, error) {
	kind := models.AccountKind(c.Params("kind"))
	if !kind.Valid() {
		return "", 0, errors.New("kind must be user or admin")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return "", 0, errors.New("invalid account id")
	}

	return kind, uint(id), nil
}

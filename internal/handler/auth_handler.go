package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/regdocgpt/regdocgpt-api/internal/dto"
	"github.com/regdocgpt/regdocgpt-api/internal/models"
	"github.com/regdocgpt/regdocgpt-api/internal/service"
	"github.com/regdocgpt/regdocgpt-api/internal/utils"
)

// The public login failure message never distinguishes an unknown account
// from a wrong password; the audit trail keeps that distinction.
const loginFailedMessage = "incorrect username/email or password"

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth routes to the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register/user", h.registerUser)
	router.Post("/register/admin", h.registerAdmin)
	router.Post("/login/user", h.loginUser)
	router.Post("/login/admin", h.loginAdmin)
	router.Get("/identify", h.identify)
}

func (h *AuthHandler) registerUser(c *fiber.Ctx) error {
	var payload dto.RegisterUserRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	id, err := h.service.RegisterUser(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateUsername):
			return utils.SendError(c, fiber.StatusConflict, "username already taken")
		case errors.Is(err, service.ErrDuplicateEmail):
			return utils.SendError(c, fiber.StatusConflict, "email already registered")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("user registration failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "registration failed")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user account created",
		dto.RegisterResponse{ID: id, Kind: string(models.AccountUser)})
}

func (h *AuthHandler) registerAdmin(c *fiber.Ctx) error {
	var payload dto.RegisterAdminRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	id, err := h.service.RegisterAdmin(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidInviteCode):
			return utils.SendError(c, fiber.StatusForbidden, "invalid admin invite code")
		case errors.Is(err, service.ErrDuplicateAccount):
			return utils.SendError(c, fiber.StatusConflict, "username or email already registered")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("admin registration failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "registration failed")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "admin account created",
		dto.RegisterResponse{ID: id, Kind: string(models.AccountAdmin)})
}

func (h *AuthHandler) loginUser(c *fiber.Ctx) error {
	return h.login(c, models.AccountUser)
}

func (h *AuthHandler) loginAdmin(c *fiber.Ctx) error {
	return h.login(c, models.AccountAdmin)
}

func (h *AuthHandler) login(c *fiber.Ctx, kind models.AccountKind) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	login := h.service.LoginUser
	if kind == models.AccountAdmin {
		login = h.service.LoginAdmin
	}

	result, err := login(c.UserContext(), payload)
	if err != nil {
		code := service.LoginStatusCode(err)
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAccountDisabled):
			return utils.SendError(c, fiber.StatusForbidden, "account disabled")
		case errors.Is(err, service.ErrNoSuchAccount), errors.Is(err, service.ErrBadCredentials):
			requestLogger(h.logger, c).Warn().Int("status", code).Str("kind", string(kind)).Msg("login rejected")
			return utils.SendError(c, fiber.StatusUnauthorized, loginFailedMessage)
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
		}
	}

	return utils.SendSuccess(c, "login successful", dto.LoginResponse{
		Code:      service.LoginOK,
		ID:        result.ID,
		Role:      string(result.Kind),
		Username:  result.Username,
		Email:     result.Email,
		Org:       result.Org,
		LastLogin: result.LastLogin,
	})
}

func (h *AuthHandler) identify(c *fiber.Ctx) error {
	identifier := c.Query("identifier")
	if identifier == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "identifier is required")
	}

	match, err := h.service.Identify(c.UserContext(), identifier)
	if err != nil {
		if errors.Is(err, service.ErrNoSuchAccount) {
			return utils.SendError(c, fiber.StatusNotFound, "no matching account")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("identifier lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "lookup failed")
	}

	return utils.SendSuccess(c, "account found", match)
}

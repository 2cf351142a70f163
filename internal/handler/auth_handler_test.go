package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/regdocgpt/regdocgpt-api/internal/dto"
	"github.com/regdocgpt/regdocgpt-api/internal/handler"
	"github.com/regdocgpt/regdocgpt-api/internal/models"
	"github.com/regdocgpt/regdocgpt-api/internal/service"
)

type mockAuthService struct {
	registerUserID  uint
	registerUserErr error
	lastUserReq     dto.RegisterUserRequest

	registerAdminID  uint
	registerAdminErr error

	loginResult service.LoginResult
	loginErr    error

	identifyMatch dto.IdentifyResponse
	identifyErr   error
}

func (m *mockAuthService) RegisterUser(_ context.Context, req dto.RegisterUserRequest) (uint, error) {
	m.lastUserReq = req
	return m.registerUserID, m.registerUserErr
}

func (m *mockAuthService) RegisterAdmin(_ context.Context, req dto.RegisterAdminRequest) (uint, error) {
	return m.registerAdminID, m.registerAdminErr
}

func (m *mockAuthService) LoginUser(_ context.Context, req dto.LoginRequest) (service.LoginResult, error) {
	return m.loginResult, m.loginErr
}

func (m *mockAuthService) LoginAdmin(_ context.Context, req dto.LoginRequest) (service.LoginResult, error) {
	return m.loginResult, m.loginErr
}

func (m *mockAuthService) Identify(_ context.Context, identifier string) (dto.IdentifyResponse, error) {
	return m.identifyMatch, m.identifyErr
}

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	handler.NewAuthHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/auth"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// validationFailure manufactures a real validator error for mocks to return.
func validationFailure(t *testing.T) error {
	t.Helper()
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(struct {
		Name string `validate:"required"`
	}{})
	require.Error(t, err)
	return err
}

func TestAuthHandlerRegisterUserSuccess(t *testing.T) {
	svc := &mockAuthService{registerUserID: 7}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/register/user", dto.RegisterUserRequest{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-pass",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                 `json:"success"`
		Data    dto.RegisterResponse `json:"data"`
		Message string               `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, uint(7), response.Data.ID)
	require.Equal(t, string(models.AccountUser), response.Data.Kind)
	require.Equal(t, "alice", svc.lastUserReq.Username)
}

func TestAuthHandlerRegisterUserConflicts(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"duplicate username", service.ErrDuplicateUsername, fiber.StatusConflict, "username already taken"},
		{"duplicate email", service.ErrDuplicateEmail, fiber.StatusConflict, "email already registered"},
		{"storage failure", errors.New("connection reset"), fiber.StatusInternalServerError, "registration failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newAuthApp(&mockAuthService{registerUserErr: tc.err})
			resp := postJSON(t, app, "/api/v1/auth/register/user", dto.RegisterUserRequest{
				Username: "alice", Email: "alice@example.com", Password: "s3cret-pass",
			})
			require.Equal(t, tc.status, resp.StatusCode)

			var response struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			decodeResponse(t, resp, &response)
			require.False(t, response.Success)
			require.Equal(t, tc.message, response.Message)
		})
	}
}

func TestAuthHandlerRegisterUserValidation(t *testing.T) {
	app := newAuthApp(&mockAuthService{registerUserErr: validationFailure(t)})
	resp := postJSON(t, app, "/api/v1/auth/register/user", dto.RegisterUserRequest{})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandlerRegisterAdminInviteRejected(t *testing.T) {
	app := newAuthApp(&mockAuthService{registerAdminErr: service.ErrInvalidInviteCode})
	resp := postJSON(t, app, "/api/v1/auth/register/admin", dto.RegisterAdminRequest{
		Username: "regadmin", Email: "admin@example.com", Password: "s3cret-pass", Org: "Acme",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	svc := &mockAuthService{loginResult: service.LoginResult{
		ID: 7, Kind: models.AccountUser, Username: "alice", Email: "alice@example.com",
	}}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/login/user", dto.LoginRequest{Identifier: "alice", Password: "s3cret-pass"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, service.LoginOK, response.Data.Code)
	require.Equal(t, uint(7), response.Data.ID)
	require.Equal(t, "user", response.Data.Role)
}

func TestAuthHandlerLoginRejectionsShareOneMessage(t *testing.T) {
	for _, cause := range []error{service.ErrNoSuchAccount, service.ErrBadCredentials} {
		app := newAuthApp(&mockAuthService{loginErr: cause})
		resp := postJSON(t, app, "/api/v1/auth/login/user", dto.LoginRequest{Identifier: "alice", Password: "nope-nope"})
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var response struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		decodeResponse(t, resp, &response)
		require.False(t, response.Success)
		require.Equal(t, "incorrect username/email or password", response.Message)
	}
}

func TestAuthHandlerLoginDisabledAccount(t *testing.T) {
	app := newAuthApp(&mockAuthService{loginErr: service.ErrAccountDisabled})
	resp := postJSON(t, app, "/api/v1/auth/login/admin", dto.LoginRequest{Identifier: "regadmin", Password: "s3cret-pass"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var response struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "account disabled", response.Message)
}

func TestAuthHandlerIdentify(t *testing.T) {
	svc := &mockAuthService{identifyMatch: dto.IdentifyResponse{Role: "admin", Username: "regadmin", Org: "Acme"}}
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/identify?identifier=regadmin", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.IdentifyResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "admin", response.Data.Role)
	require.Equal(t, "Acme", response.Data.Org)
}

func TestAuthHandlerIdentifyRequiresIdentifier(t *testing.T) {
	app := newAuthApp(&mockAuthService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/identify", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandlerIdentifyNoMatch(t *testing.T) {
	app := newAuthApp(&mockAuthService{identifyErr: service.ErrNoSuchAccount})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/identify?identifier=ghost", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

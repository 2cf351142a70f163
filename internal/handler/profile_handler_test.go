package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/regdocgpt/regdocgpt-api/internal/dto"
	"github.com/regdocgpt/regdocgpt-api/internal/handler"
	"github.com/regdocgpt/regdocgpt-api/internal/models"
	"github.com/regdocgpt/regdocgpt-api/internal/service"
)

type mockProfileService struct {
	profile dto.ProfileResponse
	getErr  error

	updateErr  error
	lastUpdate dto.ProfileUpdateRequest

	changeErr error
	lastKind  models.AccountKind
	lastID    uint
}

func (m *mockProfileService) Get(_ context.Context, kind models.AccountKind, id uint) (dto.ProfileResponse, error) {
	m.lastKind, m.lastID = kind, id
	return m.profile, m.getErr
}

func (m *mockProfileService) Update(_ context.Context, kind models.AccountKind, id uint, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	m.lastKind, m.lastID, m.lastUpdate = kind, id, req
	return m.profile, m.updateErr
}

func (m *mockProfileService) ChangePassword(_ context.Context, kind models.AccountKind, id uint, req dto.ChangePasswordRequest) error {
	m.lastKind, m.lastID = kind, id
	return m.changeErr
}

func newProfileApp(svc service.ProfileService) *fiber.App {
	app := fiber.New()
	handler.NewProfileHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/profiles"))
	return app
}

func TestProfileHandlerGet(t *testing.T) {
	svc := &mockProfileService{profile: dto.ProfileResponse{ID: 7, Role: "user", Username: "alice"}}
	app := newProfileApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/user/7", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, models.AccountUser, svc.lastKind)
	require.Equal(t, uint(7), svc.lastID)

	var response struct {
		Data dto.ProfileResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "alice", response.Data.Username)
}

func TestProfileHandlerGetRejectsBadTarget(t *testing.T) {
	app := newProfileApp(&mockProfileService{})

	for _, path := range []string{"/api/v1/profiles/robot/7", "/api/v1/profiles/user/abc", "/api/v1/profiles/user/0"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "path %q", path)
	}
}

func TestProfileHandlerGetNotFound(t *testing.T) {
	app := newProfileApp(&mockProfileService{getErr: service.ErrNoSuchAccount})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/admin/9", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProfileHandlerUpdate(t *testing.T) {
	svc := &mockProfileService{profile: dto.ProfileResponse{ID: 7, Role: "admin", Org: "Acme"}}
	app := newProfileApp(svc)

	org := "Acme"
	body, err := app.Test(newPatchRequest(t, "/api/v1/profiles/admin/7", dto.ProfileUpdateRequest{Org: &org}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, body.StatusCode)
	require.NotNil(t, svc.lastUpdate.Org)
	require.Equal(t, "Acme", *svc.lastUpdate.Org)
}

func TestProfileHandlerUpdateConflict(t *testing.T) {
	app := newProfileApp(&mockProfileService{updateErr: service.ErrDuplicateAccount})

	username := "taken"
	resp, err := app.Test(newPatchRequest(t, "/api/v1/profiles/user/7", dto.ProfileUpdateRequest{Username: &username}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestProfileHandlerChangePassword(t *testing.T) {
	svc := &mockProfileService{}
	app := newProfileApp(svc)

	resp := postJSON(t, app, "/api/v1/profiles/user/7/password", dto.ChangePasswordRequest{
		CurrentPassword: "old-pass-123", NewPassword: "new-pass-456",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastID)
}

func TestProfileHandlerChangePasswordWrongCurrent(t *testing.T) {
	app := newProfileApp(&mockProfileService{changeErr: service.ErrBadCredentials})
	resp := postJSON(t, app, "/api/v1/profiles/user/7/password", dto.ChangePasswordRequest{
		CurrentPassword: "wrong-pass", NewPassword: "new-pass-456",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var response struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "current password is incorrect", response.Message)
}

func newPatchRequest(t *testing.T, path string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

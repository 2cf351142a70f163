package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/regdocgpt/regdocgpt-api/internal/dto"
	"github.com/regdocgpt/regdocgpt-api/internal/models"
	"github.com/regdocgpt/regdocgpt-api/internal/observability"
	"github.com/regdocgpt/regdocgpt-api/internal/repository"
	"github.com/regdocgpt/regdocgpt-api/pkg/password"
)

// Audit event labels written by the auth service.
const (
	EventUserRegister  = "user.register"
	EventAdminRegister = "admin.register"
	EventUserLogin     = "user.login"
	EventAdminLogin    = "admin.login"
)

// LoginResult is the account snapshot returned on successful authentication.
type LoginResult struct {
	ID        uint
	Kind      models.AccountKind
	Username  string
	Email     string
	Org       string
	LastLogin *time.Time
}

// AuthService handles registration and login for both account kinds.
type AuthService interface {
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (uint, error)
	RegisterAdmin(ctx context.Context, req dto.RegisterAdminRequest) (uint, error)
	LoginUser(ctx context.Context, req dto.LoginRequest) (LoginResult, error)
	LoginAdmin(ctx context.Context, req dto.LoginRequest) (LoginResult, error)
	Identify(ctx context.Context, identifier string) (dto.IdentifyResponse, error)
}

type authService struct {
	users      repository.UserRepository
	admins     repository.AdminRepository
	hasher     password.Hasher
	recorder   AuditRecorder
	inviteCode string
	validator  *validator.Validate
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewAuthService constructs the auth service. An empty invite code disables
// admin self-registration.
func NewAuthService(users repository.UserRepository, admins repository.AdminRepository, hasher password.Hasher, recorder AuditRecorder, inviteCode string, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:      users,
		admins:     admins,
		hasher:     hasher,
		recorder:   recorder,
		inviteCode: inviteCode,
		validator:  validate,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		tracer:     otel.Tracer("github.com/regdocgpt/regdocgpt-api/internal/service/auth"),
	}
}

// RegisterUser creates a user account. Username and email keep their case;
// uniqueness is byte-exact, enforced by the storage constraint.
func (s *authService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (uint, error) {
	ctx, span := s.tracer.Start(ctx, "auth.register_user")
	defer span.End()

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		return 0, err
	}

	salt, err := password.NewSalt()
	if err != nil {
		return 0, err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: s.hasher.Hash(req.Password, salt),
		PasswordSalt: salt,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		span.SetStatus(otelcodes.Error, "registration rejected")
		observability.AuthAttempts().WithLabelValues("user_register", "rejected").Inc()
		s.record(ctx, dto.AuditAppendRequest{
			Actor:     req.Username,
			ActorRole: models.ActorRoleUser,
			Event:     EventUserRegister,
			Detail:    fmt.Sprintf("registration failed: %v", err),
		})
		return 0, err
	}

	span.SetAttributes(attribute.Int("account.id", int(user.ID)))
	observability.AuthAttempts().WithLabelValues("user_register", "ok").Inc()
	s.record(ctx, dto.AuditAppendRequest{
		Actor:     user.Username,
		ActorRole: models.ActorRoleUser,
		UserID:    &user.ID,
		Event:     EventUserRegister,
		Detail:    "account created",
	})
	s.logger.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return user.ID, nil
}

// RegisterAdmin creates an admin account behind the invite code. The
// repository lowercases username and email, so uniqueness is case-insensitive.
func (s *authService) RegisterAdmin(ctx context.Context, req dto.RegisterAdminRequest) (uint, error) {
	ctx, span := s.tracer.Start(ctx, "auth.register_admin")
	defer span.End()

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Org = strings.TrimSpace(req.Org)

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		return 0, err
	}

	if s.inviteCode == "" || strings.TrimSpace(req.InviteCode) != s.inviteCode {
		observability.AuthAttempts().WithLabelValues("admin_register", "rejected").Inc()
		s.record(ctx, dto.AuditAppendRequest{
			Actor:     strings.ToLower(req.Username),
			ActorRole: models.ActorRoleAdmin,
			Event:     EventAdminRegister,
			Detail:    "registration failed: invalid invite code",
		})
		return 0, ErrInvalidInviteCode
	}

	salt, err := password.NewSalt()
	if err != nil {
		return 0, err
	}

	admin := models.Admin{
		Username:      req.Username,
		Email:         req.Email,
		Org:           req.Org,
		WeeklyReports: req.WeeklyReports,
		PasswordHash:  s.hasher.Hash(req.Password, salt),
		PasswordSalt:  salt,
		IsActive:      true,
	}

	if err := s.admins.Create(ctx, &admin); err != nil {
		span.SetStatus(otelcodes.Error, "registration rejected")
		observability.AuthAttempts().WithLabelValues("admin_register", "rejected").Inc()
		s.record(ctx, dto.AuditAppendRequest{
			Actor:     strings.ToLower(req.Username),
			ActorRole: models.ActorRoleAdmin,
			Event:     EventAdminRegister,
			Detail:    fmt.Sprintf("registration failed: %v", err),
		})
		return 0, err
	}

	span.SetAttributes(attribute.Int("account.id", int(admin.ID)))
	observability.AuthAttempts().WithLabelValues("admin_register", "ok").Inc()
	s.record(ctx, dto.AuditAppendRequest{
		Actor:     admin.Username,
		ActorRole: models.ActorRoleAdmin,
		AdminID:   &admin.ID,
		Event:     EventAdminRegister,
		Detail:    "account created",
	})
	s.logger.Info().Uint("admin_id", admin.ID).Str("username", admin.Username).Str("org", admin.Org).Msg("admin registered")

	return admin.ID, nil
}

// LoginUser authenticates against the users table with a byte-exact
// identifier match.
func (s *authService) LoginUser(ctx context.Context, req dto.LoginRequest) (LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login_user")
	defer span.End()

	identifier := strings.TrimSpace(req.Identifier)
	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		return LoginResult{}, err
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResult{}, s.loginRejected(ctx, span, models.AccountUser, identifier, nil, ErrNoSuchAccount)
		}
		return LoginResult{}, err
	}

	if !user.IsActive {
		return LoginResult{}, s.loginRejected(ctx, span, models.AccountUser, identifier, &user.ID, ErrAccountDisabled)
	}

	if !s.hasher.Verify(req.Password, user.PasswordSalt, user.PasswordHash) {
		return LoginResult{}, s.loginRejected(ctx, span, models.AccountUser, identifier, &user.ID, ErrBadCredentials)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return LoginResult{}, err
	}

	observability.AuthAttempts().WithLabelValues("user_login", "ok").Inc()
	s.record(ctx, dto.AuditAppendRequest{
		Actor:     user.Username,
		ActorRole: models.ActorRoleUser,
		UserID:    &user.ID,
		Event:     EventUserLogin,
		Detail:    "login ok (status 0)",
	})

	return LoginResult{
		ID:        user.ID,
		Kind:      models.AccountUser,
		Username:  user.Username,
		Email:     user.Email,
		LastLogin: user.LastLogin,
	}, nil
}

// LoginAdmin authenticates against the admins table; the identifier is
// lowercased to match the stored form.
func (s *authService) LoginAdmin(ctx context.Context, req dto.LoginRequest) (LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login_admin")
	defer span.End()

	identifier := strings.TrimSpace(req.Identifier)
	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		return LoginResult{}, err
	}

	admin, err := s.admins.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResult{}, s.loginRejected(ctx, span, models.AccountAdmin, identifier, nil, ErrNoSuchAccount)
		}
		return LoginResult{}, err
	}

	if !admin.IsActive {
		return LoginResult{}, s.loginRejected(ctx, span, models.AccountAdmin, identifier, &admin.ID, ErrAccountDisabled)
	}

	if !s.hasher.Verify(req.Password, admin.PasswordSalt, admin.PasswordHash) {
		return LoginResult{}, s.loginRejected(ctx, span, models.AccountAdmin, identifier, &admin.ID, ErrBadCredentials)
	}

	if err := s.admins.TouchLastLogin(ctx, admin.ID); err != nil {
		return LoginResult{}, err
	}

	observability.AuthAttempts().WithLabelValues("admin_login", "ok").Inc()
	s.record(ctx, dto.AuditAppendRequest{
		Actor:     admin.Username,
		ActorRole: models.ActorRoleAdmin,
		AdminID:   &admin.ID,
		Event:     EventAdminLogin,
		Detail:    "login ok (status 0)",
	})

	return LoginResult{
		ID:        admin.ID,
		Kind:      models.AccountAdmin,
		Username:  admin.Username,
		Email:     admin.Email,
		Org:       admin.Org,
		LastLogin: admin.LastLogin,
	}, nil
}

// Identify reports which account table an identifier belongs to. Users are
// checked before admins.
func (s *authService) Identify(ctx context.Context, identifier string) (dto.IdentifyResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return dto.IdentifyResponse{}, ErrNoSuchAccount
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, identifier)
	if err == nil {
		return dto.IdentifyResponse{
			Role:     string(models.AccountUser),
			Username: user.Username,
			Email:    user.Email,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.IdentifyResponse{}, err
	}

	admin, err := s.admins.FindByUsernameOrEmail(ctx, identifier)
	if err == nil {
		return dto.IdentifyResponse{
			Role:     string(models.AccountAdmin),
			Username: admin.Username,
			Email:    admin.Email,
			Org:      admin.Org,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.IdentifyResponse{}, err
	}

	return dto.IdentifyResponse{}, ErrNoSuchAccount
}

// loginRejected audits a failed attempt and passes the sentinel through. The
// status code lands in the audit detail so the three rejection reasons stay
// distinguishable even though the public message is uniform.
func (s *authService) loginRejected(ctx context.Context, span trace.Span, kind models.AccountKind, identifier string, accountID *uint, cause error) error {
	span.SetStatus(otelcodes.Error, cause.Error())

	event := EventUserLogin
	role := models.ActorRoleUser
	entry := dto.AuditAppendRequest{Actor: identifier}
	if kind == models.AccountAdmin {
		event = EventAdminLogin
		role = models.ActorRoleAdmin
		entry.AdminID = accountID
	} else {
		entry.UserID = accountID
	}
	entry.ActorRole = role
	entry.Event = event
	entry.Detail = fmt.Sprintf("login rejected (status %d): %v", LoginStatusCode(cause), cause)

	observability.AuthAttempts().WithLabelValues(string(kind)+"_login", "rejected").Inc()
	s.record(ctx, entry)

	return cause
}

// record appends through the audit hook. Failures are captured locally and
// never bubble into the business outcome.
func (s *authService) record(ctx context.Context, entry dto.AuditAppendRequest) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("event", entry.Event).Msg("failed to record audit entry")
	}
}

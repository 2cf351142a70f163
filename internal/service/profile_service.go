package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/regdocgpt/regdocgpt-api/internal/dto"
	"github.com/regdocgpt/regdocgpt-api/internal/models"
	"github.com/regdocgpt/regdocgpt-api/internal/repository"
	"github.com/regdocgpt/regdocgpt-api/pkg/password"
)

// Audit event labels written by the profile service.
const (
	EventProfileUpdate  = "profile.update"
	EventPasswordChange = "password.change"
)

// ProfileService reads and mutates account profiles for both kinds.
type ProfileService interface {
	Get(ctx context.Context, kind models.AccountKind, id uint) (dto.ProfileResponse, error)
	Update(ctx context.Context, kind models.AccountKind, id uint, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
	ChangePassword(ctx context.Context, kind models.AccountKind, id uint, req dto.ChangePasswordRequest) error
}

type profileService struct {
	users     repository.UserRepository
	admins    repository.AdminRepository
	hasher    password.Hasher
	recorder  AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(users repository.UserRepository, admins repository.AdminRepository, hasher password.Hasher, recorder AuditRecorder, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:     users,
		admins:    admins,
		hasher:    hasher,
		recorder:  recorder,
		validator: validate,
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, kind models.AccountKind, id uint) (dto.ProfileResponse, error) {
	switch kind {
	case models.AccountUser:
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			return dto.ProfileResponse{}, mapNotFound(err)
		}
		return dto.NewUserProfileResponse(*user), nil
	case models.AccountAdmin:
		admin, err := s.admins.FindByID(ctx, id)
		if err != nil {
			return dto.ProfileResponse{}, mapNotFound(err)
		}
		return dto.NewAdminProfileResponse(*admin), nil
	default:
		return dto.ProfileResponse{}, fmt.Errorf("unknown account kind %q", kind)
	}
}

func (s *profileService) Update(ctx context.Context, kind models.AccountKind, id uint, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if !kind.Valid() {
		return dto.ProfileResponse{}, fmt.Errorf("unknown account kind %q", kind)
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ProfileResponse{}, err
	}

	updates := profileUpdates(kind, req)

	var err error
	if kind == models.AccountUser {
		err = s.users.UpdateProfile(ctx, id, updates)
	} else {
		err = s.admins.UpdateProfile(ctx, id, updates)
	}
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	profile, err := s.Get(ctx, kind, id)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	s.record(ctx, kind, profile.Username, id, EventProfileUpdate, fmt.Sprintf("profile fields updated: %d", len(updates)))

	return profile, nil
}

// ChangePassword verifies the current password, then stores a fresh salt and
// digest. A wrong current password is reported as bad credentials.
func (s *profileService) ChangePassword(ctx context.Context, kind models.AccountKind, id uint, req dto.ChangePasswordRequest) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown account kind %q", kind)
	}
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	var (
		username string
		salt     []byte
		digest   []byte
	)
	switch kind {
	case models.AccountUser:
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}
		username, salt, digest = user.Username, user.PasswordSalt, user.PasswordHash
	case models.AccountAdmin:
		admin, err := s.admins.FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}
		username, salt, digest = admin.Username, admin.PasswordSalt, admin.PasswordHash
	}

	if !s.hasher.Verify(req.CurrentPassword, salt, digest) {
		return ErrBadCredentials
	}

	newSalt, err := password.NewSalt()
	if err != nil {
		return err
	}
	newDigest := s.hasher.Hash(req.NewPassword, newSalt)

	if kind == models.AccountUser {
		err = s.users.UpdatePassword(ctx, id, newDigest, newSalt)
	} else {
		err = s.admins.UpdatePassword(ctx, id, newDigest, newSalt)
	}
	if err != nil {
		return err
	}

	s.record(ctx, kind, username, id, EventPasswordChange, "password changed")
	s.logger.Info().Str("kind", string(kind)).Uint("id", id).Msg("password changed")

	return nil
}

func (s *profileService) record(ctx context.Context, kind models.AccountKind, actor string, id uint, event, detail string) {
	if s.recorder == nil {
		return
	}
	entry := dto.AuditAppendRequest{
		Actor:  actor,
		Event:  event,
		Detail: detail,
	}
	if kind == models.AccountAdmin {
		entry.ActorRole = models.ActorRoleAdmin
		entry.AdminID = &id
	} else {
		entry.ActorRole = models.ActorRoleUser
		entry.UserID = &id
	}
	if _, err := s.recorder.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("event", event).Msg("failed to record audit entry")
	}
}

func profileUpdates(kind models.AccountKind, req dto.ProfileUpdateRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if kind == models.AccountAdmin {
		if req.Org != nil {
			updates["org"] = *req.Org
		}
		if req.WeeklyReports != nil {
			updates["weekly_reports"] = *req.WeeklyReports
		}
	}
	return updates
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoSuchAccount
	}
	return err
}

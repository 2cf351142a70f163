package service

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/regdocgpt/regdocgpt-api/internal/dto"
	"github.com/regdocgpt/regdocgpt-api/internal/models"
	"github.com/regdocgpt/regdocgpt-api/internal/observability"
	"github.com/regdocgpt/regdocgpt-api/internal/repository"
)

const auditVersionKey = "audits:ver"

// AuditRecorder is the append side of the audit log, consumed as a hook by
// the auth and profile services so no register/login outcome goes unrecorded.
type AuditRecorder interface {
	Append(ctx context.Context, req dto.AuditAppendRequest) (int64, error)
}

// AuditService exposes the append-only audit trail plus filtered retrieval.
type AuditService interface {
	AuditRecorder
	AppendUser(ctx context.Context, actor string, userID uint, event, detail string) (int64, error)
	AppendAdmin(ctx context.Context, actor string, adminID uint, event, detail string) (int64, error)
	AppendDual(ctx context.Context, actor string, adminID, userID uint, event, detail string) (int64, error)
	Query(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error)
}

type auditService struct {
	repo      repository.AuditRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAuditService constructs the audit log service. A nil cache client
// disables query caching.
func NewAuditService(repo repository.AuditRepository, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:      repo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "audit_service").Logger(),
		tracer:    otel.Tracer("github.com/regdocgpt/regdocgpt-api/internal/service/audit"),
	}
}

// Append validates and records one entry. A store failure comes back wrapped
// in ErrAuditAppend; callers on the business path treat that as telemetry to
// log, not a reason to roll anything back.
func (s *auditService) Append(ctx context.Context, req dto.AuditAppendRequest) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "audit.append")
	defer span.End()

	req.Actor = strings.TrimSpace(req.Actor)
	req.Event = strings.TrimSpace(req.Event)
	req.ActorRole = strings.ToLower(strings.TrimSpace(req.ActorRole))

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		return 0, err
	}

	entry := models.AuditEntry{
		Actor:     req.Actor,
		ActorRole: req.ActorRole,
		AdminID:   req.AdminID,
		UserID:    req.UserID,
		Event:     req.Event,
		Detail:    req.Detail,
	}
	if req.Timestamp != nil {
		entry.Timestamp = *req.Timestamp
	}

	if err := s.repo.Append(ctx, &entry); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "persistence failed")
		observability.AuditEntries().WithLabelValues("error").Inc()
		return 0, fmt.Errorf("%w: %v", ErrAuditAppend, err)
	}

	observability.AuditEntries().WithLabelValues("ok").Inc()
	s.bumpVersion(ctx)

	return entry.ID, nil
}

// AppendUser records an action attributed to an end user.
func (s *auditService) AppendUser(ctx context.Context, actor string, userID uint, event, detail string) (int64, error) {
	return s.Append(ctx, dto.AuditAppendRequest{
		Actor:     actor,
		ActorRole: models.ActorRoleUser,
		UserID:    &userID,
		Event:     event,
		Detail:    detail,
	})
}

// AppendAdmin records an action attributed to an administrator.
func (s *auditService) AppendAdmin(ctx context.Context, actor string, adminID uint, event, detail string) (int64, error) {
	return s.Append(ctx, dto.AuditAppendRequest{
		Actor:     actor,
		ActorRole: models.ActorRoleAdmin,
		AdminID:   &adminID,
		Event:     event,
		Detail:    detail,
	})
}

// AppendDual records an admin action that targets a user, keeping both ids.
func (s *auditService) AppendDual(ctx context.Context, actor string, adminID, userID uint, event, detail string) (int64, error) {
	return s.Append(ctx, dto.AuditAppendRequest{
		Actor:     actor,
		ActorRole: models.ActorRoleAdmin,
		AdminID:   &adminID,
		UserID:    &userID,
		Event:     event,
		Detail:    detail,
	})
}

func (s *auditService) Query(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "audit.query")
	defer span.End()

	cacheKey := s.queryCacheKey(ctx, req)
	if cacheKey != "" {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AuditListResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				s.logger.Debug().Str("key", cacheKey).Msg("audit query cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read audit query cache")
		}
	}

	entries, err := s.repo.List(ctx, repository.AuditFilter{
		Actor:     strings.TrimSpace(req.Actor),
		ActorRole: strings.ToLower(strings.TrimSpace(req.ActorRole)),
		AdminID:   req.AdminID,
		UserID:    req.UserID,
		Event:     strings.TrimSpace(req.Event),
		Search:    strings.TrimSpace(req.Search),
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		span.RecordError(err)
		return dto.AuditListResponse{}, err
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditEntryResponse(entry))
	}

	limit := req.Limit
	if limit < 1 {
		limit = repository.FallbackAuditLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	response := dto.AuditListResponse{
		Items:  items,
		Count:  len(items),
		Limit:  limit,
		Offset: offset,
	}

	if cacheKey != "" {
		if payload, marshalErr := json.Marshal(response); marshalErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store audit query cache")
			}
		}
	}

	return response, nil
}

// bumpVersion advances the cache generation so queries never serve a page
// predating the newest entry. Cache trouble is never allowed to fail an append.
func (s *auditService) bumpVersion(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, auditVersionKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to bump audit cache version")
	}
}

// queryCacheKey fingerprints the filter under the current cache generation.
// Returns "" when caching is unavailable.
func (s *auditService) queryCacheKey(ctx context.Context, req dto.AuditListRequest) string {
	if s.cache == nil {
		return ""
	}

	version, err := s.cache.Get(ctx, auditVersionKey).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read audit cache version")
			return ""
		}
		version = "0"
	}

	fingerprint, err := json.Marshal(req)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("audits:q:%s:%x", version, sha1.Sum(fingerprint))
}

// Package service orchestrates the farm lifecycle: one use case per business
// operation, each loading the aggregate, invoking its transition, persisting,
// and publishing the resulting domain event.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"agricert/internal/authz"
	"agricert/internal/events"
	farmmetrics "agricert/internal/farm/metrics"
	"agricert/internal/farm/models"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/platform/sentinel"
	"agricert/pkg/requestcontext"
)

// FarmStore is the repository capability the farm use cases depend on.
type FarmStore interface {
	Create(ctx context.Context, farm *models.Farm) error
	FindByID(ctx context.Context, farmID id.FarmID) (*models.Farm, error)
	Update(ctx context.Context, farm *models.Farm) error
	List(ctx context.Context, filters models.ListFilters, page models.Page) ([]*models.Farm, int, error)
}

// EventPublisher attempts delivery of a domain event exactly once per
// transition. Failures are the publisher's concern, not the use case's.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// Service orchestrates farm lifecycle management.
type Service struct {
	farms   FarmStore
	events  EventPublisher
	logger  *slog.Logger
	metrics *farmmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) { s.events = publisher }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *farmmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(farms FarmStore, opts ...Option) *Service {
	s := &Service{
		farms:  farms,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("agricert/farm"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries the caller-supplied farm attributes.
type RegisterInput struct {
	Name     string
	Province string
	District string
	Address  string
}

// Register creates a farm in pending_review owned by the caller.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.Farm, error) {
	ctx, span := s.tracer.Start(ctx, "farm.register")
	defer span.End()

	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	farm, err := models.NewFarm(id.NewFarmID(), claims.UserID, input.Name, input.Province, input.District, input.Address, now)
	if err != nil {
		return nil, err
	}

	if err := s.farms.Create(ctx, farm); err != nil {
		return nil, wrapFarmErr(err)
	}

	s.emit(ctx, models.FarmRegistered{
		FarmID:  farm.ID,
		OwnerID: farm.OwnerID,
		Name:    farm.Name,
		At:      now,
	})
	if s.metrics != nil {
		s.metrics.IncFarmsRegistered()
	}
	s.logger.InfoContext(ctx, "farm registered",
		"farm_id", farm.ID, "owner_id", farm.OwnerID)

	return farm, nil
}

// StartReview assigns the calling reviewer and moves the farm under review.
// Only legal from pending_review; the transition error propagates unchanged.
func (s *Service) StartReview(ctx context.Context, farmID id.FarmID) (*models.Farm, error) {
	ctx, span := s.tracer.Start(ctx, "farm.start_review")
	defer span.End()
	start := time.Now()

	claims, err := requirePermission(ctx, authz.PermFarmReview)
	if err != nil {
		return nil, err
	}
	if farmID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "farm id is required")
	}

	farm, err := s.farms.FindByID(ctx, farmID)
	if err != nil {
		return nil, wrapFarmErr(err)
	}

	now := requestcontext.Now(ctx)
	if err := farm.StartReview(claims.UserID, now); err != nil {
		return nil, err
	}

	if err := s.farms.Update(ctx, farm); err != nil {
		return nil, wrapFarmErr(err)
	}

	s.emit(ctx, models.FarmSubmittedForReview{
		FarmID:     farm.ID,
		ReviewerID: farm.ReviewerID,
		At:         now,
	})
	if s.metrics != nil {
		s.metrics.IncReviewsStarted()
		s.metrics.ObserveStartReview(start)
	}
	s.logger.InfoContext(ctx, "farm review started",
		"farm_id", farm.ID, "reviewer_id", farm.ReviewerID)

	return farm, nil
}

// VerifyInput carries the verification outcome.
type VerifyInput struct {
	Status          models.Status
	Notes           string
	RejectionReason string
}

// CompleteVerification concludes the review. Only the assigned reviewer may
// call it, and only while the farm is under review.
func (s *Service) CompleteVerification(ctx context.Context, farmID id.FarmID, input VerifyInput) (*models.Farm, error) {
	ctx, span := s.tracer.Start(ctx, "farm.complete_verification")
	defer span.End()

	claims, err := requirePermission(ctx, authz.PermFarmReview)
	if err != nil {
		return nil, err
	}
	if farmID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "farm id is required")
	}

	farm, err := s.farms.FindByID(ctx, farmID)
	if err != nil {
		return nil, wrapFarmErr(err)
	}
	if farm.ReviewerID != claims.UserID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the assigned reviewer may complete this verification")
	}

	now := requestcontext.Now(ctx)
	if err := farm.CompleteVerification(input.Status, input.Notes, input.RejectionReason, claims.UserID, now); err != nil {
		return nil, err
	}

	if err := s.farms.Update(ctx, farm); err != nil {
		return nil, wrapFarmErr(err)
	}

	s.emit(ctx, models.FarmVerificationCompleted{
		FarmID:     farm.ID,
		Status:     farm.Status,
		VerifiedBy: farm.VerifiedBy,
		At:         now,
	})
	if s.metrics != nil {
		s.metrics.IncVerificationsCompleted(string(farm.Status))
	}
	s.logger.InfoContext(ctx, "farm verification completed",
		"farm_id", farm.ID, "status", farm.Status, "verified_by", farm.VerifiedBy)

	return farm, nil
}

// Get returns a farm. Owners see their own farms; staff see every farm.
// Existence is checked before ownership, so a forbidden response confirms the
// farm exists. That ordering is deliberate.
func (s *Service) Get(ctx context.Context, farmID id.FarmID) (*models.Farm, error) {
	ctx, span := s.tracer.Start(ctx, "farm.get")
	defer span.End()

	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if farmID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "farm id is required")
	}

	farm, err := s.farms.FindByID(ctx, farmID)
	if err != nil {
		return nil, wrapFarmErr(err)
	}
	if !claims.IsStaff() && !farm.BelongsTo(claims.UserID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "farm belongs to another user")
	}
	return farm, nil
}

// ListResult pairs a page of farms with the unfiltered match count.
type ListResult struct {
	Items []*models.Farm
	Total int
}

// List queries farms. Non-staff callers are always scoped to their own farms
// regardless of the requested filter.
func (s *Service) List(ctx context.Context, filters models.ListFilters, page models.Page) (*ListResult, error) {
	ctx, span := s.tracer.Start(ctx, "farm.list")
	defer span.End()

	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if !claims.IsStaff() {
		filters.OwnerID = claims.UserID
	}

	items, total, err := s.farms.List(ctx, filters, page)
	if err != nil {
		return nil, wrapFarmErr(err)
	}
	return &ListResult{Items: items, Total: total}, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.events != nil {
		s.events.Emit(ctx, event)
	}
}

func requireClaims(ctx context.Context) (authz.Claims, error) {
	claims, ok := requestcontext.Claims(ctx)
	if !ok {
		return authz.Claims{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return claims, nil
}

func requirePermission(ctx context.Context, perm authz.Permission) (authz.Claims, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return authz.Claims{}, err
	}
	if !claims.Allows(perm) {
		return authz.Claims{}, dErrors.Newf(dErrors.CodeForbidden, "missing permission %q", perm)
	}
	return claims, nil
}

func wrapFarmErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "farm not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "farm was modified concurrently, reload and retry")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "farm already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "farm store failure")
	}
}

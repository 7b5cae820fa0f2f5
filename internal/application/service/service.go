// Package service orchestrates the certification-application lifecycle: one
// use case per business operation, each loading the aggregate, invoking its
// transition, persisting, and publishing the resulting domain event.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	appmetrics "agricert/internal/application/metrics"
	"agricert/internal/application/models"
	"agricert/internal/authz"
	"agricert/internal/events"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/platform/sentinel"
	"agricert/pkg/requestcontext"
)

// ApplicationStore is the repository capability the use cases depend on.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	List(ctx context.Context, filters models.ListFilters, page models.Page) ([]*models.Application, int, error)
}

// EventPublisher attempts delivery of a domain event exactly once per
// transition. Failures are the publisher's concern, not the use case's.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// Service orchestrates application lifecycle management.
type Service struct {
	apps    ApplicationStore
	events  EventPublisher
	logger  *slog.Logger
	metrics *appmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) { s.events = publisher }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *appmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(apps ApplicationStore, opts ...Option) *Service {
	s := &Service{
		apps:   apps,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("agricert/application"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the caller-supplied application attributes.
type CreateInput struct {
	PlantType string
}

// Create opens a draft application owned by the caller. Drafts publish no
// event; the lifecycle becomes observable at submission.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.create")
	defer span.End()

	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	app, err := models.NewApplication(id.NewApplicationID(), claims.UserID, input.PlantType, now)
	if err != nil {
		return nil, err
	}

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, wrapApplicationErr(err)
	}

	s.logger.InfoContext(ctx, "application created",
		"application_id", app.ID, "applicant_id", app.ApplicantID)
	return app, nil
}

// Submit moves the caller's application into the review queue. Only the owner
// may submit, and only from draft or revision_required.
func (s *Service) Submit(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.submit")
	defer span.End()

	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if appID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "application id is required")
	}

	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	if !app.BelongsTo(claims.UserID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "application belongs to another user")
	}

	now := requestcontext.Now(ctx)
	if err := app.Submit(now); err != nil {
		return nil, err
	}

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, wrapApplicationErr(err)
	}

	s.emit(ctx, models.ApplicationSubmitted{
		ApplicationID:   app.ID,
		ApplicantID:     app.ApplicantID,
		PlantType:       app.PlantType,
		SubmissionCount: app.SubmissionCount,
		At:              now,
	})
	if s.metrics != nil {
		s.metrics.IncSubmissions()
	}
	s.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID, "submission_count", app.SubmissionCount)

	return app, nil
}

// BeginReview assigns the calling reviewer and takes the application under
// review.
func (s *Service) BeginReview(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.begin_review")
	defer span.End()

	claims, err := requirePermission(ctx, authz.PermApplicationReview)
	if err != nil {
		return nil, err
	}
	if appID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "application id is required")
	}

	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}

	now := requestcontext.Now(ctx)
	if err := app.BeginReview(claims.UserID, now); err != nil {
		return nil, err
	}

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, wrapApplicationErr(err)
	}

	s.emit(ctx, models.ApplicationReviewStarted{
		ApplicationID: app.ID,
		ReviewerID:    app.ReviewerID,
		At:            now,
	})
	if s.metrics != nil {
		s.metrics.IncReviewsStarted()
	}
	s.logger.InfoContext(ctx, "application review started",
		"application_id", app.ID, "reviewer_id", app.ReviewerID)

	return app, nil
}

// RequestRevision sends the application back to the applicant with notes.
// Only the assigned reviewer may call it.
func (s *Service) RequestRevision(ctx context.Context, appID id.ApplicationID, notes string) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.request_revision")
	defer span.End()

	return s.decide(ctx, appID, "revision_requested", func(app *models.Application, now time.Time) (events.Event, error) {
		if err := app.RequestRevision(notes, now); err != nil {
			return nil, err
		}
		return models.ApplicationRevisionRequested{
			ApplicationID: app.ID,
			ApplicantID:   app.ApplicantID,
			Notes:         app.ReviewNotes,
			At:            now,
		}, nil
	})
}

// Approve concludes the review positively. Only the assigned reviewer may
// call it.
func (s *Service) Approve(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.approve")
	defer span.End()

	return s.decide(ctx, appID, "approved", func(app *models.Application, now time.Time) (events.Event, error) {
		if err := app.Approve(now); err != nil {
			return nil, err
		}
		return models.ApplicationApproved{
			ApplicationID: app.ID,
			ApplicantID:   app.ApplicantID,
			ReviewerID:    app.ReviewerID,
			At:            now,
		}, nil
	})
}

// Reject concludes the review negatively with a reason. Only the assigned
// reviewer may call it.
func (s *Service) Reject(ctx context.Context, appID id.ApplicationID, reason string) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.reject")
	defer span.End()

	return s.decide(ctx, appID, "rejected", func(app *models.Application, now time.Time) (events.Event, error) {
		if err := app.Reject(reason, now); err != nil {
			return nil, err
		}
		return models.ApplicationRejected{
			ApplicationID: app.ID,
			ApplicantID:   app.ApplicantID,
			ReviewerID:    app.ReviewerID,
			Reason:        app.RejectionReason,
			At:            now,
		}, nil
	})
}

// decide factors the shared shape of the three review-decision use cases:
// permission check, assigned-reviewer check, transition, save, event.
func (s *Service) decide(ctx context.Context, appID id.ApplicationID, outcome string,
	transition func(app *models.Application, now time.Time) (events.Event, error),
) (*models.Application, error) {
	start := time.Now()

	claims, err := requirePermission(ctx, authz.PermApplicationReview)
	if err != nil {
		return nil, err
	}
	if appID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "application id is required")
	}

	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	if app.ReviewerID != claims.UserID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the assigned reviewer may decide this application")
	}

	now := requestcontext.Now(ctx)
	event, err := transition(app, now)
	if err != nil {
		return nil, err
	}

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, wrapApplicationErr(err)
	}

	s.emit(ctx, event)
	if s.metrics != nil {
		s.metrics.IncDecisions(outcome)
		s.metrics.ObserveDecision(start)
	}
	s.logger.InfoContext(ctx, "application decision recorded",
		"application_id", app.ID, "outcome", outcome, "reviewer_id", app.ReviewerID)

	return app, nil
}

// Get returns an application. Applicants see their own; staff see every one.
// Existence is checked before ownership, so a forbidden response confirms the
// application exists. That ordering is deliberate.
func (s *Service) Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.get")
	defer span.End()

	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if appID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "application id is required")
	}

	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	if !claims.IsStaff() && !app.BelongsTo(claims.UserID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "application belongs to another user")
	}
	return app, nil
}

// ListResult pairs a page of applications with the unfiltered match count.
type ListResult struct {
	Items []*models.Application
	Total int
}

// List queries applications. Non-staff callers are always scoped to their own
// applications regardless of the requested filter.
func (s *Service) List(ctx context.Context, filters models.ListFilters, page models.Page) (*ListResult, error) {
	ctx, span := s.tracer.Start(ctx, "application.list")
	defer span.End()

	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if !claims.IsStaff() {
		filters.ApplicantID = claims.UserID
	}

	items, total, err := s.apps.List(ctx, filters, page)
	if err != nil {
		return nil, wrapApplicationErr(err)
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

func wrapApplicationErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "application was modified concurrently, reload and retry")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "application already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "application store failure")
	}
}

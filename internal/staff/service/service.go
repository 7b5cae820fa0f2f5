// Package service orchestrates staff management. Everything here is
// admin-only through the staff:manage permission.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"agricert/internal/authz"
	"agricert/internal/events"
	"agricert/internal/staff/models"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/platform/sentinel"
	"agricert/pkg/requestcontext"
)

// StaffStore is the repository capability the staff use cases depend on.
type StaffStore interface {
	Create(ctx context.Context, member *models.Staff) error
	FindByID(ctx context.Context, staffID id.UserID) (*models.Staff, error)
	Update(ctx context.Context, member *models.Staff) error
}

// EventPublisher attempts delivery of a domain event exactly once per change.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// Service orchestrates staff management.
type Service struct {
	staff  StaffStore
	events EventPublisher
	logger *slog.Logger
	tracer trace.Tracer
}

type Option func(*Service)

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) { s.events = publisher }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New constructs a Service.
func New(staff StaffStore, opts ...Option) *Service {
	s := &Service{
		staff:  staff,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("agricert/staff"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the new staff member's attributes.
type CreateInput struct {
	Name  string
	Email string
	Role  authz.Role
}

// Create registers a staff member.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Staff, error) {
	ctx, span := s.tracer.Start(ctx, "staff.create")
	defer span.End()

	if _, err := requirePermission(ctx, authz.PermStaffManage); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	member, err := models.NewStaff(id.NewUserID(), input.Name, input.Email, input.Role, now)
	if err != nil {
		return nil, err
	}

	if err := s.staff.Create(ctx, member); err != nil {
		return nil, wrapStaffErr(err)
	}

	s.logger.InfoContext(ctx, "staff member created",
		"staff_id", member.ID, "role", member.Role)
	return member, nil
}

// UpdateRole changes a staff member's role and publishes the change.
func (s *Service) UpdateRole(ctx context.Context, staffID id.UserID, role authz.Role) (*models.Staff, error) {
	ctx, span := s.tracer.Start(ctx, "staff.update_role")
	defer span.End()

	claims, err := requirePermission(ctx, authz.PermStaffManage)
	if err != nil {
		return nil, err
	}
	if staffID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "staff id is required")
	}

	member, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		return nil, wrapStaffErr(err)
	}

	oldRole := member.Role
	now := requestcontext.Now(ctx)
	if err := member.ChangeRole(role, now); err != nil {
		return nil, err
	}

	if err := s.staff.Update(ctx, member); err != nil {
		return nil, wrapStaffErr(err)
	}

	s.emit(ctx, models.StaffRoleUpdated{
		StaffID:   member.ID,
		OldRole:   oldRole,
		NewRole:   member.Role,
		UpdatedBy: claims.UserID,
		At:        now,
	})
	s.logger.InfoContext(ctx, "staff role updated",
		"staff_id", member.ID, "old_role", oldRole, "new_role", member.Role, "updated_by", claims.UserID)

	return member, nil
}

// Get returns a staff member.
func (s *Service) Get(ctx context.Context, staffID id.UserID) (*models.Staff, error) {
	ctx, span := s.tracer.Start(ctx, "staff.get")
	defer span.End()

	if _, err := requirePermission(ctx, authz.PermStaffManage); err != nil {
		return nil, err
	}
	if staffID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "staff id is required")
	}

	member, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		return nil, wrapStaffErr(err)
	}
	return member, nil
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

func wrapStaffErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "staff member not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "staff member was modified concurrently, reload and retry")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "staff member already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "staff store failure")
	}
}

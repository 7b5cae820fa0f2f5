// Package service orchestrates certificate issuance, revocation, and the
// public verification check.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"agricert/internal/authz"
	certmetrics "agricert/internal/certificate/metrics"
	"agricert/internal/certificate/models"
	"agricert/internal/events"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/platform/sentinel"
	"agricert/pkg/requestcontext"
)

// CertificateStore is the repository capability the use cases depend on.
type CertificateStore interface {
	Create(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error)
	FindByNumber(ctx context.Context, number string) (*models.Certificate, error)
	Update(ctx context.Context, cert *models.Certificate) error
	List(ctx context.Context, filters models.ListFilters, page models.Page) ([]*models.Certificate, int, error)
}

// FarmGate answers whether a farm may receive a certificate and who owns it.
type FarmGate interface {
	ApprovedOwner(ctx context.Context, farmID id.FarmID) (id.UserID, error)
}

// EventPublisher attempts delivery of a domain event exactly once per
// transition.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// Service orchestrates the certificate lifecycle.
type Service struct {
	certs   CertificateStore
	farms   FarmGate
	events  EventPublisher
	logger  *slog.Logger
	metrics *certmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) { s.events = publisher }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *certmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(certs CertificateStore, farms FarmGate, opts ...Option) *Service {
	s := &Service{
		certs:  certs,
		farms:  farms,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("agricert/certificate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueInput carries the issuance parameters.
type IssueInput struct {
	FarmID         id.FarmID
	Type           string
	ValidityMonths int
}

// Issue creates an active certificate for an approved farm. The owner is the
// farm owner, not the issuing staff member.
func (s *Service) Issue(ctx context.Context, input IssueInput) (*models.Certificate, error) {
	ctx, span := s.tracer.Start(ctx, "certificate.issue")
	defer span.End()

	claims, err := requirePermission(ctx, authz.PermCertificateIssue)
	if err != nil {
		return nil, err
	}
	if input.FarmID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "farm id is required")
	}

	ownerID, err := s.farms.ApprovedOwner(ctx, input.FarmID)
	if err != nil {
		return nil, err
	}

	months := input.ValidityMonths
	if months <= 0 {
		months = 12
	}

	now := requestcontext.Now(ctx)
	certID := id.NewCertificateID()
	cert, err := models.NewCertificate(certID, newCertificateNumber(certID, now),
		ownerID, input.FarmID, input.Type, now, now.AddDate(0, months, 0), claims.UserID, now)
	if err != nil {
		return nil, err
	}

	if err := s.certs.Create(ctx, cert); err != nil {
		return nil, wrapCertificateErr(err)
	}

	s.emit(ctx, models.CertificateIssued{
		CertificateID: cert.ID,
		Number:        cert.Number,
		OwnerID:       cert.OwnerID,
		FarmID:        cert.FarmID,
		Type:          cert.Type,
		ExpiryDate:    cert.ExpiryDate,
		IssuedBy:      cert.IssuedBy,
		At:            now,
	})
	if s.metrics != nil {
		s.metrics.IncIssued()
	}
	s.logger.InfoContext(ctx, "certificate issued",
		"certificate_id", cert.ID, "number", cert.Number, "farm_id", cert.FarmID)

	return cert, nil
}

// Revoke permanently invalidates a certificate. Irreversible; a second call
// fails with an invalid-state error and the original revocation stands.
func (s *Service) Revoke(ctx context.Context, certID id.CertificateID, reason string) (*models.Certificate, error) {
	ctx, span := s.tracer.Start(ctx, "certificate.revoke")
	defer span.End()

	claims, err := requirePermission(ctx, authz.PermCertificateRevoke)
	if err != nil {
		return nil, err
	}
	if certID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "certificate id is required")
	}

	cert, err := s.certs.FindByID(ctx, certID)
	if err != nil {
		return nil, wrapCertificateErr(err)
	}

	now := requestcontext.Now(ctx)
	if err := cert.Revoke(reason, claims.UserID, now); err != nil {
		return nil, err
	}

	if err := s.certs.Update(ctx, cert); err != nil {
		return nil, wrapCertificateErr(err)
	}

	s.emit(ctx, models.CertificateRevoked{
		CertificateID: cert.ID,
		Number:        cert.Number,
		Reason:        cert.RevocationReason,
		RevokedBy:     cert.RevokedBy,
		At:            now,
	})
	if s.metrics != nil {
		s.metrics.IncRevoked()
	}
	s.logger.InfoContext(ctx, "certificate revoked",
		"certificate_id", cert.ID, "number", cert.Number, "revoked_by", cert.RevokedBy)

	return cert, nil
}

// VerificationResult is the public answer for a certificate number.
type VerificationResult struct {
	Number      string    `json:"number"`
	Valid       bool      `json:"valid"`
	Status      Status    `json:"status"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Fingerprint string    `json:"fingerprint"`
}

// Status aliases the model status for the response shape.
type Status = models.Status

// Verify answers whether the certificate numbered number vouches for its farm
// right now. Public: no claims required.
func (s *Service) Verify(ctx context.Context, number string) (*VerificationResult, error) {
	ctx, span := s.tracer.Start(ctx, "certificate.verify")
	defer span.End()

	number = strings.TrimSpace(number)
	if number == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "certificate number is required")
	}

	cert, err := s.certs.FindByNumber(ctx, number)
	if err != nil {
		if s.metrics != nil && errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncVerifications("not_found")
		}
		return nil, wrapCertificateErr(err)
	}

	valid := cert.IsValid(requestcontext.Now(ctx))
	if s.metrics != nil {
		if valid {
			s.metrics.IncVerifications("valid")
		} else {
			s.metrics.IncVerifications("invalid")
		}
	}
	return &VerificationResult{
		Number:      cert.Number,
		Valid:       valid,
		Status:      cert.Status,
		ExpiryDate:  cert.ExpiryDate,
		Fingerprint: cert.Fingerprint(),
	}, nil
}

// Get returns a certificate. Owners see their own; staff see every one.
// Existence is checked before ownership, deliberately.
func (s *Service) Get(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	ctx, span := s.tracer.Start(ctx, "certificate.get")
	defer span.End()

	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if certID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "certificate id is required")
	}

	cert, err := s.certs.FindByID(ctx, certID)
	if err != nil {
		return nil, wrapCertificateErr(err)
	}
	if !claims.IsStaff() && !claims.Owns(cert.OwnerID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "certificate belongs to another user")
	}
	return cert, nil
}

// ListResult pairs a page of certificates with the unfiltered match count.
type ListResult struct {
	Items []*models.Certificate
	Total int
}

// List queries certificates. Non-staff callers are always scoped to their own
// certificates regardless of the requested filter.
func (s *Service) List(ctx context.Context, filters models.ListFilters, page models.Page) (*ListResult, error) {
	ctx, span := s.tracer.Start(ctx, "certificate.list")
	defer span.End()

	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if !claims.IsStaff() {
		filters.OwnerID = claims.UserID
	}

	items, total, err := s.certs.List(ctx, filters, page)
	if err != nil {
		return nil, wrapCertificateErr(err)
	}
	return &ListResult{Items: items, Total: total}, nil
}

// newCertificateNumber derives a human-quotable number from the certificate
// id, so uniqueness rides on the id and the year stays readable.
func newCertificateNumber(certID id.CertificateID, now time.Time) string {
	compact := strings.ToUpper(strings.ReplaceAll(certID.String(), "-", ""))
	return fmt.Sprintf("AGC-%d-%s", now.Year(), compact[:12])
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

func wrapCertificateErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "certificate not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "certificate was modified concurrently, reload and retry")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "certificate number already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "certificate store failure")
	}
}

// Package handler is the thin HTTP layer for the certificate module. The
// verification endpoint is public; everything else sits behind auth.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agricert/internal/certificate/models"
	"agricert/internal/certificate/service"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/platform/httputil"
)

// CertificateService is the slice of the certificate service the handler
// needs.
type CertificateService interface {
	Issue(ctx context.Context, input service.IssueInput) (*models.Certificate, error)
	Revoke(ctx context.Context, certID id.CertificateID, reason string) (*models.Certificate, error)
	Verify(ctx context.Context, number string) (*service.VerificationResult, error)
	Get(ctx context.Context, certID id.CertificateID) (*models.Certificate, error)
	List(ctx context.Context, filters models.ListFilters, page models.Page) (*service.ListResult, error)
}

type Handler struct {
	service CertificateService
}

func New(service CertificateService) *Handler {
	return &Handler{service: service}
}

// Routes mounts the authenticated certificate endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.issue)
	r.Get("/", h.list)
	r.Get("/{certificateID}", h.get)
	r.Post("/{certificateID}/revocation", h.revoke)
	return r
}

// PublicRoutes mounts the unauthenticated verification endpoint.
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{number}", h.verify)
	return r
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req IssueCertificateRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	farmID, err := id.ParseFarmID(req.FarmID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cert, err := h.service.Issue(r.Context(), service.IssueInput{
		FarmID:         farmID,
		Type:           req.Type,
		ValidityMonths: req.ValidityMonths,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, cert)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	certID, err := id.ParseCertificateID(chi.URLParam(r, "certificateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req RevokeCertificateRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	cert, err := h.service.Revoke(r.Context(), certID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cert)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Verify(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	certID, err := id.ParseCertificateID(chi.URLParam(r, "certificateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cert, err := h.service.Get(r.Context(), certID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cert)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters, page, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.List(r.Context(), filters, page)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Items: result.Items, Total: result.Total})
}

type listResponse struct {
	Items []*models.Certificate `json:"items"`
	Total int                   `json:"total"`
}

func decodeJSON(r *http.Request, v interface{ Validate() error }) error {
	if err := jsonDecode(r, v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return v.Validate()
}

// Package handler is the thin HTTP layer for the application module. It
// decodes requests, delegates to the service, and shapes responses; no
// business rules live here.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agricert/internal/application/models"
	"agricert/internal/application/service"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/platform/httputil"
)

// ApplicationService is the slice of the application service the handler
// needs.
type ApplicationService interface {
	Create(ctx context.Context, input service.CreateInput) (*models.Application, error)
	Submit(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	BeginReview(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	RequestRevision(ctx context.Context, appID id.ApplicationID, notes string) (*models.Application, error)
	Approve(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	Reject(ctx context.Context, appID id.ApplicationID, reason string) (*models.Application, error)
	Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	List(ctx context.Context, filters models.ListFilters, page models.Page) (*service.ListResult, error)
}

type Handler struct {
	service ApplicationService
}

func New(service ApplicationService) *Handler {
	return &Handler{service: service}
}

// Routes mounts the application endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{applicationID}", h.get)
	r.Post("/{applicationID}/submission", h.submit)
	r.Post("/{applicationID}/review", h.beginReview)
	r.Post("/{applicationID}/revision-request", h.requestRevision)
	r.Post("/{applicationID}/approval", h.approve)
	r.Post("/{applicationID}/rejection", h.reject)
	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Create(r.Context(), service.CreateInput{PlantType: req.PlantType})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Submit)
}

func (h *Handler) beginReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.BeginReview)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

// transition handles the body-less lifecycle endpoints.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, appID id.ApplicationID) (*models.Application, error),
) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := op(r.Context(), appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) requestRevision(w http.ResponseWriter, r *http.Request) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req RevisionRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.RequestRevision(r.Context(), appID, req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req RejectionRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Reject(r.Context(), appID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Get(r.Context(), appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
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
	Items []*models.Application `json:"items"`
	Total int                   `json:"total"`
}

func decodeJSON(r *http.Request, v interface{ Validate() error }) error {
	if err := jsonDecode(r, v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return v.Validate()
}

// Package handler is the thin HTTP layer for the farm module. It decodes
// requests, delegates to the service, and shapes responses; no business rules
// live here.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agricert/internal/farm/models"
	"agricert/internal/farm/service"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/platform/httputil"
)

// FarmService is the slice of the farm service the handler needs.
type FarmService interface {
	Register(ctx context.Context, input service.RegisterInput) (*models.Farm, error)
	StartReview(ctx context.Context, farmID id.FarmID) (*models.Farm, error)
	CompleteVerification(ctx context.Context, farmID id.FarmID, input service.VerifyInput) (*models.Farm, error)
	Get(ctx context.Context, farmID id.FarmID) (*models.Farm, error)
	List(ctx context.Context, filters models.ListFilters, page models.Page) (*service.ListResult, error)
}

type Handler struct {
	service FarmService
}

func New(service FarmService) *Handler {
	return &Handler{service: service}
}

// Routes mounts the farm endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.register)
	r.Get("/", h.list)
	r.Get("/{farmID}", h.get)
	r.Post("/{farmID}/review", h.startReview)
	r.Post("/{farmID}/verification", h.completeVerification)
	return r
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterFarmRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	farm, err := h.service.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Province: req.Province,
		District: req.District,
		Address:  req.Address,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, farm)
}

func (h *Handler) startReview(w http.ResponseWriter, r *http.Request) {
	farmID, err := id.ParseFarmID(chi.URLParam(r, "farmID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	farm, err := h.service.StartReview(r.Context(), farmID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, farm)
}

func (h *Handler) completeVerification(w http.ResponseWriter, r *http.Request) {
	farmID, err := id.ParseFarmID(chi.URLParam(r, "farmID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req CompleteVerificationRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	farm, err := h.service.CompleteVerification(r.Context(), farmID, service.VerifyInput{
		Status:          models.Status(req.Status),
		Notes:           req.Notes,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, farm)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	farmID, err := id.ParseFarmID(chi.URLParam(r, "farmID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	farm, err := h.service.Get(r.Context(), farmID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, farm)
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
	Items []*models.Farm `json:"items"`
	Total int            `json:"total"`
}

func decodeJSON(r *http.Request, v interface{ Validate() error }) error {
	if err := jsonDecode(r, v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return v.Validate()
}

// Package handler is the thin HTTP layer for staff management.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agricert/internal/authz"
	"agricert/internal/staff/models"
	"agricert/internal/staff/service"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/platform/httputil"
)

// StaffService is the slice of the staff service the handler needs.
type StaffService interface {
	Create(ctx context.Context, input service.CreateInput) (*models.Staff, error)
	UpdateRole(ctx context.Context, staffID id.UserID, role authz.Role) (*models.Staff, error)
	Get(ctx context.Context, staffID id.UserID) (*models.Staff, error)
}

type Handler struct {
	service StaffService
}

func New(service StaffService) *Handler {
	return &Handler{service: service}
}

// Routes mounts the staff endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/{staffID}", h.get)
	r.Put("/{staffID}/role", h.updateRole)
	return r
}

// CreateStaffRequest is the staff creation payload.
type CreateStaffRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (r *CreateStaffRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Role == "" {
		return dErrors.New(dErrors.CodeValidation, "role is required")
	}
	return nil
}

// UpdateRoleRequest carries the new role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (r *UpdateRoleRequest) Validate() error {
	if r.Role == "" {
		return dErrors.New(dErrors.CodeValidation, "role is required")
	}
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	member, err := h.service.Create(r.Context(), service.CreateInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  authz.Role(req.Role),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, member)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	staffID, err := id.ParseUserID(chi.URLParam(r, "staffID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req UpdateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	member, err := h.service.UpdateRole(r.Context(), staffID, authz.Role(req.Role))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	staffID, err := id.ParseUserID(chi.URLParam(r, "staffID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	member, err := h.service.Get(r.Context(), staffID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

func decodeJSON(r *http.Request, v interface{ Validate() error }) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return v.Validate()
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agricert/internal/farm/models"
	dErrors "agricert/pkg/domain-errors"
)

// RegisterFarmRequest is the registration payload.
type RegisterFarmRequest struct {
	Name     string `json:"name"`
	Province string `json:"province"`
	District string `json:"district"`
	Address  string `json:"address"`
}

func (r *RegisterFarmRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// CompleteVerificationRequest carries the review outcome.
type CompleteVerificationRequest struct {
	Status          string `json:"status"`
	Notes           string `json:"notes"`
	RejectionReason string `json:"rejection_reason"`
}

func (r *CompleteVerificationRequest) Validate() error {
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	return nil
}

func jsonDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseListQuery(r *http.Request) (models.ListFilters, models.Page, error) {
	var filters models.ListFilters
	var page models.Page

	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		parsed := models.Status(status)
		if !parsed.Valid() {
			return filters, page, dErrors.Newf(dErrors.CodeValidation, "unknown status %q", status)
		}
		filters.Status = parsed
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return filters, page, dErrors.New(dErrors.CodeValidation, "limit must be an integer")
		}
		page.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return filters, page, dErrors.New(dErrors.CodeValidation, "offset must be an integer")
		}
		page.Offset = offset
	}
	return filters, page, nil
}

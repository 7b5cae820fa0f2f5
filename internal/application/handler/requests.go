package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agricert/internal/application/models"
	dErrors "agricert/pkg/domain-errors"
)

// CreateApplicationRequest is the draft-creation payload.
type CreateApplicationRequest struct {
	PlantType string `json:"plant_type"`
}

func (r *CreateApplicationRequest) Validate() error {
	if r.PlantType == "" {
		return dErrors.New(dErrors.CodeValidation, "plant_type is required")
	}
	return nil
}

// RevisionRequest carries the reviewer's notes back to the applicant.
type RevisionRequest struct {
	Notes string `json:"notes"`
}

func (r *RevisionRequest) Validate() error {
	if r.Notes == "" {
		return dErrors.New(dErrors.CodeValidation, "notes are required")
	}
	return nil
}

// RejectionRequest carries the terminal rejection reason.
type RejectionRequest struct {
	Reason string `json:"reason"`
}

// Validate is intentionally lenient on the reason; the aggregate owns the
// non-empty rule so the service reports it consistently.
func (r *RejectionRequest) Validate() error { return nil }

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

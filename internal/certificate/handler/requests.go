package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agricert/internal/certificate/models"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
)

// IssueCertificateRequest is the issuance payload.
type IssueCertificateRequest struct {
	FarmID         string `json:"farm_id"`
	Type           string `json:"type"`
	ValidityMonths int    `json:"validity_months"`
}

func (r *IssueCertificateRequest) Validate() error {
	if r.FarmID == "" {
		return dErrors.New(dErrors.CodeValidation, "farm_id is required")
	}
	if r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "type is required")
	}
	if r.ValidityMonths < 0 {
		return dErrors.New(dErrors.CodeValidation, "validity_months must not be negative")
	}
	return nil
}

// RevokeCertificateRequest carries the revocation reason.
type RevokeCertificateRequest struct {
	Reason string `json:"reason"`
}

// Validate is intentionally lenient on the reason; the aggregate owns the
// non-empty rule so the service reports it consistently.
func (r *RevokeCertificateRequest) Validate() error { return nil }

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
	if raw := query.Get("farm_id"); raw != "" {
		farmID, err := id.ParseFarmID(raw)
		if err != nil {
			return filters, page, err
		}
		filters.FarmID = farmID
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

package service

import (
	"context"
	"errors"

	farmmodels "agricert/internal/farm/models"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/platform/sentinel"
)

// FarmReader is the slice of the farm store issuance needs.
type FarmReader interface {
	FindByID(ctx context.Context, farmID id.FarmID) (*farmmodels.Farm, error)
}

// StoreFarmGate answers the issuance precondition from the farm store:
// certificates may only be issued for approved farms, and the certificate
// owner is the farm owner.
type StoreFarmGate struct {
	farms FarmReader
}

func NewStoreFarmGate(farms FarmReader) StoreFarmGate {
	return StoreFarmGate{farms: farms}
}

func (g StoreFarmGate) ApprovedOwner(ctx context.Context, farmID id.FarmID) (id.UserID, error) {
	farm, err := g.farms.FindByID(ctx, farmID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.UserID{}, dErrors.New(dErrors.CodeNotFound, "farm not found")
		}
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "farm lookup failure")
	}
	if farm.Status != farmmodels.StatusApproved {
		return id.UserID{}, dErrors.Newf(dErrors.CodeInvalidState,
			"farm is %q, certificates require an approved farm", farm.Status)
	}
	return farm.OwnerID, nil
}

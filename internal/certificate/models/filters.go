package models

import id "agricert/pkg/domain"

// ListFilters narrows certificate queries. Zero values mean "no constraint".
type ListFilters struct {
	OwnerID id.UserID
	FarmID  id.FarmID
	Status  Status
}

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies the default page size and caps runaway limits.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

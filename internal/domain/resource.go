package domain

import "github.com/google/uuid"

// ResourceType distinguishes the rentable object kinds on the marina map.
type ResourceType string

const (
	TypeBerth  ResourceType = "berth"
	TypeSeaHut ResourceType = "sea_hut"
	TypeBox    ResourceType = "box"
)

// OccupancyStatus is derived from the occupant set and must never disagree
// with it: Occupied if and only if at least one occupant is linked.
type OccupancyStatus string

const (
	StatusAvailable OccupancyStatus = "available"
	StatusOccupied  OccupancyStatus = "occupied"
)

// TenantContact is the name/phone/email snapshot stored on a resource for
// each tenant, taken from the tenant's profile at assignment time.
type TenantContact struct {
	UID   uuid.UUID `json:"uid"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Email string    `json:"email"`
}

// Resource is the occupancy ledger for one berth, sea hut or box.
type Resource struct {
	ID          uuid.UUID
	Type        ResourceType
	MarkingCode string
	DockID      uuid.UUID
	DockName    string
	Status      OccupancyStatus
	OccupantIDs []uuid.UUID
	Tenants     []TenantContact

	InvoiceResponsibleID *uuid.UUID

	AllowSecondHand           bool
	SecondHandTenantID        *uuid.UUID
	InvoiceSecondHandDirectly bool

	// Prices maps season year to the whole-kronor price. LegacyPrice is the
	// old single-price column kept as the last fallback.
	Prices      map[int]int64
	LegacyPrice *int64

	// Contact data entered by the office before the occupant had an account,
	// matched by the identity resolver.
	OccupantPhone string
	OccupantEmail string
}

// HasOccupant reports whether the account is already linked as an occupant.
func (r *Resource) HasOccupant(accountID uuid.UUID) bool {
	for _, id := range r.OccupantIDs {
		if id == accountID {
			return true
		}
	}
	return false
}

// RecomputeStatus re-derives Status from the occupant set.
func (r *Resource) RecomputeStatus() {
	if len(r.OccupantIDs) > 0 {
		r.Status = StatusOccupied
	} else {
		r.Status = StatusAvailable
	}
}

// AppendOccupant links an account as occupant if not already linked, keeping
// Status consistent. Returns true if a new link was made.
func (r *Resource) AppendOccupant(accountID uuid.UUID) bool {
	if r.HasOccupant(accountID) {
		return false
	}
	r.OccupantIDs = append(r.OccupantIDs, accountID)
	r.RecomputeStatus()
	return true
}

// AddTenant records a contact snapshot for the account. If an entry for the
// same account already exists it is refreshed in place, never duplicated.
func (r *Resource) AddTenant(contact TenantContact) {
	for i, t := range r.Tenants {
		if t.UID == contact.UID {
			r.Tenants[i] = contact
			return
		}
	}
	r.Tenants = append(r.Tenants, contact)
}

// AssignOccupants replaces the occupant set and re-derives Status.
func (r *Resource) AssignOccupants(accountIDs []uuid.UUID) {
	r.OccupantIDs = accountIDs
	r.RecomputeStatus()
}

// SetInvoiceResponsible points billing at one of the listed tenants.
func (r *Resource) SetInvoiceResponsible(accountID uuid.UUID) error {
	for _, t := range r.Tenants {
		if t.UID == accountID {
			id := accountID
			r.InvoiceResponsibleID = &id
			return nil
		}
	}
	return ErrNotListedTenant
}

// RemoveTenant drops the account from both the tenant list and the occupant
// set. If it was invoice responsible, billing moves to the first remaining
// tenant, or is cleared when none remain.
func (r *Resource) RemoveTenant(accountID uuid.UUID) {
	tenants := r.Tenants[:0]
	for _, t := range r.Tenants {
		if t.UID != accountID {
			tenants = append(tenants, t)
		}
	}
	r.Tenants = tenants

	occupants := r.OccupantIDs[:0]
	for _, id := range r.OccupantIDs {
		if id != accountID {
			occupants = append(occupants, id)
		}
	}
	r.OccupantIDs = occupants
	r.RecomputeStatus()

	if r.InvoiceResponsibleID != nil && *r.InvoiceResponsibleID == accountID {
		if len(r.Tenants) > 0 {
			id := r.Tenants[0].UID
			r.InvoiceResponsibleID = &id
		} else {
			r.InvoiceResponsibleID = nil
		}
	}
}

// SetSecondHand toggles the second-hand allowance. Disabling clears the
// dependent fields together so they are never left stale.
func (r *Resource) SetSecondHand(enabled bool) {
	r.AllowSecondHand = enabled
	if !enabled {
		r.SecondHandTenantID = nil
		r.InvoiceSecondHandDirectly = false
	}
}

// SetSecondHandTenant records the sub-tenant. The sub-tenant must not also be
// a primary occupant.
func (r *Resource) SetSecondHandTenant(accountID uuid.UUID, invoiceDirectly bool) error {
	if !r.AllowSecondHand {
		return ErrForbidden
	}
	if r.HasOccupant(accountID) {
		return ErrConflict
	}
	id := accountID
	r.SecondHandTenantID = &id
	r.InvoiceSecondHandDirectly = invoiceDirectly
	return nil
}

// DefaultPrice resolves the price to pre-fill for the given season year:
// this year's price, last year's, then the legacy single price. It never
// invents a number; ok is false when nothing is recorded.
func (r *Resource) DefaultPrice(year int) (price int64, ok bool) {
	if p, found := r.Prices[year]; found {
		return p, true
	}
	if p, found := r.Prices[year-1]; found {
		return p, true
	}
	if r.LegacyPrice != nil {
		return *r.LegacyPrice, true
	}
	return 0, false
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// OfferStatus tracks the fate of an offer-bearing reply. Both accepted and
// declined are terminal and must never be overwritten.
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferDeclined OfferStatus = "declined"
)

// CanTransitionTo reports whether moving from s to next is legal.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	if s == OfferPending {
		return next == OfferAccepted || next == OfferDeclined
	}
	return false
}

// OfferedBerth is one concrete, optionally priced berth proposal inside a
// reply.
type OfferedBerth struct {
	BerthID   uuid.UUID `json:"berth_id"`
	BerthCode string    `json:"berth_code"`
	DockName  string    `json:"dock_name"`
	Price     *int64    `json:"price,omitempty"`
}

// Reply is a manager's response on an interest. A reply with no offered
// berths is a plain message and carries no offer status.
type Reply struct {
	ID         uuid.UUID
	InterestID uuid.UUID

	AuthorID    uuid.UUID
	AuthorName  string
	AuthorEmail string
	AuthorPhone string

	Message   string
	CreatedAt time.Time

	OfferedBerths []OfferedBerth
	OfferStatus   *OfferStatus
}

// HasOffer reports whether the reply carries at least one offered berth.
func (r *Reply) HasOffer() bool {
	return len(r.OfferedBerths) > 0
}

// PendingOfferFor returns the offered berth matching berthID, provided the
// reply's offer is still pending.
func (r *Reply) PendingOfferFor(berthID uuid.UUID) (OfferedBerth, bool) {
	if !r.HasOffer() || r.OfferStatus == nil || *r.OfferStatus != OfferPending {
		return OfferedBerth{}, false
	}
	for _, o := range r.OfferedBerths {
		if o.BerthID == berthID {
			return o, true
		}
	}
	return OfferedBerth{}, false
}

// setOfferStatus applies a transition, rejecting any move out of a terminal
// state.
func (r *Reply) setOfferStatus(next OfferStatus) error {
	if r.OfferStatus == nil {
		return ErrInvalidTransition
	}
	if !r.OfferStatus.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	s := next
	r.OfferStatus = &s
	return nil
}

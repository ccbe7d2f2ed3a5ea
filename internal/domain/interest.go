package domain

import (
	"time"

	"github.com/google/uuid"
)

// InterestStatus tracks where an interest is in the negotiation. The machine
// is deliberately loose: managers may set any status by hand, except that
// nothing ever leaves Resolved.
type InterestStatus string

const (
	InterestPending   InterestStatus = "pending"
	InterestContacted InterestStatus = "contacted"
	InterestResolved  InterestStatus = "resolved"
)

// Valid reports whether s is a known status value.
func (s InterestStatus) Valid() bool {
	switch s {
	case InterestPending, InterestContacted, InterestResolved:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal. Manual
// overrides are legal transitions; Resolved is terminal.
func (s InterestStatus) CanTransitionTo(next InterestStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == InterestResolved {
		return next == InterestResolved
	}
	return true
}

// Interest is a prospective tenant's expressed wish for a berth or dock.
type Interest struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// Contact snapshot taken from the intake form.
	UserName string
	Email    string
	Phone    string

	BoatLength float64
	BoatBeam   float64
	BoatDepth  float64

	PreferredDockID  *uuid.UUID
	PreferredBerthID *uuid.UUID
	Message          string
	ImageURL         string

	Status            InterestStatus
	CreatedAt         time.Time
	LastSeenRepliesAt *time.Time

	// Set once, by the acceptance transaction.
	AcceptedOfferID   *uuid.UUID
	AcceptedBerthID   *uuid.UUID
	AcceptedBerthCode string
}

// Resolve marks the interest resolved by the given accepted offer. It fails
// if the interest is already resolved.
func (i *Interest) Resolve(offerID, berthID uuid.UUID, berthCode string) error {
	if i.Status == InterestResolved {
		return ErrConflict
	}
	i.Status = InterestResolved
	i.AcceptedOfferID = &offerID
	i.AcceptedBerthID = &berthID
	i.AcceptedBerthCode = berthCode
	return nil
}

// VisibleTo reports whether the interest falls inside the actor's dock
// scope. Superadmins see everything; a dock manager sees interests with no
// preferred dock, or whose preferred dock they manage. This mirrors the
// server-side filter and is not itself a security boundary.
func (i *Interest) VisibleTo(actor Actor) bool {
	if actor.Role == RoleSuperadmin {
		return true
	}
	if !actor.IsManager() {
		return i.UserID == actor.AccountID
	}
	if i.PreferredDockID == nil {
		return true
	}
	return actor.ManagesDock(*i.PreferredDockID)
}

package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// AcceptanceCommand names the offer a tenant is accepting, together with the
// profile snapshot to record on the occupancy ledger.
type AcceptanceCommand struct {
	InterestID uuid.UUID
	ReplyID    uuid.UUID
	BerthID    uuid.UUID
	Tenant     TenantContact
	Year       int
}

// AcceptanceOutcome lists the documents mutated by a committed acceptance.
// Storage implementations persist exactly these and nothing else.
type AcceptanceOutcome struct {
	Resource       *Resource
	Interest       *Interest
	AcceptedReply  *Reply
	DeclinedReplies []*Reply
	Price          *int64
}

// CommitAcceptance applies the acceptance of one offer to freshly loaded
// documents: precondition check, occupancy commit, interest resolution and
// the decline cascade, in that order. It either mutates everything or, on a
// failed precondition, nothing. Callers must hold the documents exclusively
// (row locks in the SQL store) and persist the outcome in one transaction.
func CommitAcceptance(resource *Resource, interest *Interest, replies []*Reply, cmd AcceptanceCommand) (*AcceptanceOutcome, error) {
	// Precondition: the berth must still be free and the interest unresolved.
	// This is re-checked here, under locks, regardless of what the caller saw
	// earlier; two acceptance attempts must serialize on it.
	if resource.Status != StatusAvailable {
		return nil, fmt.Errorf("berth %s is no longer available: %w", resource.MarkingCode, ErrConflict)
	}
	if interest.Status == InterestResolved {
		return nil, fmt.Errorf("interest %s is already resolved: %w", interest.ID, ErrConflict)
	}

	var accepted *Reply
	for _, r := range replies {
		if r.ID == cmd.ReplyID {
			accepted = r
			break
		}
	}
	if accepted == nil {
		return nil, fmt.Errorf("reply %s: %w", cmd.ReplyID, ErrNotFound)
	}
	offer, ok := accepted.PendingOfferFor(cmd.BerthID)
	if !ok {
		return nil, ErrNoPendingOffer
	}

	// Occupancy commit.
	resource.AppendOccupant(cmd.Tenant.UID)
	resource.AddTenant(cmd.Tenant)
	if err := resource.SetInvoiceResponsible(cmd.Tenant.UID); err != nil {
		return nil, err
	}
	if offer.Price != nil {
		if resource.Prices == nil {
			resource.Prices = make(map[int]int64)
		}
		resource.Prices[cmd.Year] = *offer.Price
	}

	// Interest resolution.
	if err := interest.Resolve(accepted.ID, offer.BerthID, offer.BerthCode); err != nil {
		return nil, err
	}

	// Decline cascade over sibling offers. Plain-message replies and already
	// terminal offers are left untouched.
	var declined []*Reply
	for _, r := range replies {
		if r.ID == accepted.ID || !r.HasOffer() {
			continue
		}
		if r.OfferStatus != nil && *r.OfferStatus == OfferPending {
			if err := r.setOfferStatus(OfferDeclined); err != nil {
				return nil, err
			}
			declined = append(declined, r)
		}
	}
	if err := accepted.setOfferStatus(OfferAccepted); err != nil {
		return nil, err
	}

	return &AcceptanceOutcome{
		Resource:        resource,
		Interest:        interest,
		AcceptedReply:   accepted,
		DeclinedReplies: declined,
		Price:           offer.Price,
	}, nil
}

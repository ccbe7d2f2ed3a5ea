package domain

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a write lost a race: the precondition it was
	// committed under no longer holds (berth taken, interest resolved).
	ErrConflict = errors.New("conflict")

	// ErrForbidden indicates the actor is not allowed to perform the
	// operation on the target document.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition indicates a status change that the negotiation
	// state machine does not permit, e.g. leaving a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoPendingOffer indicates an acceptance referenced a reply that does
	// not carry a pending offer for the chosen berth.
	ErrNoPendingOffer = errors.New("reply has no pending offer for berth")

	// ErrNotListedTenant indicates an invoice-responsible assignment to an
	// account that is not among the resource's tenants.
	ErrNotListedTenant = errors.New("account is not a listed tenant")
)

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountRepository reads identities owned by the external auth subsystem.
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// List returns every account, used by the bulk reconciliation job.
	List(ctx context.Context) ([]*Account, error)
}

// ResourceRepository persists the occupancy ledger.
type ResourceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Resource, error)
	// ListOfferable returns available berths, restricted to the given docks.
	// A nil dock filter means no restriction.
	ListOfferable(ctx context.Context, dockIDs []uuid.UUID) ([]*Resource, error)
	// ListByContact returns resources whose stored contact fields match the
	// given canonical phone or lowercased email.
	ListByContact(ctx context.Context, phone, email string) ([]*Resource, error)
	// AppendOccupant idempotently links the account as an occupant and
	// re-derives status. Returns true when a new link was made.
	AppendOccupant(ctx context.Context, resourceID, accountID uuid.UUID) (bool, error)
	Update(ctx context.Context, resource *Resource) error
}

// LandStorageRepository persists the land storage ledger.
type LandStorageRepository interface {
	ListByContact(ctx context.Context, phone, email string) ([]*LandStorageEntry, error)
	// SetOccupant links the account to the entry unless another account is
	// already linked. Returns true when a new link was made.
	SetOccupant(ctx context.Context, code string, accountID uuid.UUID) (bool, error)
}

// InterestRepository persists interests. Status writes go through
// UpdateStatus, which enforces the transition rules at the data-access layer.
type InterestRepository interface {
	Create(ctx context.Context, interest *Interest) error
	FindByID(ctx context.Context, id uuid.UUID) (*Interest, error)
	// ListVisible returns interests inside the dock scope: those with no
	// preferred dock plus those preferring one of dockIDs. A nil filter
	// means all interests.
	ListVisible(ctx context.Context, dockIDs []uuid.UUID) ([]*Interest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next InterestStatus) error
	MarkRepliesSeen(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ReplyRepository persists replies under their interest.
type ReplyRepository interface {
	Create(ctx context.Context, reply *Reply) error
	ListByInterest(ctx context.Context, interestID uuid.UUID) ([]*Reply, error)
}

// AcceptanceStore runs the acceptance commit as one atomic unit: load the
// documents under locks, apply CommitAcceptance, persist the outcome.
type AcceptanceStore interface {
	Accept(ctx context.Context, cmd AcceptanceCommand) (*AcceptanceOutcome, error)
}

// ChangeFeed fans out best-effort document-change notices for live list
// views.
type ChangeFeed interface {
	Publish(ctx context.Context, notice ChangeNotice) error
	Subscribe(ctx context.Context) (<-chan ChangeNotice, error)
}

// AcceptanceOutbox buffers acceptance events between the commit and the
// notification dispatcher.
type AcceptanceOutbox interface {
	Enqueue(ctx context.Context, event AcceptanceEvent) error
	// Read returns up to count pending events for this consumer.
	Read(ctx context.Context, count int) ([]AcceptanceEvent, error)
	// Ack marks events handled. Events are acked even when the SMS send
	// failed; delivery is best-effort and never retried.
	Ack(ctx context.Context, messageIDs ...string) error
}

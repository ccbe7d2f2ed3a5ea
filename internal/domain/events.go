package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind classifies the document-change notices fanned out to live list
// views.
type ChangeKind string

const (
	ChangeInterestCreated  ChangeKind = "interest_created"
	ChangeInterestUpdated  ChangeKind = "interest_updated"
	ChangeReplyAdded       ChangeKind = "reply_added"
	ChangeInterestResolved ChangeKind = "interest_resolved"
	ChangeResourceUpdated  ChangeKind = "resource_updated"
)

// ChangeNotice is a small best-effort hint that a document changed. List
// views re-fetch on receipt; a lost notice only delays them until the next
// poll.
type ChangeNotice struct {
	Kind       ChangeKind `json:"kind"`
	InterestID uuid.UUID  `json:"interest_id,omitempty"`
	ResourceID uuid.UUID  `json:"resource_id,omitempty"`
	At         time.Time  `json:"at"`
}

// Recipient is the addressing slice of an account needed to notify it.
type Recipient struct {
	AccountID uuid.UUID `json:"account_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
}

// AcceptanceEvent is placed on the outbox stream after an acceptance commits.
// It carries everything the notifier needs so it never has to re-read the
// negotiation documents.
type AcceptanceEvent struct {
	InterestID  uuid.UUID   `json:"interest_id"`
	BerthCode   string      `json:"berth_code"`
	TenantName  string      `json:"tenant_name"`
	Winner      Recipient   `json:"winner"`
	Losers      []Recipient `json:"losers"`
	CommittedAt time.Time   `json:"committed_at"`

	// StreamMessageID is set by the outbox on read, for acknowledgement.
	StreamMessageID string `json:"-"`
}

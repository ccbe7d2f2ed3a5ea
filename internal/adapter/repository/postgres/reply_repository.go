package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/domain"
)

const replyColumns = `
	id, interest_id, author_id, author_name, author_email, author_phone,
	message, created_at, offered_berths, offer_status,
	legacy_berth_id, legacy_berth_code, legacy_dock_name, legacy_price`

// ReplyRepository implements domain.ReplyRepository for PostgreSQL. Old rows
// carry the single-offer columns instead of the offered_berths list; both
// shapes are normalized to one list of offers immediately on read.
type ReplyRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewReplyRepository creates a new PostgreSQL reply repository.
func NewReplyRepository(db *sql.DB, logger *slog.Logger) *ReplyRepository {
	return &ReplyRepository{db: db, logger: logger}
}

func scanReply(row interface{ Scan(...any) error }) (*domain.Reply, error) {
	var (
		r               domain.Reply
		offeredJSON     []byte
		offerStatus     sql.NullString
		legacyBerthID   sql.NullString
		legacyBerthCode sql.NullString
		legacyDockName  sql.NullString
		legacyPrice     sql.NullInt64
	)

	err := row.Scan(
		&r.ID, &r.InterestID, &r.AuthorID, &r.AuthorName, &r.AuthorEmail, &r.AuthorPhone,
		&r.Message, &r.CreatedAt, &offeredJSON, &offerStatus,
		&legacyBerthID, &legacyBerthCode, &legacyDockName, &legacyPrice,
	)
	if err != nil {
		return nil, err
	}

	if len(offeredJSON) > 0 {
		if err := json.Unmarshal(offeredJSON, &r.OfferedBerths); err != nil {
			return nil, fmt.Errorf("malformed offered berths document: %w", err)
		}
	}

	// Normalize the legacy single-offer shape into the list form.
	if len(r.OfferedBerths) == 0 && legacyBerthID.Valid {
		berthID, err := uuid.Parse(legacyBerthID.String)
		if err != nil {
			return nil, fmt.Errorf("malformed legacy berth id: %w", err)
		}
		offer := domain.OfferedBerth{
			BerthID:   berthID,
			BerthCode: legacyBerthCode.String,
			DockName:  legacyDockName.String,
		}
		if legacyPrice.Valid {
			p := legacyPrice.Int64
			offer.Price = &p
		}
		r.OfferedBerths = []domain.OfferedBerth{offer}
	}

	// An empty string means no status: some historic rows carry '' where
	// newer rows carry NULL.
	if offerStatus.Valid && offerStatus.String != "" {
		s := domain.OfferStatus(offerStatus.String)
		r.OfferStatus = &s
	} else if r.HasOffer() {
		// Legacy offer rows predate the status column; treat them as
		// still pending.
		s := domain.OfferPending
		r.OfferStatus = &s
	}

	return &r, nil
}

// Create inserts a new reply. Writes always use the list form.
func (r *ReplyRepository) Create(ctx context.Context, reply *domain.Reply) error {
	offeredJSON, err := json.Marshal(reply.OfferedBerths)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO replies (
			id, interest_id, author_id, author_name, author_email, author_phone,
			message, created_at, offered_berths, offer_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var status any
	if reply.OfferStatus != nil {
		status = *reply.OfferStatus
	}
	_, err = r.db.ExecContext(ctx, query,
		reply.ID, reply.InterestID, reply.AuthorID, reply.AuthorName,
		reply.AuthorEmail, reply.AuthorPhone,
		reply.Message, reply.CreatedAt, offeredJSON, status,
	)
	return err
}

// ListByInterest returns all replies of an interest, oldest first.
func (r *ReplyRepository) ListByInterest(ctx context.Context, interestID uuid.UUID) ([]*domain.Reply, error) {
	query := `SELECT` + replyColumns + ` FROM replies WHERE interest_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, interestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Reply
	for rows.Next() {
		reply, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reply)
	}
	return out, rows.Err()
}

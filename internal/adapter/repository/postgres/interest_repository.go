package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/user/marina-office/internal/domain"
)

const interestColumns = `
	id, user_id, user_name, email, phone,
	boat_length, boat_beam, boat_depth,
	preferred_dock_id, preferred_berth_id, message, image_url,
	status, created_at, last_seen_replies_at,
	accepted_offer_id, accepted_berth_id, accepted_berth_code`

// InterestRepository implements domain.InterestRepository for PostgreSQL.
// Status writes enforce the negotiation state machine: nothing leaves
// resolved, no matter which caller asks.
type InterestRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewInterestRepository creates a new PostgreSQL interest repository.
func NewInterestRepository(db *sql.DB, logger *slog.Logger) *InterestRepository {
	return &InterestRepository{db: db, logger: logger}
}

func scanInterest(row interface{ Scan(...any) error }) (*domain.Interest, error) {
	var (
		i             domain.Interest
		preferredDock sql.NullString
		preferredBerth sql.NullString
		message       sql.NullString
		imageURL      sql.NullString
		lastSeen      sql.NullTime
		acceptedOffer sql.NullString
		acceptedBerth sql.NullString
		acceptedCode  sql.NullString
	)

	err := row.Scan(
		&i.ID, &i.UserID, &i.UserName, &i.Email, &i.Phone,
		&i.BoatLength, &i.BoatBeam, &i.BoatDepth,
		&preferredDock, &preferredBerth, &message, &imageURL,
		&i.Status, &i.CreatedAt, &lastSeen,
		&acceptedOffer, &acceptedBerth, &acceptedCode,
	)
	if err != nil {
		return nil, err
	}

	if id, err := parseNullUUID(preferredDock); err != nil {
		return nil, err
	} else {
		i.PreferredDockID = id
	}
	if id, err := parseNullUUID(preferredBerth); err != nil {
		return nil, err
	} else {
		i.PreferredBerthID = id
	}
	if id, err := parseNullUUID(acceptedOffer); err != nil {
		return nil, err
	} else {
		i.AcceptedOfferID = id
	}
	if id, err := parseNullUUID(acceptedBerth); err != nil {
		return nil, err
	} else {
		i.AcceptedBerthID = id
	}
	i.Message = message.String
	i.ImageURL = imageURL.String
	i.AcceptedBerthCode = acceptedCode.String
	if lastSeen.Valid {
		t := lastSeen.Time
		i.LastSeenRepliesAt = &t
	}

	return &i, nil
}

// Create inserts a new interest.
func (r *InterestRepository) Create(ctx context.Context, interest *domain.Interest) error {
	query := `
		INSERT INTO interests (
			id, user_id, user_name, email, phone,
			boat_length, boat_beam, boat_depth,
			preferred_dock_id, preferred_berth_id, message, image_url,
			status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		interest.ID, interest.UserID, interest.UserName, interest.Email, interest.Phone,
		interest.BoatLength, interest.BoatBeam, interest.BoatDepth,
		uuidOrNil(interest.PreferredDockID), uuidOrNil(interest.PreferredBerthID),
		nullIfEmpty(interest.Message), nullIfEmpty(interest.ImageURL),
		interest.Status, interest.CreatedAt,
	)
	return err
}

// FindByID returns one interest.
func (r *InterestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Interest, error) {
	query := `SELECT` + interestColumns + ` FROM interests WHERE id = $1`

	interest, err := scanInterest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return interest, nil
}

// ListVisible returns interests inside the dock scope: those with no
// preferred dock, plus those preferring one of dockIDs. A nil filter means
// every interest. The scoping runs here, in SQL, not only in the clients.
func (r *InterestRepository) ListVisible(ctx context.Context, dockIDs []uuid.UUID) ([]*domain.Interest, error) {
	query := `SELECT` + interestColumns + `
		FROM interests
		WHERE $1::uuid[] IS NULL
		   OR preferred_dock_id IS NULL
		   OR preferred_dock_id = ANY($1)
		ORDER BY created_at DESC`

	var filter any
	if dockIDs != nil {
		filter = pq.Array(uuidStrings(dockIDs))
	}
	rows, err := r.db.QueryContext(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Interest
	for rows.Next() {
		interest, err := scanInterest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, interest)
	}
	return out, rows.Err()
}

// UpdateStatus applies a status change, including manual overrides. The
// WHERE clause makes resolved terminal at the data-access layer.
func (r *InterestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.InterestStatus) error {
	if !next.Valid() {
		return domain.ErrInvalidTransition
	}

	query := `
		UPDATE interests SET status = $2
		WHERE id = $1 AND (status <> $3 OR $2 = $3)`

	res, err := r.db.ExecContext(ctx, query, id, next, domain.InterestResolved)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM interests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidTransition
}

// MarkRepliesSeen stamps the tenant's last look at the replies.
func (r *InterestRepository) MarkRepliesSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE interests SET last_seen_replies_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func parseNullUUID(s sql.NullString) (*uuid.UUID, error) {
	if !s.Valid {
		return nil, nil
	}
	id, err := uuid.Parse(s.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

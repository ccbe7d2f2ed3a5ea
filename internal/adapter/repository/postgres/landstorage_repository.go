package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/domain"
)

// LandStorageRepository implements domain.LandStorageRepository for
// PostgreSQL.
type LandStorageRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLandStorageRepository creates a new PostgreSQL land storage repository.
func NewLandStorageRepository(db *sql.DB, logger *slog.Logger) *LandStorageRepository {
	return &LandStorageRepository{db: db, logger: logger}
}

// ListByContact returns entries whose stored contact data matches the
// canonical phone or lowercased email.
func (r *LandStorageRepository) ListByContact(ctx context.Context, phone, email string) ([]*domain.LandStorageEntry, error) {
	query := `
		SELECT code, occupant_id, occupant_phone, occupant_email
		FROM land_storage
		WHERE ($1 <> '' AND regexp_replace(coalesce(occupant_phone, ''), '[^0-9]', '', 'g')
		       IN ($1, '46' || substr($1, 2), '0046' || substr($1, 2)))
		   OR ($2 <> '' AND lower(trim(coalesce(occupant_email, ''))) = $2)`

	rows, err := r.db.QueryContext(ctx, query, phone, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.LandStorageEntry
	for rows.Next() {
		var (
			e          domain.LandStorageEntry
			occupantID sql.NullString
			phone      sql.NullString
			email      sql.NullString
		)
		if err := rows.Scan(&e.Code, &occupantID, &phone, &email); err != nil {
			return nil, err
		}
		id, err := parseNullUUID(occupantID)
		if err != nil {
			return nil, err
		}
		e.OccupantID = id
		e.OccupantPhone = phone.String
		e.OccupantEmail = email.String
		out = append(out, &e)
	}
	return out, rows.Err()
}

// SetOccupant links the account to the entry unless another account already
// holds it. Safe to repeat.
func (r *LandStorageRepository) SetOccupant(ctx context.Context, code string, accountID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE land_storage SET occupant_id = $2 WHERE code = $1 AND occupant_id IS NULL`,
		code, accountID,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM land_storage WHERE code = $1)`, code).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

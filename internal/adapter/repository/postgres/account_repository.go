package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/user/marina-office/internal/domain"
)

// AccountRepository reads identities for contact data and role scoping. The
// auth subsystem owns the rows; this repository never writes them.
type AccountRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(db *sql.DB, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	var (
		a       domain.Account
		phone   sql.NullString
		email   sql.NullString
		dockIDs []string
	)
	err := row.Scan(&a.ID, &a.Role, &a.Name, &phone, &email,
		&a.IsPublic, &a.AllowMapSMS, pq.Array(&dockIDs))
	if err != nil {
		return nil, err
	}
	a.Phone = phone.String
	a.Email = email.String
	for _, s := range dockIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		a.ManagedDockIDs = append(a.ManagedDockIDs, id)
	}
	return &a, nil
}

const accountColumns = `id, role, name, phone, email, is_public, allow_map_sms, managed_dock_ids`

// FindByID returns one account.
func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return account, nil
}

// List returns every account, for the bulk reconciliation job.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	return out, rows.Err()
}

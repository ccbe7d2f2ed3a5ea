package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/user/marina-office/internal/domain"
)

const resourceColumns = `
	r.id, r.type, r.marking_code, r.dock_id, d.name, r.status,
	r.occupant_ids, r.tenants, r.invoice_responsible_id,
	r.allow_second_hand, r.second_hand_tenant_id, r.invoice_second_hand_directly,
	r.prices, r.legacy_price, r.occupant_phone, r.occupant_email`

// ResourceRepository implements domain.ResourceRepository for PostgreSQL.
type ResourceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewResourceRepository creates a new PostgreSQL resource repository.
func NewResourceRepository(db *sql.DB, logger *slog.Logger) *ResourceRepository {
	return &ResourceRepository{db: db, logger: logger}
}

// scanResource reads one joined resource row into the domain model,
// normalizing nullable columns.
func scanResource(row interface{ Scan(...any) error }) (*domain.Resource, error) {
	var (
		r             domain.Resource
		occupantIDs   []string
		tenantsJSON   []byte
		invoiceID     sql.NullString
		secondHandID  sql.NullString
		pricesJSON    []byte
		legacyPrice   sql.NullInt64
		occupantPhone sql.NullString
		occupantEmail sql.NullString
	)

	err := row.Scan(
		&r.ID, &r.Type, &r.MarkingCode, &r.DockID, &r.DockName, &r.Status,
		pq.Array(&occupantIDs), &tenantsJSON, &invoiceID,
		&r.AllowSecondHand, &secondHandID, &r.InvoiceSecondHandDirectly,
		&pricesJSON, &legacyPrice, &occupantPhone, &occupantEmail,
	)
	if err != nil {
		return nil, err
	}

	for _, s := range occupantIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("malformed occupant id %q: %w", s, err)
		}
		r.OccupantIDs = append(r.OccupantIDs, id)
	}
	if len(tenantsJSON) > 0 {
		if err := json.Unmarshal(tenantsJSON, &r.Tenants); err != nil {
			return nil, fmt.Errorf("malformed tenants document: %w", err)
		}
	}
	if invoiceID.Valid {
		id, err := uuid.Parse(invoiceID.String)
		if err != nil {
			return nil, err
		}
		r.InvoiceResponsibleID = &id
	}
	if secondHandID.Valid {
		id, err := uuid.Parse(secondHandID.String)
		if err != nil {
			return nil, err
		}
		r.SecondHandTenantID = &id
	}
	if len(pricesJSON) > 0 {
		var byYear map[string]int64
		if err := json.Unmarshal(pricesJSON, &byYear); err != nil {
			return nil, fmt.Errorf("malformed prices document: %w", err)
		}
		r.Prices = make(map[int]int64, len(byYear))
		for k, v := range byYear {
			year, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("malformed price year %q: %w", k, err)
			}
			r.Prices[year] = v
		}
	}
	if legacyPrice.Valid {
		p := legacyPrice.Int64
		r.LegacyPrice = &p
	}
	r.OccupantPhone = occupantPhone.String
	r.OccupantEmail = occupantEmail.String

	return &r, nil
}

// FindByID returns one resource.
func (r *ResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error) {
	query := `SELECT` + resourceColumns + ` FROM resources r JOIN docks d ON d.id = r.dock_id WHERE r.id = $1`

	resource, err := scanResource(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return resource, nil
}

// ListOfferable returns available berths, restricted to the given docks when
// the filter is non-nil.
func (r *ResourceRepository) ListOfferable(ctx context.Context, dockIDs []uuid.UUID) ([]*domain.Resource, error) {
	query := `SELECT` + resourceColumns + `
		FROM resources r JOIN docks d ON d.id = r.dock_id
		WHERE r.type = $1 AND r.status = $2
		  AND ($3::uuid[] IS NULL OR r.dock_id = ANY($3))
		ORDER BY d.name, r.marking_code`

	var filter any
	if dockIDs != nil {
		filter = pq.Array(uuidStrings(dockIDs))
	}
	rows, err := r.db.QueryContext(ctx, query, domain.TypeBerth, domain.StatusAvailable, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectResources(rows)
}

// ListByContact returns resources whose stored contact fields match the
// canonical phone or lowercased email. Both the occupant columns and the
// contact snapshots inside the tenants document are checked. Phone matching
// tolerates the stored number carrying an international prefix.
func (r *ResourceRepository) ListByContact(ctx context.Context, phone, email string) ([]*domain.Resource, error) {
	query := `SELECT` + resourceColumns + `
		FROM resources r JOIN docks d ON d.id = r.dock_id
		WHERE ($1 <> '' AND (
		          regexp_replace(coalesce(r.occupant_phone, ''), '[^0-9]', '', 'g')
		              IN ($1, '46' || substr($1, 2), '0046' || substr($1, 2))
		       OR EXISTS (
		          SELECT 1 FROM jsonb_array_elements(r.tenants) t
		          WHERE regexp_replace(coalesce(t->>'phone', ''), '[^0-9]', '', 'g')
		              IN ($1, '46' || substr($1, 2), '0046' || substr($1, 2)))))
		   OR ($2 <> '' AND (
		          lower(trim(coalesce(r.occupant_email, ''))) = $2
		       OR EXISTS (
		          SELECT 1 FROM jsonb_array_elements(r.tenants) t
		          WHERE lower(trim(coalesce(t->>'email', ''))) = $2)))`

	rows, err := r.db.QueryContext(ctx, query, phone, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectResources(rows)
}

// AppendOccupant links the account as occupant unless already linked,
// flipping status to occupied in the same write. Safe to repeat.
func (r *ResourceRepository) AppendOccupant(ctx context.Context, resourceID, accountID uuid.UUID) (bool, error) {
	query := `
		UPDATE resources
		SET occupant_ids = array_append(occupant_ids, $2), status = $3
		WHERE id = $1 AND NOT ($2 = ANY(occupant_ids))`

	res, err := r.db.ExecContext(ctx, query, resourceID, accountID, domain.StatusOccupied)
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

	// Either already linked or missing; distinguish the two.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM resources WHERE id = $1)`, resourceID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// Update persists the whole ledger state of a resource.
func (r *ResourceRepository) Update(ctx context.Context, resource *domain.Resource) error {
	return updateResource(ctx, r.db, resource)
}

// execer lets the same write run on *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateResource(ctx context.Context, db execer, resource *domain.Resource) error {
	tenantsJSON, err := json.Marshal(resource.Tenants)
	if err != nil {
		return err
	}
	pricesJSON, err := marshalPrices(resource.Prices)
	if err != nil {
		return err
	}

	query := `
		UPDATE resources SET
			status = $2,
			occupant_ids = $3,
			tenants = $4,
			invoice_responsible_id = $5,
			allow_second_hand = $6,
			second_hand_tenant_id = $7,
			invoice_second_hand_directly = $8,
			prices = $9
		WHERE id = $1`

	res, err := db.ExecContext(ctx, query,
		resource.ID,
		resource.Status,
		pq.Array(uuidStrings(resource.OccupantIDs)),
		tenantsJSON,
		uuidOrNil(resource.InvoiceResponsibleID),
		resource.AllowSecondHand,
		uuidOrNil(resource.SecondHandTenantID),
		resource.InvoiceSecondHandDirectly,
		pricesJSON,
	)
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

func collectResources(rows *sql.Rows) ([]*domain.Resource, error) {
	var out []*domain.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resource)
	}
	return out, rows.Err()
}

func marshalPrices(prices map[int]int64) ([]byte, error) {
	byYear := make(map[string]int64, len(prices))
	for year, price := range prices {
		byYear[strconv.Itoa(year)] = price
	}
	return json.Marshal(byYear)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

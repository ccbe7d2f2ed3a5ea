package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/user/marina-office/internal/domain"
)

const (
	acceptRetryMax     = 3
	acceptRetryBackoff = 50 * time.Millisecond
)

// AcceptanceRepository implements domain.AcceptanceStore: one transaction
// that re-reads the resource, interest and replies under row locks, applies
// the acceptance commit, and persists all four effects together. Write races
// (serialization failures, deadlocks) are retried; a failed precondition is
// a genuine conflict and is not.
type AcceptanceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAcceptanceRepository creates a new PostgreSQL acceptance store.
func NewAcceptanceRepository(db *sql.DB, logger *slog.Logger) *AcceptanceRepository {
	return &AcceptanceRepository{db: db, logger: logger}
}

// Accept runs the acceptance transaction.
func (r *AcceptanceRepository) Accept(ctx context.Context, cmd domain.AcceptanceCommand) (*domain.AcceptanceOutcome, error) {
	var lastErr error
	for attempt := 0; attempt < acceptRetryMax; attempt++ {
		outcome, err := r.tryAccept(ctx, cmd)
		if err == nil {
			return outcome, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
		r.logger.Warn("acceptance transaction hit a write race, retrying",
			"interest_id", cmd.InterestID, "attempt", attempt+1, "error", err)
		select {
		case <-time.After(acceptRetryBackoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (r *AcceptanceRepository) tryAccept(ctx context.Context, cmd domain.AcceptanceCommand) (*domain.AcceptanceOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // no-op once Commit() succeeds

	// Lock order: interest, then resource, then replies. Every acceptance
	// takes the same order, so concurrent attempts serialize instead of
	// deadlocking.
	interest, err := scanInterest(tx.QueryRowContext(ctx,
		`SELECT`+interestColumns+` FROM interests WHERE id = $1 FOR UPDATE`, cmd.InterestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	resource, err := scanResource(tx.QueryRowContext(ctx,
		`SELECT`+resourceColumns+` FROM resources r JOIN docks d ON d.id = r.dock_id WHERE r.id = $1 FOR UPDATE OF r`,
		cmd.BerthID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT`+replyColumns+` FROM replies WHERE interest_id = $1 ORDER BY created_at FOR UPDATE`,
		cmd.InterestID)
	if err != nil {
		return nil, err
	}
	var replies []*domain.Reply
	for rows.Next() {
		reply, err := scanReply(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	outcome, err := domain.CommitAcceptance(resource, interest, replies, cmd)
	if err != nil {
		return nil, err
	}

	if err := updateResource(ctx, tx, outcome.Resource); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE interests SET
			status = $2,
			accepted_offer_id = $3,
			accepted_berth_id = $4,
			accepted_berth_code = $5
		WHERE id = $1`,
		interest.ID, interest.Status,
		uuidOrNil(interest.AcceptedOfferID), uuidOrNil(interest.AcceptedBerthID),
		interest.AcceptedBerthCode,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE replies SET offer_status = $2 WHERE id = $1`,
		outcome.AcceptedReply.ID, domain.OfferAccepted)
	if err != nil {
		return nil, err
	}

	if len(outcome.DeclinedReplies) > 0 {
		declinedIDs := make([]string, len(outcome.DeclinedReplies))
		for i, reply := range outcome.DeclinedReplies {
			declinedIDs[i] = reply.ID.String()
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE replies SET offer_status = $2 WHERE id = ANY($1)`,
			pq.Array(declinedIDs), domain.OfferDeclined)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return outcome, nil
}

// isRetryable reports whether the error is a transient write race:
// serialization failure (40001) or deadlock (40P01).
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

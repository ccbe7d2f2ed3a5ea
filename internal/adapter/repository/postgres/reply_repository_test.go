package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/domain"
)

// stubReplyRow feeds canned column values to scanReply. A nil value scans as
// SQL NULL.
type stubReplyRow struct {
	vals []any
}

func (r stubReplyRow) Scan(dest ...any) error {
	if len(dest) != len(r.vals) {
		return fmt.Errorf("expected %d scan destinations, got %d", len(r.vals), len(dest))
	}
	for i, d := range dest {
		v := r.vals[i]
		switch p := d.(type) {
		case *uuid.UUID:
			if v != nil {
				*p = v.(uuid.UUID)
			}
		case *string:
			if v != nil {
				*p = v.(string)
			}
		case *time.Time:
			if v != nil {
				*p = v.(time.Time)
			}
		case *[]byte:
			if v != nil {
				*p = v.([]byte)
			}
		case *sql.NullString:
			if v != nil {
				*p = sql.NullString{String: v.(string), Valid: true}
			}
		case *sql.NullInt64:
			if v != nil {
				*p = sql.NullInt64{Int64: v.(int64), Valid: true}
			}
		default:
			return fmt.Errorf("unexpected scan destination %T", d)
		}
	}
	return nil
}

// replyRow builds the column values in replyColumns order.
func replyRow(offeredJSON any, offerStatus any, legacyBerthID any, legacyBerthCode any, legacyDockName any, legacyPrice any) stubReplyRow {
	return stubReplyRow{vals: []any{
		uuid.New(), uuid.New(), uuid.New(), "Harbor Office", "office@example.com", "0707654321",
		"Welcome to the marina", time.Now(), offeredJSON, offerStatus,
		legacyBerthID, legacyBerthCode, legacyDockName, legacyPrice,
	}}
}

func TestScanReply(t *testing.T) {
	t.Run("Legacy Single Offer Row Reads As Pending", func(t *testing.T) {
		berthID := uuid.New()
		reply, err := scanReply(replyRow(nil, nil, berthID.String(), "A-12", "North Pier", int64(9500)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reply.OfferedBerths) != 1 {
			t.Fatalf("expected 1 normalized offer, got %d", len(reply.OfferedBerths))
		}
		offer := reply.OfferedBerths[0]
		if offer.BerthID != berthID || offer.BerthCode != "A-12" || offer.DockName != "North Pier" {
			t.Errorf("legacy offer not carried over: %+v", offer)
		}
		if offer.Price == nil || *offer.Price != 9500 {
			t.Errorf("legacy price not carried over: %v", offer.Price)
		}
		if reply.OfferStatus == nil || *reply.OfferStatus != domain.OfferPending {
			t.Fatalf("expected pending status, got %v", reply.OfferStatus)
		}
		if _, ok := reply.PendingOfferFor(berthID); !ok {
			t.Error("normalized legacy offer is not acceptable")
		}
	})

	t.Run("Legacy Row With Empty Status Column", func(t *testing.T) {
		// Historic rows carry '' where newer rows carry NULL; both must read
		// as a pending offer.
		berthID := uuid.New()
		reply, err := scanReply(replyRow(nil, "", berthID.String(), "A-12", "North Pier", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reply.OfferStatus == nil || *reply.OfferStatus != domain.OfferPending {
			t.Fatalf("expected pending status, got %v", reply.OfferStatus)
		}
		if _, ok := reply.PendingOfferFor(berthID); !ok {
			t.Error("normalized legacy offer is not acceptable")
		}
	})

	t.Run("Plain Message Reply Has No Offer Status", func(t *testing.T) {
		reply, err := scanReply(replyRow(nil, nil, nil, "", "", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reply.HasOffer() {
			t.Error("plain message reply reports an offer")
		}
		if reply.OfferStatus != nil {
			t.Errorf("expected nil offer status, got %q", *reply.OfferStatus)
		}
	})

	t.Run("Plain Message Row With Empty Status Column", func(t *testing.T) {
		reply, err := scanReply(replyRow(nil, "", nil, "", "", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reply.OfferStatus != nil {
			t.Errorf("expected nil offer status, got %q", *reply.OfferStatus)
		}
	})

	t.Run("List Form Row", func(t *testing.T) {
		berthID := uuid.New()
		offered := []byte(fmt.Sprintf(`[{"berth_id":%q,"berth_code":"B-03","dock_name":"South Pier","price":12500}]`, berthID))
		reply, err := scanReply(replyRow(offered, string(domain.OfferAccepted), nil, "", "", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reply.OfferedBerths) != 1 || reply.OfferedBerths[0].BerthID != berthID {
			t.Fatalf("offered berths not decoded: %+v", reply.OfferedBerths)
		}
		if reply.OfferStatus == nil || *reply.OfferStatus != domain.OfferAccepted {
			t.Errorf("expected accepted status, got %v", reply.OfferStatus)
		}
	})
}

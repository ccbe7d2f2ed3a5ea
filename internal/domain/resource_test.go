package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestResource_AppendOccupant(t *testing.T) {
	accountID := uuid.New()

	t.Run("Links And Flips Status", func(t *testing.T) {
		r := &Resource{Status: StatusAvailable}

		if !r.AppendOccupant(accountID) {
			t.Fatal("expected a new link to be made")
		}
		if r.Status != StatusOccupied {
			t.Errorf("expected status occupied, got %s", r.Status)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		r := &Resource{Status: StatusAvailable}
		r.AppendOccupant(accountID)

		if r.AppendOccupant(accountID) {
			t.Error("second append of the same account must be a no-op")
		}
		if len(r.OccupantIDs) != 1 {
			t.Errorf("expected 1 occupant, got %d", len(r.OccupantIDs))
		}
	})
}

func TestResource_StatusFollowsOccupants(t *testing.T) {
	r := &Resource{Status: StatusAvailable}
	a, b := uuid.New(), uuid.New()

	r.AssignOccupants([]uuid.UUID{a, b})
	if r.Status != StatusOccupied {
		t.Errorf("expected occupied, got %s", r.Status)
	}

	r.AssignOccupants(nil)
	if r.Status != StatusAvailable {
		t.Errorf("expected available after clearing occupants, got %s", r.Status)
	}
}

func TestResource_SetInvoiceResponsible(t *testing.T) {
	tenant := TenantContact{UID: uuid.New(), Name: "Anna Berg"}
	r := &Resource{Tenants: []TenantContact{tenant}}

	t.Run("Listed Tenant", func(t *testing.T) {
		if err := r.SetInvoiceResponsible(tenant.UID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if r.InvoiceResponsibleID == nil || *r.InvoiceResponsibleID != tenant.UID {
			t.Error("invoice responsible not recorded")
		}
	})

	t.Run("Unlisted Account Rejected", func(t *testing.T) {
		if err := r.SetInvoiceResponsible(uuid.New()); !errors.Is(err, ErrNotListedTenant) {
			t.Errorf("expected ErrNotListedTenant, got %v", err)
		}
	})
}

func TestResource_RemoveTenant(t *testing.T) {
	first := TenantContact{UID: uuid.New(), Name: "Anna"}
	second := TenantContact{UID: uuid.New(), Name: "Bo"}

	newResource := func() *Resource {
		r := &Resource{
			Tenants:     []TenantContact{first, second},
			OccupantIDs: []uuid.UUID{first.UID, second.UID},
			Status:      StatusOccupied,
		}
		id := first.UID
		r.InvoiceResponsibleID = &id
		return r
	}

	t.Run("Reassigns Invoice Responsibility", func(t *testing.T) {
		r := newResource()
		r.RemoveTenant(first.UID)

		if len(r.Tenants) != 1 || r.Tenants[0].UID != second.UID {
			t.Fatal("expected only the second tenant to remain")
		}
		if r.HasOccupant(first.UID) {
			t.Error("removed tenant still linked as occupant")
		}
		if r.InvoiceResponsibleID == nil || *r.InvoiceResponsibleID != second.UID {
			t.Error("invoice responsibility not moved to remaining tenant")
		}
		if r.Status != StatusOccupied {
			t.Errorf("expected occupied, got %s", r.Status)
		}
	})

	t.Run("Last Tenant Clears Everything", func(t *testing.T) {
		r := newResource()
		r.RemoveTenant(second.UID)
		r.RemoveTenant(first.UID)

		if len(r.Tenants) != 0 || len(r.OccupantIDs) != 0 {
			t.Error("expected empty tenant and occupant sets")
		}
		if r.InvoiceResponsibleID != nil {
			t.Error("invoice responsible must be cleared with the last tenant")
		}
		if r.Status != StatusAvailable {
			t.Errorf("expected available, got %s", r.Status)
		}
	})
}

func TestResource_SecondHand(t *testing.T) {
	occupantID := uuid.New()
	subTenantID := uuid.New()

	t.Run("Disable Clears Dependents", func(t *testing.T) {
		r := &Resource{}
		r.SetSecondHand(true)
		if err := r.SetSecondHandTenant(subTenantID, true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		r.SetSecondHand(false)
		if r.SecondHandTenantID != nil || r.InvoiceSecondHandDirectly {
			t.Error("disabling second hand must clear the sub-tenant and billing flag")
		}
	})

	t.Run("Requires Allowance", func(t *testing.T) {
		r := &Resource{}
		if err := r.SetSecondHandTenant(subTenantID, false); !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Occupant Cannot Sublet To Themselves", func(t *testing.T) {
		r := &Resource{OccupantIDs: []uuid.UUID{occupantID}, AllowSecondHand: true}
		if err := r.SetSecondHandTenant(occupantID, false); !errors.Is(err, ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})
}

func TestResource_DefaultPrice(t *testing.T) {
	legacy := int64(9000)

	tests := []struct {
		name   string
		prices map[int]int64
		legacy *int64
		year   int
		want   int64
		wantOK bool
	}{
		{"Current Year", map[int]int64{2026: 12500}, &legacy, 2026, 12500, true},
		{"Previous Year Fallback", map[int]int64{2025: 12000}, &legacy, 2026, 12000, true},
		{"Legacy Fallback", map[int]int64{2020: 8000}, &legacy, 2026, 9000, true},
		{"Nothing Recorded", nil, nil, 2026, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resource{Prices: tt.prices, LegacyPrice: tt.legacy}
			got, ok := r.DefaultPrice(tt.year)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("DefaultPrice(%d) = (%d, %v), want (%d, %v)", tt.year, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/adapter/api/middleware"
	"github.com/user/marina-office/internal/usecase"
)

// ResourceHandler serves the occupancy ledger and offerable-berth endpoints.
type ResourceHandler struct {
	occupancy *usecase.OccupancyUseCase
	offers    *usecase.OfferUseCase
	logger    *slog.Logger
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(occupancy *usecase.OccupancyUseCase, offers *usecase.OfferUseCase, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{
		occupancy: occupancy,
		offers:    offers,
		logger:    logger,
	}
}

// Offerable handles GET /api/resources/offerable.
func (h *ResourceHandler) Offerable(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	berths, err := h.offers.OfferableBerths(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, berths)
}

// AssignTenants handles PUT /api/resources/{id}/tenants.
func (h *ResourceHandler) AssignTenants(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id"})
		return
	}

	var body struct {
		AccountIDs []uuid.UUID `json:"account_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	resource, err := h.occupancy.AssignTenants(r.Context(), actor, id, body.AccountIDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

// RemoveTenant handles DELETE /api/resources/{id}/tenants/{accountID}.
func (h *ResourceHandler) RemoveTenant(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id"})
		return
	}
	accountID, ok := pathID(r, "accountID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed account id"})
		return
	}

	resource, err := h.occupancy.RemoveTenant(r.Context(), actor, id, accountID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

// SetInvoiceResponsible handles PUT /api/resources/{id}/invoice-responsible.
func (h *ResourceHandler) SetInvoiceResponsible(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id"})
		return
	}

	var body struct {
		AccountID uuid.UUID `json:"account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	resource, err := h.occupancy.SetInvoiceResponsible(r.Context(), actor, id, body.AccountID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

// SetSecondHand handles PUT /api/resources/{id}/second-hand.
func (h *ResourceHandler) SetSecondHand(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id"})
		return
	}

	var body struct {
		Enabled         bool       `json:"enabled"`
		TenantID        *uuid.UUID `json:"tenant_id,omitempty"`
		InvoiceDirectly bool       `json:"invoice_directly"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	resource, err := h.occupancy.SetSecondHand(r.Context(), actor, id, body.Enabled)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if body.Enabled && body.TenantID != nil {
		resource, err = h.occupancy.SetSecondHandTenant(r.Context(), actor, id, *body.TenantID, body.InvoiceDirectly)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resource)
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/user/marina-office/internal/adapter/accountops"
	"github.com/user/marina-office/internal/adapter/api/middleware"
	"github.com/user/marina-office/internal/usecase"
)

// AdminHandler serves the superadmin surface: bulk reconciliation and the
// proxied account-lifecycle operations.
type AdminHandler struct {
	reconcile *usecase.ReconcileUseCase
	accounts  *accountops.Client
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reconcile *usecase.ReconcileUseCase, accounts *accountops.Client, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		reconcile: reconcile,
		accounts:  accounts,
		logger:    logger,
	}
}

// ReconcileSelf handles POST /api/me/reconcile. Any authenticated account may
// ask to be linked to resources and land storage carrying its contact data,
// typically right after login.
func (h *AdminHandler) ReconcileSelf(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	links, failures, err := h.reconcile.ReconcileSelf(r.Context(), actor.AccountID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"links_made": links, "failures": failures})
}

// Reconcile handles POST /api/admin/reconcile. The run is best effort per link;
// the summary reports what was made and what failed.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reconcile.ReconcileAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ApproveAccount handles POST /api/admin/accounts/{uid}/approve.
func (h *AdminHandler) ApproveAccount(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if err := h.accounts.ApproveAccount(r.Context(), uid); err != nil {
		h.logger.Error("account approval failed", "uid", uid, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SetPassword handles POST /api/admin/accounts/{uid}/password.
func (h *AdminHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var body struct {
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "new_password required"})
		return
	}

	if err := h.accounts.SetPassword(r.Context(), uid, body.NewPassword); err != nil {
		h.logger.Error("password set failed", "uid", uid, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAccount handles DELETE /api/admin/accounts/{uid}.
func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if err := h.accounts.DeleteAccount(r.Context(), uid); err != nil {
		h.logger.Error("account deletion failed", "uid", uid, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

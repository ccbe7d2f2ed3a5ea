package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/user/marina-office/internal/adapter/api/middleware"
	"github.com/user/marina-office/internal/domain"
	"github.com/user/marina-office/internal/usecase"
)

// InterestHandler serves the interest, reply and acceptance endpoints.
type InterestHandler struct {
	intake  *usecase.IntakeUseCase
	offers  *usecase.OfferUseCase
	accept  *usecase.AcceptUseCase
	replies domain.ReplyRepository
	logger  *slog.Logger
}

// NewInterestHandler creates a new InterestHandler.
func NewInterestHandler(
	intake *usecase.IntakeUseCase,
	offers *usecase.OfferUseCase,
	accept *usecase.AcceptUseCase,
	replies domain.ReplyRepository,
	logger *slog.Logger,
) *InterestHandler {
	return &InterestHandler{
		intake:  intake,
		offers:  offers,
		accept:  accept,
		replies: replies,
		logger:  logger,
	}
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// Create handles POST /api/interests.
func (h *InterestHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	var payload usecase.CreateInterestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	interest, err := h.intake.Create(r.Context(), actor, payload)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, interest)
}

// List handles GET /api/interests.
func (h *InterestHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	interests, err := h.intake.ListVisible(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, interests)
}

// Get handles GET /api/interests/{id}.
func (h *InterestHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id"})
		return
	}

	interest, err := h.intake.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, interest)
}

// SetStatus handles PUT /api/interests/{id}/status.
func (h *InterestHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id"})
		return
	}

	var body struct {
		Status domain.InterestStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	if err := h.intake.SetStatus(r.Context(), actor, id, body.Status); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(body.Status)})
}

// MarkSeen handles POST /api/interests/{id}/seen.
func (h *InterestHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id"})
		return
	}

	if err := h.intake.MarkRepliesSeen(r.Context(), actor, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReplies handles GET /api/interests/{id}/replies.
func (h *InterestHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id"})
		return
	}

	// Visibility follows the interest itself.
	if _, err := h.intake.Get(r.Context(), actor, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	replies, err := h.replies.ListByInterest(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, replies)
}

// ComposeReply handles POST /api/interests/{id}/replies.
func (h *InterestHandler) ComposeReply(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id"})
		return
	}

	var body struct {
		Message string               `json:"message"`
		Offers  []usecase.OfferInput `json:"offers,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	reply, err := h.offers.ComposeReply(r.Context(), actor, id, body.Message, body.Offers)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

// Accept handles POST /api/interests/{id}/accept.
func (h *InterestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id"})
		return
	}

	var body struct {
		ReplyID uuid.UUID `json:"reply_id"`
		BerthID uuid.UUID `json:"berth_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	result, err := h.accept.Accept(r.Context(), actor, id, body.ReplyID, body.BerthID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// The commit stands even when notification queueing failed; the caller
	// is told which of the two happened.
	writeJSON(w, http.StatusOK, map[string]any{
		"berth_code":          result.Outcome.Interest.AcceptedBerthCode,
		"notification_queued": result.NotificationQueued,
	})
}

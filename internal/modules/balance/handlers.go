package balance

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/y1ran/journal-dashboard/internal/clients/journal"
)

// Handler handles exchange-connection HTTP requests
type Handler struct {
	store   *Store
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new balance handler
func NewHandler(store *Store, service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		store:   store,
		service: service,
		log:     log.With().Str("handler", "balance").Logger(),
	}
}

// HandleListExchanges returns the per-exchange states for the cards and
// status dots.
func (h *Handler) HandleListExchanges(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"exchanges": h.store.States(),
		"total":     h.store.Total(),
		"known":     KnownExchanges,
	})
}

// HandleSaveExchange stores connection credentials for one exchange, then
// runs an immediate check so its status dot settles.
func (h *Handler) HandleSaveExchange(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var creds journal.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.store.SaveCredentials(id, creds); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.service.CheckAndPublish(id)

	states := h.store.States()
	h.writeJSON(w, http.StatusOK, states[id])
}

// HandleRemoveExchange drops an exchange connection.
func (h *Handler) HandleRemoveExchange(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.RemoveExchange(id); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// HandleCheckAll runs a full sequential poll cycle on demand.
func (h *Handler) HandleCheckAll(w http.ResponseWriter, r *http.Request) {
	h.service.CheckAll()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"exchanges": h.store.States(),
		"total":     h.store.Total(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

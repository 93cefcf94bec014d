package portfolio

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *Service
	twdRate float64
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *Service, twdRate float64, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		twdRate: twdRate,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetPortfolio returns the full normalized portfolio model.
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Model())
}

// HandleGetSummary returns the headline totals for the summary cards.
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	model := h.service.Model()
	change := h.service.Change()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_usdt":      model.TotalValue,
		"total_twd":       model.TotalValue * h.twdRate,
		"diff_24h":        model.Diff24h,
		"change_absolute": change.Absolute,
		"change_percent":  change.Percent,
		"yesterday_value": change.Previous,
		"position_count":  model.PositionCount,
		"updated_at":      h.service.UpdatedAt().Format(time.RFC3339),
	})
}

// HandleGetHoldings returns positions sorted for the holdings table.
func (h *Handler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	model := h.service.Model()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"positions":   model.Positions,
		"total_value": model.TotalValue,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

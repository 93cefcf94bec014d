package charts

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/y1ran/journal-dashboard/internal/modules/portfolio"
)

// ModelSource supplies the latest portfolio model for the distribution ring
// and stat cards.
type ModelSource interface {
	Model() portfolio.Model
}

// Handler handles chart HTTP requests
type Handler struct {
	series *SeriesBuilder
	models ModelSource
	log    zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(series *SeriesBuilder, models ModelSource, log zerolog.Logger) *Handler {
	return &Handler{
		series: series,
		models: models,
		log:    log.With().Str("handler", "charts").Logger(),
	}
}

// HandleGetChart returns everything the asset-overview pane renders: the
// projected curve, the distribution ring, and the stat cards.
func (h *Handler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	rangeKey := parseRange(r.URL.Query().Get("range"))
	samples := h.series.Build(rangeKey)
	model := h.models.Model()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"range": rangeKey,
		"curve": BuildCurveView(samples),
		"pie":   BuildPieSegments(model.TypeTotals, model.TotalValue),
		"stats": BuildStatCards(model),
	})
}

// HandleHover resolves a pointer position to the nearest curve sample for
// the tooltip. x is the pointer ratio within the plot bounding box.
func (h *Handler) HandleHover(w http.ResponseWriter, r *http.Request) {
	rangeKey := parseRange(r.URL.Query().Get("range"))
	xRatio, err := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "x must be a number between 0 and 1")
		return
	}

	view := BuildCurveView(h.series.Build(rangeKey))
	point, ok := NearestPoint(view.Points, xRatio)
	if !ok {
		h.writeError(w, http.StatusNotFound, "no samples available")
		return
	}
	h.writeJSON(w, http.StatusOK, point)
}

// parseRange accepts the range query value; anything unusable becomes the
// default 30-day range.
func parseRange(raw string) int {
	if raw == "" {
		return 30
	}
	key, err := strconv.Atoi(raw)
	if err != nil {
		return 30
	}
	return key
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

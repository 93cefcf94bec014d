package records

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles trade-record HTTP requests
type Handler struct {
	store *Store
	log   zerolog.Logger
}

// NewHandler creates a new records handler
func NewHandler(store *Store, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.With().Str("handler", "records").Logger(),
	}
}

// recordRequest is the submit/edit form shape. Side and result accept
// either the internal key or the display label.
type recordRequest struct {
	Symbol     string            `json:"symbol"`
	TradedAt   string            `json:"traded_at"`
	Side       string            `json:"side"`
	Result     string            `json:"result"`
	Pnl        float64           `json:"pnl"`
	PnlPct     *float64          `json:"pnl_pct"`
	MarginUSDT *float64          `json:"margin_usdt"`
	Leverage   *float64          `json:"leverage"`
	Summary    string            `json:"summary"`
	Tags       []string          `json:"tags"`
	Image      string            `json:"image"`
	Extra      map[string]string `json:"extra"`
}

func (req recordRequest) toRecord() (Record, error) {
	record := Record{
		Symbol:     req.Symbol,
		Side:       ParseSide(req.Side),
		Result:     ParseResult(req.Result),
		Pnl:        req.Pnl,
		PnlPct:     req.PnlPct,
		MarginUSDT: req.MarginUSDT,
		Leverage:   req.Leverage,
		Summary:    req.Summary,
		Tags:       req.Tags,
		Image:      req.Image,
		Extra:      req.Extra,
	}
	if req.TradedAt != "" {
		t, err := parseTimestamp(req.TradedAt)
		if err != nil {
			return Record{}, err
		}
		record.TradedAt = t
		record.Date = t.Format("2006-01-02")
	}
	return record, nil
}

// HandleList returns the cached record list, refreshing it from the API
// when the cache is empty or refresh=1 is passed.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "1" || len(h.store.List()) == 0 {
		if err := h.store.Refresh(); err != nil {
			h.log.Error().Err(err).Msg("Record refresh failed")
			h.writeError(w, http.StatusBadGateway, "unable to load records")
			return
		}
	}
	h.writeJSON(w, http.StatusOK, h.store.List())
}

// HandleGet returns one cached record.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	record, ok := h.store.Get(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "record not found")
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

// HandleCreate submits a new record through the API collaborator.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := req.toRecord()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid traded_at timestamp")
		return
	}

	created, err := h.store.Create(record)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate submits edits for one record.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := req.toRecord()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid traded_at timestamp")
		return
	}

	updated, err := h.store.Update(id, record)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a record.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	if err := h.store.Delete(id); err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleReorder applies the final card order produced by a finished drag.
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.store.Reorder(req.IDs)
	h.writeJSON(w, http.StatusOK, h.store.List())
}

// HandleInsights returns the derived dashboard-insight block.
func (h *Handler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, BuildInsights(h.store.List(), time.Now()))
}

// HandleListTags returns default plus custom tags.
func (h *Handler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Tags())
}

// HandleAddTag registers a custom tag.
func (h *Handler) HandleAddTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.store.AddTag(req.Name); err != nil {
		h.writeError(w, http.StatusConflict, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.store.Tags())
}

// HandleRemoveTag drops a custom tag.
func (h *Handler) HandleRemoveTag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.store.RemoveTag(name); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.store.Tags())
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
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

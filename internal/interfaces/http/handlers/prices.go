package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

const (
	defaultPriceLimit = 365
	maxPriceLimit     = 2000
	dateLayout        = "2006-01-02"
)

// Prices serves GET /v1/commodities/{code}/prices?from=&to=&limit=.
func (h *Handlers) Prices(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	q := r.URL.Query()

	now := time.Now().UTC()
	from := now.AddDate(-1, 0, 0)
	to := now

	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD")
			return
		}
		to = parsed.AddDate(0, 0, 1) // inclusive end date
	}
	if to.Before(from) {
		h.writeError(w, http.StatusBadRequest, "invalid_range", "to must not precede from")
		return
	}

	limit := defaultPriceLimit
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxPriceLimit {
		limit = maxPriceLimit
	}

	points, err := h.prices.ListByCommodity(r.Context(), code, h.currency, from, to, limit)
	if err != nil {
		h.log.Error().Err(err).Str("commodity_id", code).Msg("price history read failed")
		h.writeError(w, http.StatusInternalServerError, "prices_unavailable",
			"price history could not be loaded")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"commodity_id": code,
		"currency":     h.currency,
		"count":        len(points),
		"prices":       points,
	})
}

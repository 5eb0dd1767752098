package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tradecast/tradecast/internal/persistence"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// SearchHSCodes serves GET /v1/hs-codes?q=coffee&limit=&offset=.
func (h *Handlers) SearchHSCodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	term := q.Get("q")
	if term == "" {
		h.writeError(w, http.StatusBadRequest, "missing_query", "q parameter is required")
		return
	}

	limit := defaultSearchLimit
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	offset := 0
	if raw := q.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid_offset", "offset must be non-negative")
			return
		}
		offset = parsed
	}

	codes, err := h.hsCodes.Search(r.Context(), term, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Str("term", term).Msg("hs code search failed")
		h.writeError(w, http.StatusInternalServerError, "search_failed",
			"classification search could not be completed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":  term,
		"count":  len(codes),
		"offset": offset,
		"codes":  codes,
	})
}

// GetHSCode serves GET /v1/hs-codes/{code}.
func (h *Handlers) GetHSCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	entry, err := h.hsCodes.Get(r.Context(), code)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, entry)
	case errors.Is(err, persistence.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "hs_code_not_found",
			"no classification entry for the requested code")
	default:
		h.log.Error().Err(err).Str("code", code).Msg("hs code read failed")
		h.writeError(w, http.StatusInternalServerError, "lookup_failed",
			"classification lookup could not be completed")
	}
}

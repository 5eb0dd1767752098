package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tradecast/tradecast/internal/persistence"
	"github.com/tradecast/tradecast/internal/tariff"
)

// TariffLookup serves GET /v1/tariffs/{code}?origin=BR&as_of=2026-01-01.
func (h *Handlers) TariffLookup(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	q := r.URL.Query()

	origin := q.Get("origin")
	if origin == "" {
		h.writeError(w, http.StatusBadRequest, "missing_origin", "origin parameter is required")
		return
	}

	asOf := time.Now().UTC()
	if raw := q.Get("as_of"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_date", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	rate, err := h.tariffs.Lookup(r.Context(), code, origin, asOf)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, rate)
	case errors.Is(err, persistence.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "tariff_not_found",
			"no rate on file for the requested code and origin")
	default:
		h.log.Error().Err(err).Str("hs_code", code).Str("origin", origin).Msg("tariff lookup failed")
		h.writeError(w, http.StatusInternalServerError, "lookup_failed",
			"tariff lookup could not be completed")
	}
}

// DutyEstimateRequest is the POST body for a duty assessment.
type DutyEstimateRequest struct {
	Origin       string  `json:"origin"`
	CustomsValue float64 `json:"customs_value"`
	Quantity     float64 `json:"quantity"`
	AsOf         string  `json:"as_of,omitempty"`
}

// DutyEstimate serves POST /v1/tariffs/{code}/duty.
func (h *Handlers) DutyEstimate(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req DutyEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	if req.Origin == "" {
		h.writeError(w, http.StatusBadRequest, "missing_origin", "origin is required")
		return
	}

	asOf := time.Now().UTC()
	if req.AsOf != "" {
		parsed, err := time.Parse(dateLayout, req.AsOf)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_date", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	rate, err := h.tariffs.Lookup(r.Context(), code, req.Origin, asOf)
	switch {
	case err == nil:
	case errors.Is(err, persistence.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "tariff_not_found",
			"no rate on file for the requested code and origin")
		return
	default:
		h.log.Error().Err(err).Str("hs_code", code).Str("origin", req.Origin).Msg("tariff lookup failed")
		h.writeError(w, http.StatusInternalServerError, "lookup_failed",
			"tariff lookup could not be completed")
		return
	}

	result, err := tariff.ComputeDuty(tariff.DutyInput{
		CustomsValue: req.CustomsValue,
		Quantity:     req.Quantity,
		Rate:         *rate,
	})
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_entry", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"hs_code":    code,
		"origin":     req.Origin,
		"as_of":      asOf.Format(dateLayout),
		"rate":       rate,
		"assessment": result,
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Risks serves GET /v1/commodities/{code}/risks.
func (h *Handlers) Risks(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	factors, err := h.risks.ActiveByCommodity(r.Context(), code, time.Now().UTC())
	if err != nil {
		h.log.Error().Err(err).Str("commodity_id", code).Msg("risk factor read failed")
		h.writeError(w, http.StatusInternalServerError, "risks_unavailable",
			"risk factors could not be loaded")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"commodity_id": code,
		"count":        len(factors),
		"risk_factors": factors,
	})
}

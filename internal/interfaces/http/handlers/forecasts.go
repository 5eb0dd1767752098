package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tradecast/tradecast/internal/forecast"
	"github.com/tradecast/tradecast/internal/persistence"
)

// Forecast serves GET /v1/forecasts/{code}?horizon=1m.
func (h *Handlers) Forecast(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	horizon := r.URL.Query().Get("horizon")
	if horizon == "" {
		horizon = forecast.HorizonMonth
	}

	result, err := h.forecasts.GetForecast(r.Context(), code, horizon)
	if err != nil {
		h.forecastError(w, r, code, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) forecastError(w http.ResponseWriter, r *http.Request, code string, err error) {
	switch {
	case errors.Is(err, forecast.ErrInsufficientHistory),
		errors.Is(err, forecast.ErrInsufficientData):
		h.writeError(w, http.StatusUnprocessableEntity, "insufficient_history",
			"not enough price history to forecast this commodity")
	case errors.Is(err, forecast.ErrInsufficientVariance):
		h.writeError(w, http.StatusUnprocessableEntity, "insufficient_variance",
			"price history has no time spread to fit a trend")
	case errors.Is(err, forecast.ErrInvalidPriceSeries),
		errors.Is(err, forecast.ErrMixedCurrency):
		h.writeError(w, http.StatusUnprocessableEntity, "invalid_price_series",
			"stored price history is not usable for forecasting")
	case errors.Is(err, persistence.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "commodity_not_found",
			"no data for the requested commodity")
	default:
		h.log.Error().Err(err).Str("commodity_id", code).Msg("forecast request failed")
		h.writeError(w, http.StatusInternalServerError, "forecast_failed",
			"forecast could not be produced")
	}
}

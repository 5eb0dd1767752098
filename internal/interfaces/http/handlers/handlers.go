package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradecast/tradecast/internal/models"
)

// ForecastGetter is the read side of the forecast service.
type ForecastGetter interface {
	GetForecast(ctx context.Context, commodityID, horizon string) (*models.Forecast, error)
}

// PriceReader lists stored price history.
type PriceReader interface {
	ListByCommodity(ctx context.Context, commodityID, currency string, from, to time.Time, limit int) ([]models.PricePoint, error)
}

// RiskReader lists stored risk factors.
type RiskReader interface {
	ActiveByCommodity(ctx context.Context, commodityID string, now time.Time) ([]models.RiskFactor, error)
}

// HSCodeReader searches the classification registry.
type HSCodeReader interface {
	Get(ctx context.Context, code string) (*models.HSCode, error)
	Search(ctx context.Context, term string, limit, offset int) ([]models.HSCode, error)
}

// TariffReader resolves duty rates.
type TariffReader interface {
	Lookup(ctx context.Context, hsCode, originCountry string, asOf time.Time) (*models.TariffRate, error)
}

// Handlers holds the endpoint handlers and their dependencies.
type Handlers struct {
	forecasts ForecastGetter
	prices    PriceReader
	risks     RiskReader
	hsCodes   HSCodeReader
	tariffs   TariffReader
	currency  string
	log       zerolog.Logger
	started   time.Time
}

// Deps lists the collaborators the handlers are assembled from.
type Deps struct {
	Forecasts ForecastGetter
	Prices    PriceReader
	Risks     RiskReader
	HSCodes   HSCodeReader
	Tariffs   TariffReader
	Currency  string
	Log       zerolog.Logger
}

func New(deps Deps) *Handlers {
	return &Handlers{
		forecasts: deps.Forecasts,
		prices:    deps.Prices,
		risks:     deps.Risks,
		hsCodes:   deps.HSCodes,
		tariffs:   deps.Tariffs,
		currency:  deps.Currency,
		log:       deps.Log,
		started:   time.Now(),
	}
}

// ErrorResponse is the JSON shape for every non-2xx response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("response encoding failed")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}

// Health reports liveness and uptime.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"timestamp":      time.Now().UTC(),
	})
}

// NotFound handles unmatched routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusNotFound, "endpoint_not_found",
		"the requested endpoint does not exist")
}

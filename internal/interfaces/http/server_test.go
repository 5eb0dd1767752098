package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradecast/tradecast/internal/forecast"
	"github.com/tradecast/tradecast/internal/interfaces/http/handlers"
	"github.com/tradecast/tradecast/internal/metrics"
	"github.com/tradecast/tradecast/internal/models"
	"github.com/tradecast/tradecast/internal/persistence"
)

type stubForecasts struct {
	forecast *models.Forecast
	err      error
	horizon  string
}

func (s *stubForecasts) GetForecast(_ context.Context, _ string, horizon string) (*models.Forecast, error) {
	s.horizon = horizon
	return s.forecast, s.err
}

type stubPrices struct {
	points []models.PricePoint
	err    error
	limit  int
}

func (s *stubPrices) ListByCommodity(_ context.Context, _, _ string, _, _ time.Time, limit int) ([]models.PricePoint, error) {
	s.limit = limit
	return s.points, s.err
}

type stubRisks struct {
	factors []models.RiskFactor
	err     error
}

func (s *stubRisks) ActiveByCommodity(_ context.Context, _ string, _ time.Time) ([]models.RiskFactor, error) {
	return s.factors, s.err
}

type stubHSCodes struct {
	entry   *models.HSCode
	matches []models.HSCode
	err     error
}

func (s *stubHSCodes) Get(_ context.Context, _ string) (*models.HSCode, error) {
	return s.entry, s.err
}

func (s *stubHSCodes) Search(_ context.Context, _ string, _, _ int) ([]models.HSCode, error) {
	return s.matches, s.err
}

type stubTariffs struct {
	rate *models.TariffRate
	err  error
}

func (s *stubTariffs) Lookup(_ context.Context, _, _ string, _ time.Time) (*models.TariffRate, error) {
	return s.rate, s.err
}

type serverFixture struct {
	server    *Server
	forecasts *stubForecasts
	prices    *stubPrices
	risks     *stubRisks
	hsCodes   *stubHSCodes
	tariffs   *stubTariffs
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	fx := &serverFixture{
		forecasts: &stubForecasts{},
		prices:    &stubPrices{},
		risks:     &stubRisks{},
		hsCodes:   &stubHSCodes{},
		tariffs:   &stubTariffs{},
	}
	h := handlers.New(handlers.Deps{
		Forecasts: fx.forecasts,
		Prices:    fx.prices,
		Risks:     fx.risks,
		HSCodes:   fx.hsCodes,
		Tariffs:   fx.tariffs,
		Currency:  "USD",
		Log:       zerolog.Nop(),
	})
	fx.server = NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, h, metrics.New(), zerolog.Nop())
	return fx
}

func (fx *serverFixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	fx.server.Router().ServeHTTP(rec, req)
	return rec
}

func TestForecastEndpoint(t *testing.T) {
	fx := newServerFixture(t)
	fx.forecasts.forecast = &models.Forecast{
		CommodityID:    "090111",
		Horizon:        "1m",
		PredictedPrice: 11.4,
		Currency:       "USD",
		Unit:           "kg",
	}

	rec := fx.do("GET", "/v1/forecasts/090111?horizon=1m", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var got models.Forecast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "090111", got.CommodityID)
	assert.Equal(t, 11.4, got.PredictedPrice)
}

func TestForecastEndpointDefaultsHorizon(t *testing.T) {
	fx := newServerFixture(t)
	fx.forecasts.forecast = &models.Forecast{CommodityID: "090111", Horizon: "1m"}

	rec := fx.do("GET", "/v1/forecasts/090111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1m", fx.forecasts.horizon)
}

func TestForecastEndpointInputErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient history", forecast.ErrInsufficientHistory, http.StatusUnprocessableEntity, "insufficient_history"},
		{"no variance", forecast.ErrInsufficientVariance, http.StatusUnprocessableEntity, "insufficient_variance"},
		{"mixed currency", forecast.ErrMixedCurrency, http.StatusUnprocessableEntity, "invalid_price_series"},
		{"unknown commodity", persistence.ErrNotFound, http.StatusNotFound, "commodity_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newServerFixture(t)
			fx.forecasts.err = tc.err

			rec := fx.do("GET", "/v1/forecasts/090111", "")
			require.Equal(t, tc.status, rec.Code)

			var resp handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Code)
		})
	}
}

func TestPricesEndpoint(t *testing.T) {
	fx := newServerFixture(t)
	fx.prices.points = []models.PricePoint{
		{CommodityID: "090111", Price: 10.5, Currency: "USD", Unit: "kg"},
	}

	rec := fx.do("GET", "/v1/commodities/090111/prices?from=2026-01-01&to=2026-02-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		CommodityID string              `json:"commodity_id"`
		Count       int                 `json:"count"`
		Prices      []models.PricePoint `json:"prices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "090111", body.CommodityID)
	assert.Equal(t, 1, body.Count)
}

func TestPricesEndpointRejectsBadRange(t *testing.T) {
	fx := newServerFixture(t)

	assert.Equal(t, http.StatusBadRequest, fx.do("GET", "/v1/commodities/090111/prices?from=01-01-2026", "").Code)
	assert.Equal(t, http.StatusBadRequest, fx.do("GET", "/v1/commodities/090111/prices?from=2026-02-01&to=2026-01-01", "").Code)
	assert.Equal(t, http.StatusBadRequest, fx.do("GET", "/v1/commodities/090111/prices?limit=0", "").Code)
}

func TestPricesEndpointCapsLimit(t *testing.T) {
	fx := newServerFixture(t)

	rec := fx.do("GET", "/v1/commodities/090111/prices?limit=999999", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2000, fx.prices.limit)
}

func TestHSCodeSearchEndpoint(t *testing.T) {
	fx := newServerFixture(t)
	fx.hsCodes.matches = []models.HSCode{
		{Code: "090111", Description: "Coffee, not roasted, not decaffeinated", Chapter: "09"},
	}

	rec := fx.do("GET", "/v1/hs-codes?q=coffee", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int             `json:"count"`
		Codes []models.HSCode `json:"codes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "090111", body.Codes[0].Code)
}

func TestHSCodeSearchRequiresQuery(t *testing.T) {
	fx := newServerFixture(t)
	assert.Equal(t, http.StatusBadRequest, fx.do("GET", "/v1/hs-codes", "").Code)
}

func TestHSCodeGetNotFound(t *testing.T) {
	fx := newServerFixture(t)
	fx.hsCodes.err = persistence.ErrNotFound
	assert.Equal(t, http.StatusNotFound, fx.do("GET", "/v1/hs-codes/999999", "").Code)
}

func TestTariffLookupEndpoint(t *testing.T) {
	fx := newServerFixture(t)
	fx.tariffs.rate = &models.TariffRate{
		HSCode:        "090111",
		OriginCountry: "BR",
		AdValoremRate: 4.5,
	}

	rec := fx.do("GET", "/v1/tariffs/090111?origin=BR", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rate models.TariffRate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rate))
	assert.Equal(t, 4.5, rate.AdValoremRate)
}

func TestTariffLookupRequiresOrigin(t *testing.T) {
	fx := newServerFixture(t)
	assert.Equal(t, http.StatusBadRequest, fx.do("GET", "/v1/tariffs/090111", "").Code)
}

func TestDutyEstimateEndpoint(t *testing.T) {
	fx := newServerFixture(t)
	fx.tariffs.rate = &models.TariffRate{
		HSCode:        "090111",
		OriginCountry: "BR",
		AdValoremRate: 10,
	}

	rec := fx.do("POST", "/v1/tariffs/090111/duty",
		`{"origin":"BR","customs_value":10000,"quantity":500}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Assessment struct {
			AdValoremDuty float64 `json:"ad_valorem_duty"`
			TotalDuty     float64 `json:"total_duty"`
		} `json:"assessment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 1000.0, body.Assessment.AdValoremDuty, 1e-9)
	assert.Greater(t, body.Assessment.TotalDuty, 1000.0)
}

func TestDutyEstimateRejectsBadBody(t *testing.T) {
	fx := newServerFixture(t)
	assert.Equal(t, http.StatusBadRequest, fx.do("POST", "/v1/tariffs/090111/duty", "not json").Code)
	assert.Equal(t, http.StatusBadRequest, fx.do("POST", "/v1/tariffs/090111/duty", `{"customs_value":1}`).Code)
}

func TestHealthEndpoint(t *testing.T) {
	fx := newServerFixture(t)

	rec := fx.do("GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	fx := newServerFixture(t)

	rec := fx.do("GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotFound(t *testing.T) {
	fx := newServerFixture(t)

	rec := fx.do("GET", "/v1/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "endpoint_not_found", resp.Code)
}

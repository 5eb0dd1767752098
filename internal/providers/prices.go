package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradecast/tradecast/internal/models"
)

// PriceFeedConfig configures the commodity price feed client.
type PriceFeedConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
	RPS     float64       `yaml:"rps"`
	Burst   int           `yaml:"burst"`
}

// PriceFeedClient fetches daily price series from the external commodities
// data provider.
type PriceFeedClient struct {
	client  *apiClient
	baseURL string
	apiKey  string
}

func NewPriceFeedClient(cfg PriceFeedConfig, log zerolog.Logger) *PriceFeedClient {
	return &PriceFeedClient{
		client: newAPIClient(ClientConfig{
			Name:           "price-feed",
			RequestTimeout: cfg.Timeout,
			RPS:            cfg.RPS,
			Burst:          cfg.Burst,
		}, log),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

type priceFeedResponse struct {
	CommodityID string `json:"commodity_id"`
	Data        []struct {
		Date     string  `json:"date"`
		Price    float64 `json:"price"`
		Currency string  `json:"currency"`
		Unit     string  `json:"unit"`
	} `json:"data"`
}

// FetchDaily returns the provider's daily series for one commodity in the
// inclusive date range, ordered as the provider delivers it.
func (c *PriceFeedClient) FetchDaily(ctx context.Context, commodityID string, from, to time.Time) ([]models.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/v1/commodities/%s/prices?start=%s&end=%s",
		c.baseURL, url.PathEscape(commodityID),
		from.Format("2006-01-02"), to.Format("2006-01-02"))

	header := http.Header{}
	if c.apiKey != "" {
		header.Set("X-Api-Key", c.apiKey)
	}

	var resp priceFeedResponse
	if err := c.client.getJSON(ctx, endpoint, header, &resp); err != nil {
		return nil, fmt.Errorf("fetch daily prices for %s: %w", commodityID, err)
	}

	points := make([]models.PricePoint, 0, len(resp.Data))
	for _, d := range resp.Data {
		ts, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return nil, fmt.Errorf("parse price date %q: %w", d.Date, err)
		}
		points = append(points, models.PricePoint{
			CommodityID: commodityID,
			Timestamp:   ts.UTC(),
			Price:       d.Price,
			Currency:    d.Currency,
			Unit:        d.Unit,
		})
	}
	return points, nil
}

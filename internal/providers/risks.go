package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradecast/tradecast/internal/models"
)

// RiskFeedConfig configures the risk registry client.
type RiskFeedConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	RPS     float64       `yaml:"rps"`
	Burst   int           `yaml:"burst"`
}

// RiskFeedClient fetches active risk alerts from the weather and
// geopolitical risk registry.
type RiskFeedClient struct {
	client  *apiClient
	baseURL string
}

func NewRiskFeedClient(cfg RiskFeedConfig, log zerolog.Logger) *RiskFeedClient {
	return &RiskFeedClient{
		client: newAPIClient(ClientConfig{
			Name:           "risk-feed",
			RequestTimeout: cfg.Timeout,
			RPS:            cfg.RPS,
			Burst:          cfg.Burst,
		}, log),
		baseURL: cfg.BaseURL,
	}
}

type riskFeedResponse struct {
	Alerts []struct {
		Title            string     `json:"title"`
		Severity         int        `json:"severity"`
		ImpactDirection  string     `json:"impact_direction"`
		ImpactPercentage *float64   `json:"impact_percentage"`
		ImpactConfidence *float64   `json:"impact_confidence"`
		Description      string     `json:"description"`
		ExpiresAt        *time.Time `json:"expires_at"`
	} `json:"alerts"`
}

// FetchActive returns the registry's active alerts for one commodity.
// Directions outside the known set are recorded as unknown.
func (c *RiskFeedClient) FetchActive(ctx context.Context, commodityID string) ([]models.RiskFactor, error) {
	endpoint := fmt.Sprintf("%s/v1/risks?commodity=%s&status=active",
		c.baseURL, url.QueryEscape(commodityID))

	var resp riskFeedResponse
	if err := c.client.getJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch risks for %s: %w", commodityID, err)
	}

	factors := make([]models.RiskFactor, 0, len(resp.Alerts))
	for _, a := range resp.Alerts {
		direction := models.ImpactDirection(a.ImpactDirection)
		switch direction {
		case models.ImpactIncrease, models.ImpactDecrease:
		default:
			direction = models.ImpactUnknown
		}
		factors = append(factors, models.RiskFactor{
			CommodityID:      commodityID,
			Title:            a.Title,
			Severity:         a.Severity,
			ImpactDirection:  direction,
			ImpactPercentage: a.ImpactPercentage,
			ImpactConfidence: a.ImpactConfidence,
			Description:      a.Description,
			Active:           true,
			ExpiresAt:        a.ExpiresAt,
		})
	}
	return factors, nil
}

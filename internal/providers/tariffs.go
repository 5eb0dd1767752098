package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradecast/tradecast/internal/models"
)

// TariffRegistryConfig configures the tariff registry client. Endpoints is an
// ordered fallback chain: the primary registry first, mirrors after it.
type TariffRegistryConfig struct {
	Endpoints []string      `yaml:"endpoints"`
	Timeout   time.Duration `yaml:"timeout"`
	RPS       float64       `yaml:"rps"`
	Burst     int           `yaml:"burst"`
}

// TariffRegistryClient fetches duty schedules from the trade-tariff registry,
// falling through its mirror endpoints when the primary is unavailable.
type TariffRegistryClient struct {
	client    *apiClient
	endpoints []string
	log       zerolog.Logger
}

func NewTariffRegistryClient(cfg TariffRegistryConfig, log zerolog.Logger) *TariffRegistryClient {
	return &TariffRegistryClient{
		client: newAPIClient(ClientConfig{
			Name:           "tariff-registry",
			RequestTimeout: cfg.Timeout,
			RPS:            cfg.RPS,
			Burst:          cfg.Burst,
		}, log),
		endpoints: append([]string(nil), cfg.Endpoints...),
		log:       log,
	}
}

type tariffRegistryResponse struct {
	HSCode         string     `json:"hs_code"`
	OriginCountry  string     `json:"origin_country"`
	AdValoremRate  float64    `json:"ad_valorem_rate"`
	SpecificAmount float64    `json:"specific_amount"`
	SpecificUnit   string     `json:"specific_unit"`
	EffectiveFrom  time.Time  `json:"effective_from"`
	EffectiveTo    *time.Time `json:"effective_to"`
}

// Lookup queries each endpoint in order and returns the first successful
// schedule. All endpoints failing is an error carrying the last failure.
func (c *TariffRegistryClient) Lookup(ctx context.Context, hsCode, originCountry string) (*models.TariffRate, error) {
	if len(c.endpoints) == 0 {
		return nil, fmt.Errorf("tariff registry has no endpoints configured")
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		target := fmt.Sprintf("%s/v1/tariffs/%s?origin=%s",
			endpoint, url.PathEscape(hsCode), url.QueryEscape(originCountry))

		var resp tariffRegistryResponse
		if err := c.client.getJSON(ctx, target, nil, &resp); err != nil {
			c.log.Warn().
				Err(err).
				Str("endpoint", endpoint).
				Str("hs_code", hsCode).
				Msg("tariff registry endpoint failed, trying next")
			lastErr = err
			continue
		}

		return &models.TariffRate{
			HSCode:         resp.HSCode,
			OriginCountry:  resp.OriginCountry,
			AdValoremRate:  resp.AdValoremRate,
			SpecificAmount: resp.SpecificAmount,
			SpecificUnit:   resp.SpecificUnit,
			EffectiveFrom:  resp.EffectiveFrom,
			EffectiveTo:    resp.EffectiveTo,
		}, nil
	}

	return nil, fmt.Errorf("all tariff registry endpoints failed: %w", lastErr)
}

package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradecast/tradecast/internal/forecast"
)

// ModelServiceConfig configures the external prediction service client. When
// Enabled is false the ML path is skipped entirely and the engine runs
// statistical-only.
type ModelServiceConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	RPS     float64       `yaml:"rps"`
	Burst   int           `yaml:"burst"`
}

// ModelServiceClient implements forecast.ModelClient against the external
// prediction service. Its errors are swallowed by the engine's fallback
// chain; it only needs to report them honestly.
type ModelServiceClient struct {
	client  *apiClient
	baseURL string
}

func NewModelServiceClient(cfg ModelServiceConfig, log zerolog.Logger) *ModelServiceClient {
	return &ModelServiceClient{
		client: newAPIClient(ClientConfig{
			Name:           "model-service",
			RequestTimeout: cfg.Timeout,
			RPS:            cfg.RPS,
			Burst:          cfg.Burst,
		}, log),
		baseURL: cfg.BaseURL,
	}
}

// Predict submits the series to the prediction service.
func (c *ModelServiceClient) Predict(ctx context.Context, req forecast.ModelRequest) (forecast.ModelResponse, error) {
	var resp forecast.ModelResponse
	if err := c.client.postJSON(ctx, c.baseURL+"/v1/predict", req, &resp); err != nil {
		return forecast.ModelResponse{}, fmt.Errorf("model service predict: %w", err)
	}
	return resp, nil
}

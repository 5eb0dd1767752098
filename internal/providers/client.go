package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ClientConfig holds the plumbing settings shared by every provider client.
type ClientConfig struct {
	Name           string
	RequestTimeout time.Duration
	RPS            float64
	Burst          int
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.RPS == 0 {
		c.RPS = 5
	}
	if c.Burst == 0 {
		c.Burst = 10
	}
	return c
}

// apiClient bundles what every provider shares: an HTTP transport, a
// token-bucket rate limiter, and a circuit breaker. Providers stay thin
// wrappers over it.
type apiClient struct {
	name    string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

func newAPIClient(cfg ClientConfig, log zerolog.Logger) *apiClient {
	cfg = cfg.withDefaults()

	settings := gobreaker.Settings{
		Name:     cfg.Name,
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}

	return &apiClient{
		name:    cfg.Name,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
		log:     log,
	}
}

// getJSON performs a rate-limited, circuit-broken GET and decodes the JSON
// body into out.
func (c *apiClient) getJSON(ctx context.Context, url string, header http.Header, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, url, header, nil, out)
}

// postJSON performs a rate-limited, circuit-broken POST with a JSON body.
func (c *apiClient) postJSON(ctx context.Context, url string, body interface{}, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, url, nil, body, out)
}

func (c *apiClient) doJSON(ctx context.Context, method, url string, header http.Header, body interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit wait: %w", c.name, err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		var reqBody io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encode request: %w", err)
			}
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request: %w", c.name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%s returned status %d", c.name, resp.StatusCode)
		}
		if out == nil {
			return nil, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("%s decode response: %w", c.name, err)
		}
		return nil, nil
	})
	return err
}

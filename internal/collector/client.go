package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/obscura-collective/obscura-score/internal/errors"
	"github.com/obscura-collective/obscura-score/internal/features"
	"github.com/obscura-collective/obscura-score/internal/monitoring"
	"github.com/obscura-collective/obscura-score/internal/resilience"
)

// HTTPCollector fetches environmental observations from the data
// collection service. It implements features.Collector: data gaps come
// back as partial maps, not errors.
type HTTPCollector struct {
	baseURL string
	client  *http.Client
	metrics *monitoring.Metrics
}

// NewHTTPCollector creates a collector client for the given base URL.
func NewHTTPCollector(baseURL string, metrics *monitoring.Metrics) *HTTPCollector {
	return &HTTPCollector{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		metrics: metrics,
	}
}

type observationResponse struct {
	Observations map[string]float64 `json:"observations"`
}

// Fetch retrieves the per-variable observation map for the location at
// monthsBack months before the given prediction month. Transport errors
// are returned after retries; unknown variable names in the payload are
// dropped rather than rejected.
func (c *HTTPCollector) Fetch(ctx context.Context, latitude, longitude float64, month, monthsBack int) (map[features.Variable]float64, error) {
	endpoint := fmt.Sprintf("%s/observations?%s", c.baseURL, url.Values{
		"latitude":    {fmt.Sprintf("%.4f", latitude)},
		"longitude":   {fmt.Sprintf("%.4f", longitude)},
		"month":       {fmt.Sprintf("%d", month)},
		"months_back": {fmt.Sprintf("%d", monthsBack)},
	}.Encode())

	var payload observationResponse
	err := resilience.Retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return errors.NewInternalError("failed to create collector request", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return errors.NewExternalAPIError("collector", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.NewExternalAPIError("collector",
				fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return errors.NewExternalAPIError("collector",
				errors.WrapError(err, "failed to decode observations"))
		}
		return nil
	})

	if c.metrics != nil {
		c.metrics.IncrementExternalCall("collector", err != nil)
	}
	if err != nil {
		return nil, err
	}

	known := make(map[features.Variable]bool, len(features.Variables()))
	for _, v := range features.Variables() {
		known[v] = true
	}

	snapshot := make(map[features.Variable]float64, len(payload.Observations))
	for name, value := range payload.Observations {
		if known[features.Variable(name)] {
			snapshot[features.Variable(name)] = value
		}
	}
	return snapshot, nil
}

package vocsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Health checks service health. A degraded service returns a report, not an
// error; the error path is reserved for transport and decoding failures.
func (c *Client) Health(ctx context.Context) (status HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	// The server answers 503 with a body when degraded, so the generic
	// error mapping does not apply here.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("vocsearch: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("vocsearch: /health: %w", err)
	}
	defer resp.Body.Close()

	if err = json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return HealthStatus{}, fmt.Errorf("vocsearch: decode /health response: %w", err)
	}
	return status, nil
}

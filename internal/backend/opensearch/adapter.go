// Package opensearch implements the vocabulary backend adapter for an
// OpenSearch-compatible engine reached over its HTTP query API.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vocnet/vocsearch/internal/backend"
	"github.com/vocnet/vocsearch/internal/domain/concept"
	"github.com/vocnet/vocsearch/internal/domain/search"
	"github.com/vocnet/vocsearch/internal/domain/vocab"
	"github.com/vocnet/vocsearch/internal/metrics"
)

// TypeName is the registry key for this adapter type.
const TypeName = "local_os"

// searchPath is the engine's concept search endpoint.
const searchPath = "/concepts/_search"

// Compile-time check: Adapter satisfies the backend contract.
var _ backend.Adapter = (*Adapter)(nil)

// Adapter talks to one OpenSearch-backed vocabulary index.
//
// Config format:
//
//	config:
//	  host: http://localhost
//	  port: 9200
type Adapter struct {
	identifier string
	baseURL    string
	logger     *zap.Logger
}

// New validates the config map and constructs an adapter. host must be a
// non-empty string; port must be an integer or an integer-coercible string.
func New(identifier string, cfg map[string]any, logger *zap.Logger) (backend.Adapter, error) {
	host, ok := cfg["host"].(string)
	if !ok || host == "" {
		return nil, fmt.Errorf("[%s] %w: host must be a non-empty string", identifier, backend.ErrInvalidConfig)
	}

	port, err := coercePort(cfg["port"])
	if err != nil {
		return nil, fmt.Errorf("[%s] %w: %v", identifier, backend.ErrInvalidConfig, err)
	}

	return &Adapter{
		identifier: identifier,
		baseURL:    baseURL(host, port),
		logger:     logger,
	}, nil
}

// coercePort accepts the integer shapes YAML and JSON decoders produce, plus
// numeric strings.
func coercePort(v any) (int, error) {
	switch p := v.(type) {
	case int:
		return p, nil
	case int64:
		return int(p), nil
	case float64:
		if p != float64(int(p)) {
			return 0, fmt.Errorf("port must be an integer, got %v", p)
		}
		return int(p), nil
	case string:
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("port must be an integer, got %q", p)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("port must be an integer, got %T", v)
	}
}

// baseURL joins host and port, defaulting the scheme to http:// when the
// host carries none.
func baseURL(host string, port int) string {
	host = strings.TrimRight(host, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Identifier returns the configured vocabulary identifier.
func (a *Adapter) Identifier() string { return a.identifier }

// probeResponse is the strict shape of the zero-hit aggregation reply.
// A decode failure marks the backend unavailable.
type probeResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
	} `json:"hits"`
	Aggregations struct {
		Langs struct {
			Buckets []struct {
				Key string `json:"key"`
			} `json:"buckets"`
		} `json:"langs"`
	} `json:"aggregations"`
}

// Probe issues a zero-hit aggregation query to collect the document count and
// the set of indexed languages. Any failure yields an unavailable snapshot.
func (a *Adapter) Probe(ctx context.Context, client *http.Client) vocab.Vocabulary {
	payload := map[string]any{
		"size":             0,
		"track_total_hits": true,
		"aggs": map[string]any{
			"langs": map[string]any{"terms": map[string]any{"field": "lang_set"}},
		},
	}

	var data probeResponse
	if !a.send(ctx, client, "probe", payload, &data) {
		return vocab.Unavailable(a.identifier)
	}

	languages := make([]string, 0, len(data.Aggregations.Langs.Buckets))
	for _, b := range data.Aggregations.Langs.Buckets {
		languages = append(languages, b.Key)
	}

	return vocab.Vocabulary{
		Identifier: a.identifier,
		Languages:  languages,
		DocCount:   data.Hits.Total.Value,
		Status:     vocab.StatusOK,
	}
}

// Autocomplete runs a prefix search against this backend. Transport and
// parse failures degrade to an empty page; the caller never sees an error.
func (a *Adapter) Autocomplete(ctx context.Context, client *http.Client, q search.Query) concept.Page {
	if q.Broader == search.ExpandFull || q.Narrower == search.ExpandFull {
		a.logger.Warn("'full' relation expansion requested; returning IDs only (not implemented)",
			zap.String("vocab", a.identifier))
	}

	payload := a.buildPayload(q)

	var data osResponse
	if !a.send(ctx, client, "autocomplete", payload, &data) {
		return concept.EmptyPage()
	}

	return a.formatResult(&data, q.DisplayLangs)
}

// send POSTs a JSON payload to the search endpoint and decodes the reply into
// out. Every failure class (transport, HTTP status, decode) is absorbed here:
// it logs a warning, records metrics, and reports false.
func (a *Adapter) send(ctx context.Context, client *http.Client, op string, payload, out any) bool {
	url := a.baseURL + searchPath

	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.Warn("Failed to encode query payload",
			zap.String("vocab", a.identifier), zap.String("operation", op), zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		a.logger.Warn("Failed to build backend request",
			zap.String("vocab", a.identifier), zap.String("operation", op), zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(a.identifier, op, "error").Inc()
		a.logger.Warn("Request error talking to OS backend",
			zap.String("vocab", a.identifier), zap.String("operation", op), zap.Error(err))
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.BackendRequestsTotal.WithLabelValues(a.identifier, op, "error").Inc()
		a.logger.Warn("HTTP error status from OS backend",
			zap.String("vocab", a.identifier), zap.String("operation", op),
			zap.Int("status", resp.StatusCode))
		return false
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(a.identifier, op, "error").Inc()
		a.logger.Warn("Invalid JSON from OS backend",
			zap.String("vocab", a.identifier), zap.String("operation", op), zap.Error(err))
		return false
	}

	metrics.BackendRequestsTotal.WithLabelValues(a.identifier, op, "success").Inc()
	metrics.BackendRequestDuration.WithLabelValues(a.identifier, op).Observe(duration.Seconds())
	return true
}

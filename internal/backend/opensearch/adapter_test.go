package opensearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"github.com/vocnet/vocsearch/internal/backend"
	"github.com/vocnet/vocsearch/internal/domain/search"
	"github.com/vocnet/vocsearch/internal/domain/vocab"
)

// newTestAdapter splits an httptest URL into the host+port config shape the
// adapter validates.
func newTestAdapter(t *testing.T, serverURL string) *Adapter {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	a, err := New("jel", map[string]any{"host": "http://" + u.Hostname(), "port": port}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a.(*Adapter)
}

// --- Config validation ---

func TestNew_ValidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  map[string]any
		want string
	}{
		{"plain host", map[string]any{"host": "localhost", "port": 9200}, "http://localhost:9200"},
		{"http host", map[string]any{"host": "http://localhost", "port": 9200}, "http://localhost:9200"},
		{"https host", map[string]any{"host": "https://search.internal", "port": 443}, "https://search.internal:443"},
		{"trailing slash", map[string]any{"host": "http://localhost/", "port": 9200}, "http://localhost:9200"},
		{"string port", map[string]any{"host": "localhost", "port": "9200"}, "http://localhost:9200"},
		{"yaml float port", map[string]any{"host": "localhost", "port": float64(9200)}, "http://localhost:9200"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := New("jel", tc.cfg, zap.NewNop())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := a.(*Adapter).baseURL; got != tc.want {
				t.Errorf("baseURL: got %q, want %q", got, tc.want)
			}
			if a.Identifier() != "jel" {
				t.Errorf("identifier: got %q", a.Identifier())
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  map[string]any
	}{
		{"missing host", map[string]any{"port": 9200}},
		{"empty host", map[string]any{"host": "", "port": 9200}},
		{"host wrong type", map[string]any{"host": 42, "port": 9200}},
		{"missing port", map[string]any{"host": "localhost"}},
		{"port not coercible", map[string]any{"host": "localhost", "port": "not-a-port"}},
		{"port fractional", map[string]any{"host": "localhost", "port": 9200.5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("jel", tc.cfg, zap.NewNop())
			if !errors.Is(err, backend.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

// --- Probe ---

func TestProbe_Success(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/concepts/_search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_, _ = w.Write([]byte(`{
			"hits": {"total": {"value": 1234}},
			"aggregations": {"langs": {"buckets": [{"key": "fr"}, {"key": "en"}]}}
		}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got := a.Probe(context.Background(), srv.Client())

	want := vocab.Vocabulary{
		Identifier: "jel",
		Languages:  []string{"fr", "en"},
		DocCount:   1234,
		Status:     vocab.StatusOK,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if gotPayload["size"] != float64(0) {
		t.Errorf("probe must request zero hits, got size=%v", gotPayload["size"])
	}
	if gotPayload["track_total_hits"] != true {
		t.Error("probe must track total hits")
	}
}

func TestProbe_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got := a.Probe(context.Background(), srv.Client())

	if got.Status != vocab.StatusUnavailable {
		t.Errorf("expected unavailable, got %q", got.Status)
	}
	if len(got.Languages) != 0 || got.DocCount != 0 {
		t.Errorf("expected empty degraded snapshot, got %+v", got)
	}
}

func TestProbe_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits": {`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	if got := a.Probe(context.Background(), srv.Client()); got.Status != vocab.StatusUnavailable {
		t.Errorf("expected unavailable, got %q", got.Status)
	}
}

func TestProbe_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	a := newTestAdapter(t, srv.URL)
	if got := a.Probe(context.Background(), http.DefaultClient); got.Status != vocab.StatusUnavailable {
		t.Errorf("expected unavailable, got %q", got.Status)
	}
}

// --- Autocomplete transport boundary ---

func TestAutocomplete_TransportFailureYieldsEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	page := a.Autocomplete(context.Background(), srv.Client(), search.NewQuery("chôm"))

	if page.Total != 0 {
		t.Errorf("expected total 0, got %d", page.Total)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %v", page.Items)
	}
}

func TestAutocomplete_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits": {"total": {"value": 0}, "hits": []}}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAdapter(t, srv.URL)
	page := a.Autocomplete(ctx, srv.Client(), search.NewQuery("chôm"))

	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("expected empty page on cancellation, got %+v", page)
	}
}

func TestAutocomplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_score": 4.2, "_source": {"iri": "http://example.org/c1",
						"pref": {"fr": ["chômage"]}}},
					{"_score": 1.1, "_source": {"iri": "http://example.org/c2",
						"pref": {"fr": ["chômeur"]}}}
				]
			}
		}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	page := a.Autocomplete(context.Background(), srv.Client(), search.NewQuery("chôm"))

	if page.Total != 2 {
		t.Errorf("expected total 2, got %d", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].IRI != "http://example.org/c1" {
		t.Errorf("unexpected first item %+v", page.Items[0])
	}
	if page.Items[0].RankScore() != 4.2 {
		t.Errorf("expected score 4.2, got %f", page.Items[0].RankScore())
	}
}

package opensearch

import (
	"reflect"
	"sort"
	"testing"

	"go.uber.org/zap"

	"github.com/vocnet/vocsearch/internal/domain/search"
)

func payloadAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := New("jel", map[string]any{"host": "localhost", "port": 9200}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a.(*Adapter)
}

func multiMatch(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	query, ok := payload["query"].(map[string]any)
	if !ok {
		t.Fatalf("payload has no query: %v", payload)
	}
	mm, ok := query["multi_match"].(map[string]any)
	if !ok {
		t.Fatalf("query has no multi_match: %v", query)
	}
	return mm
}

func TestBuildPayload_Defaults(t *testing.T) {
	a := payloadAdapter(t)
	q := search.NewQuery("chôm")

	payload := a.buildPayload(q)

	if payload["from"] != 0 || payload["size"] != search.DefaultLimit {
		t.Errorf("unexpected pagination: from=%v size=%v", payload["from"], payload["size"])
	}
	if payload["track_total_hits"] != true {
		t.Error("expected track_total_hits")
	}

	mm := multiMatch(t, payload)
	if mm["query"] != "chôm" || mm["type"] != "bool_prefix" || mm["analyzer"] != "fold" {
		t.Errorf("unexpected match clause: %v", mm)
	}
	wantFields := []string{"pref.*.edge", "alt.*.edge"}
	if !reflect.DeepEqual(mm["fields"], wantFields) {
		t.Errorf("fields: got %v, want %v", mm["fields"], wantFields)
	}

	if _, ok := payload["highlight"]; ok {
		t.Error("highlight must be absent unless requested")
	}

	src, ok := payload["_source"].([]string)
	if !ok || !reflect.DeepEqual(src, sourceFields) {
		t.Errorf("unexpected _source: %v", payload["_source"])
	}
}

func TestBuildPayload_LangSpecificEdgeFields(t *testing.T) {
	a := payloadAdapter(t)
	q := search.NewQuery("chôm")
	q.Lang = []string{"fr", "en"}

	mm := multiMatch(t, a.buildPayload(q))

	want := []string{"pref.fr.edge", "pref.en.edge", "alt.fr.edge", "alt.en.edge"}
	if !reflect.DeepEqual(mm["fields"], want) {
		t.Errorf("fields: got %v, want %v", mm["fields"], want)
	}
}

func TestBuildPayload_DescriptionAndSearchAll(t *testing.T) {
	a := payloadAdapter(t)
	q := search.NewQuery("chôm")
	q.Fields = []string{"description", "search_all"}
	q.Lang = []string{"fr"}

	mm := multiMatch(t, a.buildPayload(q))

	// description has no .edge subfield; search_all is flat
	want := []string{"description.fr", "search_all"}
	if !reflect.DeepEqual(mm["fields"], want) {
		t.Errorf("fields: got %v, want %v", mm["fields"], want)
	}
}

func TestBuildPayload_UnknownFieldsFallBack(t *testing.T) {
	a := payloadAdapter(t)
	q := search.NewQuery("chôm")
	q.Fields = []string{"bogus"}

	mm := multiMatch(t, a.buildPayload(q))

	if !reflect.DeepEqual(mm["fields"], defaultQueryFields) {
		t.Errorf("fields: got %v, want fallback %v", mm["fields"], defaultQueryFields)
	}
}

func TestBuildPayload_HighlightWithDisplayLangs(t *testing.T) {
	a := payloadAdapter(t)
	q := search.NewQuery("chôm")
	q.Highlight = true
	q.DisplayLangs = []string{"fr"}

	payload := a.buildPayload(q)

	hl, ok := payload["highlight"].(map[string]any)
	if !ok {
		t.Fatal("expected highlight section")
	}
	if hl["require_field_match"] != false {
		t.Error("expected require_field_match=false")
	}

	fields, ok := hl["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected highlight fields map, got %v", hl["fields"])
	}

	var keys []string
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	want := []string{"alt.fr", "description.fr", "pref.fr"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("highlight fields: got %v, want %v", keys, want)
	}

	// Whole-field highlighting: no fragmentation on the base field.
	if cfg, ok := fields["pref.fr"].(map[string]any); !ok || cfg["number_of_fragments"] != 0 {
		t.Errorf("expected number_of_fragments=0, got %v", fields["pref.fr"])
	}
}

func TestBuildPayload_HighlightWildcardWithoutDisplayLangs(t *testing.T) {
	a := payloadAdapter(t)
	q := search.NewQuery("chôm")
	q.Highlight = true

	payload := a.buildPayload(q)
	hl := payload["highlight"].(map[string]any)
	fields := hl["fields"].(map[string]any)

	for _, key := range []string{"pref.*", "alt.*", "description.*"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing wildcard highlight field %q", key)
		}
	}
}

func TestBuildPayload_PaginationPassedThrough(t *testing.T) {
	a := payloadAdapter(t)
	q := search.NewQuery("chôm")
	q.Limit = 60
	q.Offset = 0

	payload := a.buildPayload(q)
	if payload["from"] != 0 || payload["size"] != 60 {
		t.Errorf("unexpected pagination: from=%v size=%v", payload["from"], payload["size"])
	}
}

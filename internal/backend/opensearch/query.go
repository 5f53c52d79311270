package opensearch

import "github.com/vocnet/vocsearch/internal/domain/search"

// sourceFields are the document fields requested from the engine.
var sourceFields = []string{
	"iri", "scheme", "top_concept", "lang_set",
	"pref", "alt", "description", "broader", "narrower",
}

// defaultQueryFields is the fallback when field selection resolves to nothing.
var defaultQueryFields = []string{"pref.*.edge", "alt.*.edge"}

// buildPayload assembles the engine-native prefix search query. Pagination is
// whatever the caller put in q; the aggregation engine has already rewritten
// limit/offset for per-backend dispatch.
func (a *Adapter) buildPayload(q search.Query) map[string]any {
	requested := map[string]bool{}
	if len(q.Fields) == 0 {
		requested["pref"] = true
		requested["alt"] = true
	} else {
		for _, f := range q.Fields {
			requested[f] = true
		}
	}

	queryFields := buildQueryFields(q.Lang, requested)
	if len(queryFields) == 0 {
		queryFields = defaultQueryFields
	}

	payload := map[string]any{
		"from":             q.Offset,
		"size":             q.Limit,
		"track_total_hits": true,
		"_source":          sourceFields,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":    q.Q,
				"type":     "bool_prefix",
				"fields":   queryFields,
				"analyzer": "fold",
			},
		},
	}

	if q.Highlight {
		if hl := buildHighlightFields(q.DisplayLangs); len(hl) > 0 {
			payload["highlight"] = map[string]any{
				"require_field_match": false,
				"fields":              hl,
			}
		}
	}

	return payload
}

// buildQueryFields derives the match targets from the requested fields.
// pref/alt use the n-grammed .edge subfields; description has no edge
// subfield but bool_prefix still behaves acceptably for autocomplete;
// search_all is a flat cross-language catch-all.
func buildQueryFields(langs []string, requested map[string]bool) []string {
	var fields []string

	addEdge := func(root string) {
		if len(langs) > 0 {
			for _, l := range langs {
				fields = append(fields, root+"."+l+".edge")
			}
			return
		}
		fields = append(fields, root+".*.edge")
	}

	if requested["pref"] {
		addEdge("pref")
	}
	if requested["alt"] {
		addEdge("alt")
	}
	if requested["description"] {
		if len(langs) > 0 {
			for _, l := range langs {
				fields = append(fields, "description."+l)
			}
		} else {
			fields = append(fields, "description.*")
		}
	}
	if requested["search_all"] {
		fields = append(fields, "search_all")
	}

	return fields
}

// buildHighlightFields requests whole-field highlighting on the base (non
// .edge) subfields, one per display language or a wildcard when no display
// language filter is given.
func buildHighlightFields(displayLangs []string) map[string]any {
	fields := map[string]any{}

	add := func(root string) {
		if len(displayLangs) > 0 {
			for _, l := range displayLangs {
				fields[root+"."+l] = map[string]any{"number_of_fragments": 0}
			}
			return
		}
		fields[root+".*"] = map[string]any{"number_of_fragments": 0}
	}

	add("pref")
	add("alt")
	add("description")
	return fields
}

package opensearch

import (
	"sort"

	"github.com/vocnet/vocsearch/internal/domain/concept"
)

// osResponse is the autocomplete reply. _source stays loosely typed because
// deployed indexes vary in shape; each field is extracted tolerantly and
// dropped when it does not conform.
type osResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []osHit `json:"hits"`
	} `json:"hits"`
}

type osHit struct {
	Score     *float64            `json:"_score"`
	Source    map[string]any      `json:"_source"`
	Highlight map[string][]string `json:"highlight"`
}

// hitParts is one hit pulled apart before assembly into a Concept.
type hitParts struct {
	iri         string
	scheme      string
	topConcept  *bool
	langSet     []string
	broaderIDs  []string
	narrowerIDs []string
	score       *float64
	hl          map[string][]string
	prefMap     map[string]any
	altMap      map[string]any
	descMap     map[string]any
}

// formatResult turns a decoded engine reply into the canonical page.
func (a *Adapter) formatResult(data *osResponse, displayLangs []string) concept.Page {
	items := make([]concept.Concept, 0, len(data.Hits.Hits))
	for _, h := range data.Hits.Hits {
		parts := parseHit(h)
		items = append(items, conceptFromParts(parts, displayLangs))
	}
	return concept.Page{Total: data.Hits.Total.Value, Items: items}
}

// parseHit extracts the tolerated fields: top_concept must be a boolean,
// lang_set a list, relation entries strings; anything else is dropped.
func parseHit(h osHit) hitParts {
	src := h.Source
	p := hitParts{
		iri:         stringField(src, "iri"),
		scheme:      stringField(src, "scheme"),
		broaderIDs:  stringList(src["broader"]),
		narrowerIDs: stringList(src["narrower"]),
		score:       h.Score,
		hl:          h.Highlight,
		prefMap:     langMap(src["pref"]),
		altMap:      langMap(src["alt"]),
		descMap:     langMap(src["description"]),
	}
	if b, ok := src["top_concept"].(bool); ok {
		p.topConcept = &b
	}
	if ls, ok := src["lang_set"].([]any); ok {
		langs := make([]string, 0, len(ls))
		for _, v := range ls {
			if s, ok := v.(string); ok {
				langs = append(langs, s)
			}
		}
		p.langSet = concept.NormalizeLangSet(langs)
	}
	return p
}

func stringField(src map[string]any, key string) string {
	s, _ := src[key].(string)
	return s
}

// stringList keeps only the string entries of a list value.
func stringList(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func langMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// mapToLiterals converts a language-map into an ordered Literal list.
// Languages outside an active display filter are skipped. The backend's
// highlight snippet for "<field>.<lang>" is attached only to the first
// literal of that (field, language) pair. No deduplication happens here;
// that is the source index's responsibility.
func mapToLiterals(
	obj map[string]any,
	fieldName string,
	displayLangs []string,
	hl map[string][]string,
) []concept.Literal {
	if obj == nil {
		return nil
	}

	langs := make([]string, 0, len(obj))
	for l := range obj {
		langs = append(langs, l)
	}
	sort.Strings(langs)

	var out []concept.Literal
	for _, lang := range langs {
		if len(displayLangs) > 0 && !contains(displayLangs, lang) {
			continue
		}
		texts, ok := obj[lang].([]any)
		if !ok {
			continue
		}

		snippet := ""
		if snippets := hl[fieldName+"."+lang]; len(snippets) > 0 {
			snippet = snippets[0]
		}

		for idx, t := range texts {
			text, _ := t.(string)
			lit := concept.Literal{Text: text, Lang: lang}
			if idx == 0 {
				lit.Highlight = snippet
			}
			out = append(out, lit)
		}
	}
	return out
}

// chooseBestLabel picks the single display label. Sources are tried in
// priority order pref, alt, description; the first source with any candidate
// wins regardless of highlights elsewhere. Within a source, literals in the
// display-language filter are preferred (falling back to all when the filter
// excludes everything), then a highlighted literal, then the first one.
func chooseBestLabel(
	pref, alt, desc []concept.Literal,
	displayLangs []string,
) *concept.BestLabel {
	sources := []struct {
		field concept.SourceField
		lits  []concept.Literal
	}{
		{concept.SourcePref, pref},
		{concept.SourceAlt, alt},
		{concept.SourceDescription, desc},
	}

	for _, src := range sources {
		if lit, ok := pickLabel(src.lits, displayLangs); ok {
			return &concept.BestLabel{Literal: lit, SourceField: src.field}
		}
	}
	return nil
}

func pickLabel(lits []concept.Literal, displayLangs []string) (concept.Literal, bool) {
	if len(lits) == 0 {
		return concept.Literal{}, false
	}

	candidates := lits
	if len(displayLangs) > 0 {
		var filtered []concept.Literal
		for _, l := range lits {
			if contains(displayLangs, l.Lang) {
				filtered = append(filtered, l)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	for _, l := range candidates {
		if l.Highlight != "" {
			return l, true
		}
	}
	return candidates[0], true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// conceptFromParts assembles the canonical concept from one parsed hit.
func conceptFromParts(p hitParts, displayLangs []string) concept.Concept {
	pref := mapToLiterals(p.prefMap, "pref", displayLangs, p.hl)
	alt := mapToLiterals(p.altMap, "alt", displayLangs, p.hl)
	desc := mapToLiterals(p.descMap, "description", displayLangs, p.hl)

	return concept.Concept{
		IRI:         p.iri,
		Scheme:      p.scheme,
		TopConcept:  p.topConcept,
		LangSet:     p.langSet,
		Score:       p.score,
		BestLabel:   chooseBestLabel(pref, alt, desc, displayLangs),
		Pref:        pref,
		Alt:         alt,
		Description: desc,
		Broader:     idRelations(p.broaderIDs),
		Narrower:    idRelations(p.narrowerIDs),
	}
}

func idRelations(ids []string) []concept.Relation {
	out := make([]concept.Relation, len(ids))
	for i, id := range ids {
		out[i] = concept.Relation{ID: id}
	}
	return out
}

// Package concept holds the backend-agnostic search result model shared by
// all vocabulary backends.
package concept

import "encoding/json"

// Literal is a piece of text tagged with a language code and an optional
// highlighted rendering of the same text.
type Literal struct {
	Text      string `json:"text,omitempty"`
	Lang      string `json:"lang,omitempty"`
	Highlight string `json:"highlight,omitempty"`
}

// SourceField names the concept field a best label was chosen from.
type SourceField string

// Best label source fields, in selection priority order.
const (
	SourcePref        SourceField = "pref"
	SourceAlt         SourceField = "alt"
	SourceDescription SourceField = "description"
	SourceSearchAll   SourceField = "search_all"
)

// BestLabel is the single literal chosen to represent a concept in compact
// display contexts, tagged with the field it came from.
type BestLabel struct {
	Literal
	SourceField SourceField `json:"source_field"`
}

// Relation is either a bare concept identifier or a nested expanded concept.
// Expansion is backend-dependent; identifier-only relations are the norm.
type Relation struct {
	ID      string   `json:"-"`
	Concept *Concept `json:"-"`
}

// MarshalJSON renders a Relation as a plain string when unexpanded.
func (r Relation) MarshalJSON() ([]byte, error) {
	if r.Concept != nil {
		return json.Marshal(r.Concept)
	}
	return json.Marshal(r.ID)
}

// UnmarshalJSON accepts either a bare identifier string or a nested concept.
func (r *Relation) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	r.Concept = new(Concept)
	return json.Unmarshal(data, r.Concept)
}

// Concept is the canonical search hit. IRI is the dedup key and is always
// present and non-empty on well-formed instances.
type Concept struct {
	IRI        string   `json:"iri"`
	Scheme     string   `json:"scheme,omitempty"`
	Vocab      string   `json:"vocab,omitempty"`
	Identifier string   `json:"identifier,omitempty"`
	TopConcept *bool    `json:"top_concept,omitempty"`
	LangSet    []string `json:"lang_set,omitempty"`

	Score     *float64   `json:"score,omitempty"`
	BestLabel *BestLabel `json:"best_label,omitempty"`

	Pref        []Literal `json:"pref,omitempty"`
	Alt         []Literal `json:"alt,omitempty"`
	Description []Literal `json:"description,omitempty"`

	Broader  []Relation `json:"broader"`
	Narrower []Relation `json:"narrower"`
}

// RankScore returns the backend-assigned relevance, treating absent as 0.
func (c *Concept) RankScore() float64 {
	if c.Score == nil {
		return 0
	}
	return *c.Score
}

// Page is one page of ranked, deduplicated search results. Total counts
// matches known to have existed, summed across contributing backends.
type Page struct {
	Total int       `json:"total"`
	Items []Concept `json:"items"`
}

// EmptyPage returns the degraded zero-result page.
func EmptyPage() Page {
	return Page{Total: 0, Items: []Concept{}}
}

// NormalizeLangSet drops duplicate language codes, keeping the first
// occurrence and preserving order. Returns nil for empty input.
func NormalizeLangSet(langs []string) []string {
	if len(langs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(langs))
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

package vocsearch

import "encoding/json"

// ExpandMode controls relation rendering in autocomplete results.
type ExpandMode string

// Expand mode constants.
const (
	ExpandIDs  ExpandMode = "ids"
	ExpandFull ExpandMode = "full"
)

// Literal is one label string in one language.
type Literal struct {
	Text      string `json:"text,omitempty"`
	Lang      string `json:"lang,omitempty"`
	Highlight string `json:"highlight,omitempty"`
}

// BestLabel is the single display label chosen for a concept.
type BestLabel struct {
	Literal
	SourceField string `json:"source_field"`
}

// Relation links a concept to a broader or narrower concept, either as a
// bare identifier or as a fully expanded concept.
type Relation struct {
	ID      string
	Concept *Concept
}

// UnmarshalJSON accepts both the identifier and the expanded form.
func (r *Relation) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	r.Concept = &Concept{}
	if err := json.Unmarshal(data, r.Concept); err != nil {
		return err
	}
	r.ID = r.Concept.IRI
	return nil
}

// MarshalJSON renders the identifier form unless the concept is expanded.
func (r Relation) MarshalJSON() ([]byte, error) {
	if r.Concept == nil {
		return json.Marshal(r.ID)
	}
	return json.Marshal(r.Concept)
}

// Concept is one vocabulary concept as returned by the API.
type Concept struct {
	IRI         string     `json:"iri"`
	Scheme      string     `json:"scheme,omitempty"`
	Vocab       string     `json:"vocab,omitempty"`
	Identifier  string     `json:"identifier,omitempty"`
	TopConcept  *bool      `json:"top_concept,omitempty"`
	LangSet     []string   `json:"lang_set,omitempty"`
	Score       *float64   `json:"score,omitempty"`
	BestLabel   *BestLabel `json:"best_label,omitempty"`
	Pref        []Literal  `json:"pref,omitempty"`
	Alt         []Literal  `json:"alt,omitempty"`
	Description []Literal  `json:"description,omitempty"`
	Broader     []Relation `json:"broader"`
	Narrower    []Relation `json:"narrower"`
}

// Page is an aggregated result page.
type Page struct {
	Total int       `json:"total"`
	Items []Concept `json:"items"`
}

// Vocabulary is one configured backend's status snapshot.
type Vocabulary struct {
	Identifier string   `json:"identifier"`
	Languages  []string `json:"languages"`
	DocCount   int      `json:"doc_count"`
	Status     string   `json:"status"`
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// AutocompleteRequest carries the autocomplete query parameters. Zero values
// mean "server default".
type AutocompleteRequest struct {
	Q             string
	Vocabs        []string
	Lang          []string
	Fields        []string
	DisplayLangs  []string
	DisplayFields []string
	Limit         int
	Offset        int
	Highlight     bool
	Broader       ExpandMode
	Narrower      ExpandMode
	BroaderDepth  int
	NarrowerDepth int
}

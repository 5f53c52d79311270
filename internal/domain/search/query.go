// Package search holds the federated autocomplete query model.
package search

import "fmt"

// ExpandMode controls how broader/narrower relations are returned.
type ExpandMode string

const (
	// ExpandIDs returns relations as bare identifier strings.
	ExpandIDs ExpandMode = "ids"
	// ExpandFull requests nested concept expansion. No adapter implements
	// it yet; adapters degrade to ids with a warning.
	ExpandFull ExpandMode = "full"
)

// ParseExpandMode validates an expansion mode string, defaulting to ids.
func ParseExpandMode(s string) (ExpandMode, error) {
	switch s {
	case "", string(ExpandIDs):
		return ExpandIDs, nil
	case string(ExpandFull):
		return ExpandFull, nil
	default:
		return "", fmt.Errorf("expand mode must be %q or %q, got %q", ExpandIDs, ExpandFull, s)
	}
}

// Pagination bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100

	// DefaultDepth is the relation traversal depth; UnlimitedDepth removes
	// the bound. Both are plumbed through but unused until an adapter
	// implements full expansion.
	DefaultDepth   = 1
	UnlimitedDepth = -1
)

// Query carries one federated autocomplete request. Nil slices mean "no
// filter". Vocabs selects a subset of configured backends.
type Query struct {
	Q             string
	Vocabs        []string
	Lang          []string
	Fields        []string
	DisplayLangs  []string
	DisplayFields []string // advisory; adapters currently populate all fields
	Limit         int
	Offset        int
	Highlight     bool
	Broader       ExpandMode
	Narrower      ExpandMode
	BroaderDepth  int
	NarrowerDepth int
}

// NewQuery returns a Query with defaults applied.
func NewQuery(q string) Query {
	return Query{
		Q:             q,
		Limit:         DefaultLimit,
		Offset:        0,
		Broader:       ExpandIDs,
		Narrower:      ExpandIDs,
		BroaderDepth:  DefaultDepth,
		NarrowerDepth: DefaultDepth,
	}
}

// Validate checks pagination bounds and expansion modes.
func (q Query) Validate() error {
	if q.Limit < 1 || q.Limit > MaxLimit {
		return fmt.Errorf("limit must be in [1,%d], got %d", MaxLimit, q.Limit)
	}
	if q.Offset < 0 {
		return fmt.Errorf("offset must be >= 0, got %d", q.Offset)
	}
	if _, err := ParseExpandMode(string(q.Broader)); err != nil {
		return fmt.Errorf("broader: %w", err)
	}
	if _, err := ParseExpandMode(string(q.Narrower)); err != nil {
		return fmt.Errorf("narrower: %w", err)
	}
	return nil
}

// PerBackendSize is how many hits each backend is asked for: enough to merge
// globally and re-slice, so backends never apply the caller's offset.
func (q Query) PerBackendSize() int {
	size := q.Limit + q.Offset
	if size < 0 {
		return 0
	}
	return size
}

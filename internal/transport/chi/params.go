package chi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/vocnet/vocsearch/internal/domain/search"
)

// csvList splits a comma-separated query value, trimming whitespace and
// dropping empty items. Returns nil for "no filter".
func csvList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

func boolParam(values url.Values, name string, def bool) (bool, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", name, raw)
	}
	return b, nil
}

// queryFromRequest parses and validates the autocomplete query parameters.
func queryFromRequest(values url.Values) (search.Query, error) {
	q := search.NewQuery(values.Get("q"))
	q.Vocabs = csvList(values.Get("vocabs"))
	q.Lang = csvList(values.Get("lang"))
	q.Fields = csvList(values.Get("fields"))
	q.DisplayLangs = csvList(values.Get("display_langs"))
	q.DisplayFields = csvList(values.Get("display_fields"))

	var err error
	if q.Limit, err = intParam(values, "limit", search.DefaultLimit); err != nil {
		return search.Query{}, err
	}
	if q.Offset, err = intParam(values, "offset", 0); err != nil {
		return search.Query{}, err
	}
	if q.Highlight, err = boolParam(values, "highlight", false); err != nil {
		return search.Query{}, err
	}
	if q.Broader, err = search.ParseExpandMode(values.Get("broader")); err != nil {
		return search.Query{}, fmt.Errorf("broader: %w", err)
	}
	if q.Narrower, err = search.ParseExpandMode(values.Get("narrower")); err != nil {
		return search.Query{}, fmt.Errorf("narrower: %w", err)
	}
	if q.BroaderDepth, err = intParam(values, "broader_depth", search.DefaultDepth); err != nil {
		return search.Query{}, err
	}
	if q.NarrowerDepth, err = intParam(values, "narrower_depth", search.DefaultDepth); err != nil {
		return search.Query{}, err
	}

	if err := q.Validate(); err != nil {
		return search.Query{}, err
	}
	return q, nil
}

package vocsearch

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Autocomplete runs a federated prefix search. An empty Q yields an empty
// page without an error, mirroring the server behavior.
func (c *Client) Autocomplete(ctx context.Context, req AutocompleteRequest) (page Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("autocomplete", start, err) }()

	err = c.get(ctx, "/api/v0/autocomplete", autocompleteParams(req), &page)
	if err != nil {
		return Page{}, err
	}
	if page.Items == nil {
		page.Items = []Concept{}
	}
	return page, nil
}

// autocompleteParams renders only the parameters the caller set, leaving
// the rest to server defaults.
func autocompleteParams(req AutocompleteRequest) url.Values {
	params := url.Values{}
	params.Set("q", req.Q)

	lists := []struct {
		name   string
		values []string
	}{
		{"vocabs", req.Vocabs},
		{"lang", req.Lang},
		{"fields", req.Fields},
		{"display_langs", req.DisplayLangs},
		{"display_fields", req.DisplayFields},
	}
	for _, l := range lists {
		if len(l.values) > 0 {
			params.Set(l.name, strings.Join(l.values, ","))
		}
	}

	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		params.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.Highlight {
		params.Set("highlight", "true")
	}
	if req.Broader != "" {
		params.Set("broader", string(req.Broader))
	}
	if req.Narrower != "" {
		params.Set("narrower", string(req.Narrower))
	}
	if req.BroaderDepth != 0 {
		params.Set("broader_depth", strconv.Itoa(req.BroaderDepth))
	}
	if req.NarrowerDepth != 0 {
		params.Set("narrower_depth", strconv.Itoa(req.NarrowerDepth))
	}
	return params
}

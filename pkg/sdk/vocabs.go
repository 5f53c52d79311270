package vocsearch

import (
	"context"
	"net/url"
	"time"
)

type vocabListResponse struct {
	Items []Vocabulary `json:"items"`
}

// Vocabs lists the configured vocabulary backends. With probe each backend
// is live-checked; without it the listing reflects configuration only.
func (c *Client) Vocabs(ctx context.Context, probe bool) (items []Vocabulary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("vocabs", start, err) }()

	params := url.Values{}
	if !probe {
		params.Set("probe", "false")
	}

	var out vocabListResponse
	if err = c.get(ctx, "/api/v0/vocabs", params, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Package pagecache caches aggregated autocomplete pages in a key-value
// store for a short TTL.
package pagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vocnet/vocsearch/internal/db"
	"github.com/vocnet/vocsearch/internal/domain/concept"
	"github.com/vocnet/vocsearch/internal/domain/search"
)

const cacheKeyPrefix = "vocsearch:page_cache:"

// Searcher is the inner aggregation engine being decorated.
type Searcher interface {
	Autocomplete(ctx context.Context, q search.Query) concept.Page
}

// store is the consumer interface for the page cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSearcher serves recent aggregate pages from the store, falling
// through to the inner engine on a miss. Cache failures degrade to a miss;
// they never fail the request.
type CachedSearcher struct {
	inner      Searcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Searcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSearcher {
	return &CachedSearcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Autocomplete returns a cached page or calls the inner engine.
func (c *CachedSearcher) Autocomplete(ctx context.Context, q search.Query) concept.Page {
	key := cacheKey(q)

	if page, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return page
	}

	c.incCache("miss")

	page := c.inner.Autocomplete(ctx, q)
	c.putToCache(ctx, key, page)
	return page
}

func (c *CachedSearcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes every query parameter that affects the aggregate result.
func cacheKey(q search.Query) string {
	var b strings.Builder
	b.WriteString(q.Q)
	for _, part := range [][]string{q.Vocabs, q.Lang, q.Fields, q.DisplayLangs, q.DisplayFields} {
		b.WriteByte('|')
		b.WriteString(strings.Join(part, ","))
	}
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(q.Limit))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(q.Offset))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(q.Highlight))
	fmt.Fprintf(&b, "|%s:%d|%s:%d", q.Broader, q.BroaderDepth, q.Narrower, q.NarrowerDepth)

	h := sha256.Sum256([]byte(b.String()))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedSearcher) getFromCache(ctx context.Context, key string) (concept.Page, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached page", zap.String("key", key), zap.Error(err))
		}
		return concept.Page{}, false
	}

	var page concept.Page
	if err := json.Unmarshal(data, &page); err != nil {
		c.logger.Warn("Failed to decode cached page", zap.String("key", key), zap.Error(err))
		return concept.Page{}, false
	}
	if page.Items == nil {
		page.Items = []concept.Concept{}
	}
	return page, true
}

func (c *CachedSearcher) putToCache(ctx context.Context, key string, page concept.Page) {
	data, err := json.Marshal(page)
	if err != nil {
		c.logger.Warn("Failed to encode page for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache page", zap.String("key", key), zap.Error(err))
	}
}

// Package vocab implements the aggregation engine: it owns the configured
// backend adapters and fans queries out across them.
package vocab

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vocnet/vocsearch/internal/backend"
	"github.com/vocnet/vocsearch/internal/domain/concept"
	"github.com/vocnet/vocsearch/internal/domain/search"
	domvocab "github.com/vocnet/vocsearch/internal/domain/vocab"
)

// Per-backend call timeouts. Probes are cheap; autocomplete gets a little
// more room.
const (
	defaultProbeTimeout = 3 * time.Second
	defaultQueryTimeout = 5 * time.Second
)

// Service aggregates search across the configured vocabulary backends.
// Immutable after construction; safe for concurrent use.
type Service struct {
	adapters []backend.Adapter
	byID     map[string]backend.Adapter
	client   *http.Client
	logger   *zap.Logger

	probeTimeout time.Duration
	queryTimeout time.Duration
}

// New validates every registry entry and constructs its adapter, failing on
// the first violation. This runs before the service accepts traffic; a
// non-nil error is fatal to startup.
func New(
	entries []backend.Entry,
	registry backend.Registry,
	client *http.Client,
	logger *zap.Logger,
) (*Service, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("vocabularies must be a non-empty list")
	}

	s := &Service{
		adapters:     make([]backend.Adapter, 0, len(entries)),
		byID:         make(map[string]backend.Adapter, len(entries)),
		client:       client,
		logger:       logger,
		probeTimeout: defaultProbeTimeout,
		queryTimeout: defaultQueryTimeout,
	}

	for _, e := range entries {
		if e.Identifier == "" {
			return nil, fmt.Errorf("each vocabulary must have a non-empty identifier")
		}
		if _, exists := s.byID[e.Identifier]; exists {
			return nil, fmt.Errorf("%w %q", backend.ErrDuplicateIdentifier, e.Identifier)
		}
		if e.Type == "" {
			return nil, fmt.Errorf("[%s] type must be specified", e.Identifier)
		}
		if e.Config == nil {
			return nil, fmt.Errorf("[%s] config must be an object", e.Identifier)
		}

		adapter, err := registry.New(e.Type, e.Identifier, e.Config, logger)
		if err != nil {
			return nil, err
		}
		s.adapters = append(s.adapters, adapter)
		s.byID[e.Identifier] = adapter
	}

	return s, nil
}

// WithTimeouts overrides the per-backend call timeouts. Non-positive values
// keep the defaults.
func (s *Service) WithTimeouts(probe, query time.Duration) *Service {
	if probe > 0 {
		s.probeTimeout = probe
	}
	if query > 0 {
		s.queryTimeout = query
	}
	return s
}

// List returns one status snapshot per configured backend. Without probing
// it reports ok with unknown counts and languages, making no network calls.
// With probing every backend is checked concurrently; adapters absorb their
// own failures, so every backend yields a snapshot.
func (s *Service) List(ctx context.Context, probe bool) []domvocab.Vocabulary {
	items := make([]domvocab.Vocabulary, len(s.adapters))

	if !probe {
		for i, a := range s.adapters {
			items[i] = domvocab.Vocabulary{
				Identifier: a.Identifier(),
				Languages:  []string{},
				DocCount:   0,
				Status:     domvocab.StatusOK,
			}
		}
		return items
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, a := range s.adapters {
		i, a := i, a
		g.Go(func() error {
			defer s.recoverBackend(a.Identifier(), "probe", func() {
				items[i] = domvocab.Unavailable(a.Identifier())
			})

			callCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
			defer cancel()
			items[i] = a.Probe(callCtx, s.client)
			return nil
		})
	}
	_ = g.Wait()

	for _, it := range items {
		if it.Status == domvocab.StatusUnavailable {
			s.logger.Warn("Backend marked unavailable by probe", zap.String("vocab", it.Identifier))
		}
	}

	return items
}

// Autocomplete fans the query out to the selected backends, then merges,
// ranks, deduplicates, and paginates into a single page. A failed or
// timed-out backend contributes nothing; the call itself never fails.
func (s *Service) Autocomplete(ctx context.Context, q search.Query) concept.Page {
	if strings.TrimSpace(q.Q) == "" {
		return concept.EmptyPage()
	}

	targets := s.selectAdapters(q.Vocabs)
	if len(targets) == 0 {
		return concept.EmptyPage()
	}

	// Every backend answers from its own offset 0 with enough results for
	// the engine to merge globally and re-slice.
	backendQuery := q
	backendQuery.Limit = q.PerBackendSize()
	backendQuery.Offset = 0

	pages := make([]concept.Page, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	for i, a := range targets {
		i, a := i, a
		g.Go(func() error {
			// Adapters are contracted not to fail; a panicking one is
			// discarded rather than aborting the aggregate response.
			defer s.recoverBackend(a.Identifier(), "autocomplete", func() {
				pages[i] = concept.EmptyPage()
			})

			callCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
			defer cancel()
			pages[i] = a.Autocomplete(callCtx, s.client, backendQuery)
			return nil
		})
	}
	_ = g.Wait()

	merged := mergePages(pages)
	rank(merged.Items)
	merged.Items = dedupe(merged.Items)
	merged.Items = paginate(merged.Items, q.Offset, q.Limit)
	return merged
}

// selectAdapters resolves the requested subset against the configured
// backends, preserving configuration order. Unknown identifiers are logged
// and skipped, never an error.
func (s *Service) selectAdapters(vocabs []string) []backend.Adapter {
	if len(vocabs) == 0 {
		return s.adapters
	}

	requested := make(map[string]bool, len(vocabs))
	for _, v := range vocabs {
		requested[v] = true
	}

	var unknown []string
	for _, v := range vocabs {
		if _, ok := s.byID[v]; !ok {
			unknown = append(unknown, v)
		}
	}
	if len(unknown) > 0 {
		s.logger.Warn("Ignoring unknown vocabulary identifiers", zap.Strings("vocabs", unknown))
	}

	var selected []backend.Adapter
	for _, a := range s.adapters {
		if requested[a.Identifier()] {
			selected = append(selected, a)
		}
	}
	return selected
}

func (s *Service) recoverBackend(identifier, op string, degrade func()) {
	if r := recover(); r != nil {
		s.logger.Warn("Backend call panicked; discarding its result",
			zap.String("vocab", identifier), zap.String("operation", op), zap.Any("panic", r))
		degrade()
	}
}

// mergePages sums totals and concatenates items, preserving each backend's
// discovery order within its page.
func mergePages(pages []concept.Page) concept.Page {
	merged := concept.Page{Items: []concept.Concept{}}
	for _, p := range pages {
		merged.Total += p.Total
		merged.Items = append(merged.Items, p.Items...)
	}
	return merged
}

// rank sorts by score descending with IRI descending as the tie-break, so
// output order is deterministic regardless of which backend answered first.
func rank(items []concept.Concept) {
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := items[i].RankScore(), items[j].RankScore()
		if si != sj {
			return si > sj
		}
		return items[i].IRI > items[j].IRI
	})
}

// dedupe keeps the first occurrence of each IRI in ranked order, so the
// highest-ranked copy of a concept found by several backends wins.
func dedupe(items []concept.Concept) []concept.Concept {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, c := range items {
		if _, ok := seen[c.IRI]; ok {
			continue
		}
		seen[c.IRI] = struct{}{}
		out = append(out, c)
	}
	return out
}

func paginate(items []concept.Concept, offset, limit int) []concept.Concept {
	if offset >= len(items) {
		return []concept.Concept{}
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Package backend defines the capability contract every vocabulary backend
// adapter satisfies, and the string-keyed registry of adapter types.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/vocnet/vocsearch/internal/domain/concept"
	"github.com/vocnet/vocsearch/internal/domain/search"
	"github.com/vocnet/vocsearch/internal/domain/vocab"
)

// Config validation errors, fatal at startup.
var (
	ErrInvalidConfig       = errors.New("invalid backend config")
	ErrUnknownType         = errors.New("unknown backend type")
	ErrDuplicateIdentifier = errors.New("duplicate backend identifier")
)

// Adapter is a connector to one vocabulary data source. Implementations are
// stateless after construction and safe for concurrent use.
//
// Probe and Autocomplete absorb their own transport and parse failures: they
// log a warning and return the degraded value (unavailable status, empty
// page) instead of an error. Callers never see a single backend fail.
type Adapter interface {
	Identifier() string
	Probe(ctx context.Context, client *http.Client) vocab.Vocabulary
	Autocomplete(ctx context.Context, client *http.Client, q search.Query) concept.Page
}

// Entry is one configured backend: a unique identifier, an adapter type
// selector, and an opaque config map the adapter validates itself.
type Entry struct {
	Identifier string
	Type       string
	Config     map[string]any
}

// Factory constructs an adapter from a registry entry's opaque config map,
// validating it eagerly. A non-nil error fails startup.
type Factory func(identifier string, cfg map[string]any, logger *zap.Logger) (Adapter, error)

// Registry maps backend type names to adapter factories.
type Registry map[string]Factory

// New constructs an adapter for the given entry type.
func (r Registry) New(typ, identifier string, cfg map[string]any, logger *zap.Logger) (Adapter, error) {
	factory, ok := r[typ]
	if !ok {
		return nil, fmt.Errorf("[%s] %w %q", identifier, ErrUnknownType, typ)
	}
	return factory(identifier, cfg, logger)
}

package health

import "context"

// CachePinger checks page cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

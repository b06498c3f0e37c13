package health

import "context"

// DBPinger checks store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexProber checks that the FT index exists.
type IndexProber interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}

package location

import (
	"context"
)

// Source loads the reference dataset. Implementations are only called during
// startup, before the Index is shared.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

// Build loads all entries from src and indexes them.
func Build(ctx context.Context, src Source) (*Index, error) {
	entries, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(entries), nil
}

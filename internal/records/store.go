// Package records holds the immutable record store and the ports that feed it.
package records

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"salesdash/internal/core"
)

var ErrNilLoader = errors.New("nil record loader")

// Store is the read-only dataset. It is safe for concurrent use because
// nothing writes to it after construction.
type Store struct {
	records  []core.SalesRecord
	loadedAt time.Time
}

// NewStore validates every record and rejects duplicate IDs. The input slice
// is copied.
func NewStore(in []core.SalesRecord) (*Store, error) {
	seen := make(map[string]struct{}, len(in))
	for i, r := range in {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d (id %q): %w", i, r.ID, err)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("record %d: %w: %q", i, core.ErrDuplicateRecord, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return &Store{records: slices.Clone(in), loadedAt: time.Now()}, nil
}

// Load runs the loader once and builds a Store from its output.
func Load(ctx context.Context, l Loader) (*Store, error) {
	if l == nil {
		return nil, ErrNilLoader
	}
	recs, err := l.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return NewStore(recs)
}

// All returns a copy of the records in load order.
func (s *Store) All() []core.SalesRecord {
	return slices.Clone(s.records)
}

func (s *Store) Len() int { return len(s.records) }

func (s *Store) LoadedAt() time.Time { return s.loadedAt }

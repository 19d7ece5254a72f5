package records

import (
	"context"

	"salesdash/internal/core"
)

// Ports for record sources.
type (
	// Loader materializes the full dataset once. Implementations are called at
	// startup; the result is wrapped in a Store and never reloaded in place.
	Loader interface {
		Load(ctx context.Context) ([]core.SalesRecord, error)
	}

	// Writer replaces the persisted dataset. Only the seeding tools use it.
	Writer interface {
		ReplaceAll(ctx context.Context, records []core.SalesRecord) error
	}
)

package catalog

import "context"

// Store is the durable home of all Product records. Implementations must
// re-read from durable storage on every call and serialize writes so that
// concurrent handlers cannot lose updates.
type Store interface {
	// Load reads the current catalog. A missing or unreadable backing
	// document yields an empty catalog, never an error.
	Load(ctx context.Context) (map[string]Product, error)

	// LoadNormalized is Load with optional fields of every record defaulted
	// to empty, upgrading documents written by older schema versions.
	LoadNormalized(ctx context.Context) (map[string]Product, error)

	// Save replaces the whole catalog and appends one immutable snapshot to
	// the backup history.
	Save(ctx context.Context, products map[string]Product) error

	// Update runs mutate against a fresh read of the catalog and saves the
	// result, holding the store's write lock for the whole cycle.
	Update(ctx context.Context, mutate func(map[string]Product) error) error
}

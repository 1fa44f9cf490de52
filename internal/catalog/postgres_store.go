package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/lojabot/internal/logger"
)

// PostgresStore keeps the catalog in a products table and appends one row to
// an append-only snapshots table per save. It offers the same semantics as
// FileStore behind the Store interface.
type PostgresStore struct {
	mu sync.Mutex
	db *sqlx.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type productRow struct {
	ID string `db:"id"`
	Product
}

const selectProducts = `
SELECT id,
       COALESCE(name, '')        AS name,
       COALESCE(description, '') AS description,
       COALESCE(price, 0)        AS price,
       COALESCE(photo_ref, '')   AS photo_ref,
       COALESCE(link, '')        AS link,
       COALESCE(preview, '')     AS preview
  FROM products`

// Load reads all product rows into a keyed catalog.
func (s *PostgresStore) Load(ctx context.Context) (map[string]Product, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, selectProducts); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	products := make(map[string]Product, len(rows))
	for _, row := range rows {
		products[row.ID] = row.Product
	}
	return products, nil
}

// LoadNormalized is identical to Load: NULL columns are already coalesced to
// empty values on the way out.
func (s *PostgresStore) LoadNormalized(ctx context.Context) (map[string]Product, error) {
	return s.Load(ctx)
}

// Save replaces the products table content and appends a snapshot row, all in
// one transaction.
func (s *PostgresStore) Save(ctx context.Context, products map[string]Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, products)
}

// Update applies mutate to a fresh read and persists the result under the
// store's write lock.
func (s *PostgresStore) Update(ctx context.Context, mutate func(map[string]Product) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := mutate(products); err != nil {
		return err
	}
	return s.save(ctx, products)
}

func (s *PostgresStore) save(ctx context.Context, products map[string]Product) error {
	start := time.Now()

	snapshot, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	const insert = `
INSERT INTO products (id, name, description, price, photo_ref, link, preview)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for id, p := range products {
		if _, err := tx.ExecContext(ctx, insert,
			id, p.Name, p.Description, p.Price, p.PhotoRef, p.Link, p.Preview,
		); err != nil {
			return fmt.Errorf("insert product %s: %w", id, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_snapshots (taken_at, data) VALUES (now(), $1)`,
		snapshot,
	); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	logger.Store.LogAttrs(ctx, slog.LevelInfo, "catalog saved",
		slog.String("event", "store.save"),
		slog.String("driver", "postgres"),
		slog.Int("products", len(products)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

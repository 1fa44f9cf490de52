package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/lojabot/internal/logger"
)

const snapshotTimeLayout = "20060102_150405.000000000"

// FileStore persists the catalog as one JSON document plus a directory of
// timestamped snapshots, one appended per save. The document layout is
// compatible with catalogs written by earlier versions of the store.
type FileStore struct {
	mu        sync.Mutex
	path      string
	backupDir string
}

// NewFileStore builds a store over the given document path and snapshot directory.
func NewFileStore(path, backupDir string) *FileStore {
	return &FileStore{path: path, backupDir: backupDir}
}

// Load reads the current catalog document. A missing or corrupt document is
// treated as an empty catalog.
func (s *FileStore) Load(ctx context.Context) (map[string]Product, error) {
	return s.load(ctx), nil
}

// LoadNormalized returns the catalog with every record's optional fields
// present. Decoding into Product already maps absent JSON keys to empty
// values, so records written by the legacy schema come back complete.
func (s *FileStore) LoadNormalized(ctx context.Context) (map[string]Product, error) {
	return s.load(ctx), nil
}

// Save replaces the catalog document and writes one snapshot to the backup history.
func (s *FileStore) Save(ctx context.Context, products map[string]Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, products)
}

// Update applies mutate to a fresh read of the catalog and persists the
// result under the store's write lock, so two concurrent updates cannot
// overwrite each other's records.
func (s *FileStore) Update(ctx context.Context, mutate func(map[string]Product) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.load(ctx)
	if err := mutate(products); err != nil {
		return err
	}
	return s.save(ctx, products)
}

func (s *FileStore) load(ctx context.Context) map[string]Product {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Store.LogAttrs(ctx, slog.LevelWarn, "catalog read failed",
				slog.String("event", "store.load"),
				slog.String("path", s.path),
				slog.String("err", err.Error()),
			)
		}
		return map[string]Product{}
	}

	var products map[string]Product
	if err := json.Unmarshal(data, &products); err != nil {
		// Corrupt document: treated as absence, never fatal.
		logger.Store.LogAttrs(ctx, slog.LevelWarn, "catalog document corrupt",
			slog.String("event", "store.load"),
			slog.String("path", s.path),
			slog.String("err", err.Error()),
		)
		return map[string]Product{}
	}
	if products == nil {
		products = map[string]Product{}
	}
	return products
}

func (s *FileStore) save(ctx context.Context, products map[string]Product) error {
	start := time.Now()

	data, err := json.MarshalIndent(products, "", "    ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create catalog dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	snapshot, err := s.writeSnapshot(data)
	if err != nil {
		return err
	}

	logger.Store.LogAttrs(ctx, slog.LevelInfo, "catalog saved",
		slog.String("event", "store.save"),
		slog.Int("products", len(products)),
		slog.String("snapshot", snapshot),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// writeSnapshot appends one immutable copy of the document to the backup
// history. The nanosecond timestamp keeps names unique within a process.
func (s *FileStore) writeSnapshot(data []byte) (string, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
	name := fmt.Sprintf("%s_%s.json", base, time.Now().Format(snapshotTimeLayout))
	path := filepath.Join(s.backupDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return name, nil
}

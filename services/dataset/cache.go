package dataset

import (
	"fmt"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// Store is a read-through memoization layer over Load. The key carries
// the file's mtime and size, so editing or replacing the file changes
// the key and the stale entry simply ages out.
type Store struct {
	tables *cache.Cache
	logger *zap.Logger
}

func NewStore(expiration, cleanup time.Duration, logger *zap.Logger) *Store {
	if expiration <= 0 {
		expiration = DefaultCacheExpiration
	}
	if cleanup <= 0 {
		cleanup = CacheCleanupInterval
	}
	return &Store{
		tables: cache.New(expiration, cleanup),
		logger: logger,
	}
}

// Load returns the parsed table for path, reusing the cached parse when
// the file identity (path, mtime, size) is unchanged.
func (s *Store) Load(path string) (*Table, error) {
	key, err := identityKey(path)
	if err != nil {
		return nil, err
	}

	if hit, ok := s.tables.Get(key); ok {
		s.logger.Debug("dataset cache hit", zap.String("path", path))
		return hit.(*Table), nil
	}

	tbl, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.tables.SetDefault(key, tbl)
	s.logger.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("columns", len(tbl.Columns)),
		zap.Int("rows", len(tbl.Rows)),
		zap.String("separator", string(tbl.Separator)),
	)
	return tbl, nil
}

// Invalidate drops the cached parse for path's current identity.
func (s *Store) Invalidate(path string) {
	if key, err := identityKey(path); err == nil {
		s.tables.Delete(key)
	}
}

// Flush drops every cached table.
func (s *Store) Flush() {
	s.tables.Flush()
}

func identityKey(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return fmt.Sprintf("%s|%d|%d", path, fi.ModTime().UnixNano(), fi.Size()), nil
}

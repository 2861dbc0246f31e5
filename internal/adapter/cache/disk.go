package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"intelligence-layer/internal/domain"
)

// DiskStore persists cache entries as one JSON document per key under a
// directory, mirroring the layout other consumers of the cache expect
// (<dir>/<key>.json). Entries older than the TTL read as a miss; the sweeper
// worker removes them for good. Missing or unreadable entries are a miss,
// never an error.
type DiskStore struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger
}

func NewDiskStore(dir string, ttl time.Duration, logger *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &DiskStore{dir: dir, ttl: ttl, logger: logger}, nil
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *DiskStore) Get(_ context.Context, key string) ([]byte, bool) {
	path := s.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if s.ttl > 0 && time.Since(info.ModTime()) > s.ttl {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Set writes the value through a temp file and rename so readers always see a
// whole value; racing writers for the same key end up last-writer-wins.
func (s *DiskStore) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to publish cache entry: %w", err)
	}
	return nil
}

// SweepExpired deletes entries past the TTL and returns how many were removed.
func (s *DiskStore) SweepExpired(now time.Time) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > s.ttl {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

var _ domain.CacheStore = (*DiskStore)(nil)

package dashboard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type loadFunc func(*zap.Logger, dataset.Source) (*dataset.Table, error)

type cacheEntry struct {
	fingerprint string
	data        *Dataset
}

// Cache memoizes datasets by source identity and file modification identity.
// Concurrent requests for the same input share one load; a source whose files
// changed is reloaded and replaces its previous entry.
type Cache struct {
	logger  *zap.Logger
	load    loadFunc
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache returns an empty Cache.
func NewCache(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		logger:  logger,
		load:    dataset.Load,
		entries: make(map[string]cacheEntry),
	}
}

// Dataset returns the dataset for src, loading it at most once per distinct
// file state.
func (c *Cache) Dataset(src dataset.Source, policy accuracy.ZeroActualPolicy) (*Dataset, error) {
	id := sourceID(src, policy)
	fingerprint, err := fingerprintOf(src.Paths())
	if err != nil {
		metrics.RecordLoad(err, 0, 0)
		return nil, err
	}

	if data, ok := c.lookup(id, fingerprint); ok {
		metrics.DatasetCacheHits.Inc()
		return data, nil
	}

	v, err, shared := c.group.Do(id+"@"+fingerprint, func() (interface{}, error) {
		if data, ok := c.lookup(id, fingerprint); ok {
			return data, nil
		}

		start := time.Now()
		table, err := c.load(c.logger, src)
		if err != nil {
			metrics.RecordLoad(err, time.Since(start), 0)
			return nil, err
		}
		data := Build(table, policy)
		metrics.RecordLoad(nil, time.Since(start), len(data.Observations))

		c.mu.Lock()
		c.entries[id] = cacheEntry{fingerprint: fingerprint, data: data}
		c.mu.Unlock()

		c.logger.Info("dataset loaded",
			zap.String("op", "dashboard.Cache.Dataset"),
			zap.String("source", id),
			zap.Int("observations", len(data.Observations)),
			zap.Int("series", len(data.Metrics)),
			zap.Duration("duration", time.Since(start)),
		)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("shared in-flight dataset load",
			zap.String("op", "dashboard.Cache.Dataset"),
			zap.String("source", id),
		)
	}
	return v.(*Dataset), nil
}

func (c *Cache) lookup(id, fingerprint string) (*Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	if !ok || entry.fingerprint != fingerprint {
		return nil, false
	}
	return entry.data, true
}

// Len returns the number of cached sources.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func sourceID(src dataset.Source, policy accuracy.ZeroActualPolicy) string {
	parts := []string{string(src.Shape), src.Sheet, src.MetricsSheet, policy.String()}
	for _, p := range src.Paths() {
		parts = append(parts, absPath(p))
	}
	return strings.Join(parts, "|")
}

// fingerprintOf identifies the current state of the files: name,
// modification time and size of each.
func fingerprintOf(paths []string) (string, error) {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", &dataset.InputNotFoundError{Path: p, Err: err}
			}
			return "", fmt.Errorf("failed to stat %s: %w", p, err)
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", absPath(p), info.ModTime().UnixNano(), info.Size()))
	}
	return strings.Join(parts, "|"), nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Package catalog serves the diagnostic classification catalog with a
// local disk cache, so the CLI can label history entries without a
// round-trip to the service on every run.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/neuroscan/scanclient/internal/models"
	"github.com/neuroscan/scanclient/internal/transfer"
)

// Catalog fetches and caches the classification list. The cache is
// best-effort: failures to read or write it never fail a lookup while
// the service is reachable.
type Catalog struct {
	client    *transfer.Client
	cachePath string
	ttl       time.Duration
	log       *logrus.Entry
}

// cacheFile is the msgpack-encoded on-disk cache layout.
type cacheFile struct {
	FetchedAt       time.Time               `msgpack:"fetchedAt"`
	Classifications []models.Classification `msgpack:"classifications"`
}

// New creates a Catalog caching at cachePath with the given freshness
// window.
func New(client *transfer.Client, cachePath string, ttl time.Duration, log *logrus.Entry) *Catalog {
	return &Catalog{
		client:    client,
		cachePath: cachePath,
		ttl:       ttl,
		log:       log,
	}
}

// Get returns the classification catalog, preferring a fresh cache,
// then the service, then a stale cache as a last resort when the
// service is unreachable.
func (c *Catalog) Get(ctx context.Context) ([]models.Classification, error) {
	if cached, ok := c.readCache(); ok && time.Since(cached.FetchedAt) < c.ttl {
		return cached.Classifications, nil
	}

	classifications, err := c.client.ListClassifications(ctx)
	if err != nil {
		if cached, ok := c.readCache(); ok {
			c.log.WithError(err).Warn("classification fetch failed, serving stale cache")
			return cached.Classifications, nil
		}
		return nil, err
	}

	c.writeCache(classifications)
	return classifications, nil
}

func (c *Catalog) readCache() (*cacheFile, bool) {
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return nil, false
	}
	var cached cacheFile
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		c.log.WithError(err).Debug("discarding corrupt classification cache")
		return nil, false
	}
	if len(cached.Classifications) == 0 {
		return nil, false
	}
	return &cached, true
}

func (c *Catalog) writeCache(classifications []models.Classification) {
	data, err := msgpack.Marshal(cacheFile{
		FetchedAt:       time.Now(),
		Classifications: classifications,
	})
	if err != nil {
		c.log.WithError(err).Warn("failed to encode classification cache")
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0755); err != nil {
		c.log.WithError(err).Warn("failed to create cache directory")
		return
	}
	if err := os.WriteFile(c.cachePath, data, 0644); err != nil {
		c.log.WithError(err).Warn(fmt.Sprintf("failed to write classification cache to %s", c.cachePath))
	}
}

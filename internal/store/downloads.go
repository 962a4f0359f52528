// Package store keeps generated report documents until they are downloaded
// or expire.
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"clientreport/internal/document"
)

// Downloads is an in-memory, expiring store of report artifacts keyed by a
// random id.
type Downloads struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewDownloads creates a store whose entries live for ttl. Expired entries
// are purged every cleanupInterval.
func NewDownloads(ttl, cleanupInterval time.Duration) *Downloads {
	return &Downloads{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Put stores the artifact and returns its download id.
func (d *Downloads) Put(a *document.Artifact) string {
	id := uuid.NewString()
	d.cache.Set(id, a, cache.DefaultExpiration)
	return id
}

// Get returns the artifact stored under id, if it has not expired.
func (d *Downloads) Get(id string) (*document.Artifact, bool) {
	v, ok := d.cache.Get(id)
	if !ok {
		return nil, false
	}
	a, ok := v.(*document.Artifact)
	return a, ok
}

// Len returns the number of stored artifacts, expired ones included until
// the next cleanup.
func (d *Downloads) Len() int { return d.cache.ItemCount() }

// TTL returns how long an artifact stays downloadable.
func (d *Downloads) TTL() time.Duration { return d.ttl }

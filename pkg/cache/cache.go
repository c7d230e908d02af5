// Package cache stores fetched flat-file records and rendered artifacts.
//
// Records are fetched from remote sequence databases in batches and rarely
// change, so taxotree keeps them on disk between runs in a [FileCache]
// under ~/.cache/taxotree. The server keeps rendered artifacts in a
// [MemoryCache]. A [NullCache] disables caching.
//
// Keys are built by a [Keyer] so that each kind of entry lives in its own
// namespace:
//
//	k := cache.NewDefaultKeyer()
//	k.RecordKey("uniprot", "P69905")       // "record:uniprot:P69905"
//	k.ArtifactKey(runID, "krona-xml")      // "artifact:<sha256>"
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the data stored under key. A miss is not an error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// RecordKey is the key of one flat-file entry.
	RecordKey(db, accession string) string

	// ArtifactKey is the key of one rendering of a tree.
	ArtifactKey(treeID, format string) string
}

// DefaultKeyer builds plain namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) RecordKey(db, accession string) string {
	return "record:" + db + ":" + accession
}

func (DefaultKeyer) ArtifactKey(treeID, format string) string {
	return hashKey("artifact", treeID, format)
}

package cache

// ScopedKeyer prefixes every key of an inner keyer. Records fetched from
// different servers are kept apart by scoping the keyer with the server
// URL:
//
//	k := cache.NewScopedKeyer(nil, "https://www.ebi.ac.uk/Tools/dbfetch/dbfetch|")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the default one.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) RecordKey(db, accession string) string {
	return k.prefix + k.inner.RecordKey(db, accession)
}

func (k *ScopedKeyer) ArtifactKey(treeID, format string) string {
	return k.prefix + k.inner.ArtifactKey(treeID, format)
}

package taxodb

import (
	"context"
	"strings"
)

// Separator joins organism and lineage in accession store values.
const Separator = "_@#$_"

// Store is a read-only lineage lookup.
type Store interface {
	// Get returns the value stored under key. A missing key is not an
	// error: ok is false.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Close() error
}

// Writer is a store that can be filled.
type Writer interface {
	Store
	Put(ctx context.Context, key, value string) error
}

// SplitOrganism splits an accession store value into organism and
// lineage. A value without separator is all lineage.
func SplitOrganism(value string) (organism, lineage string) {
	if o, l, ok := strings.Cut(value, Separator); ok {
		return o, l
	}
	return "", value
}

// JoinOrganism is the inverse of SplitOrganism.
func JoinOrganism(organism, lineage string) string {
	return organism + Separator + lineage
}

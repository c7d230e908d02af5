// Package fetch retrieves flat-file entries from sequence databases.
//
// A [Fetcher] takes a batch of database/accession references and returns
// the raw entry of each one it could find. Missing entries are simply
// absent from the result; only transport failures are errors.
//
//	f := fetch.NewHTTP(fetch.HTTPOptions{})
//	f = fetch.NewCached(f, fileCache, nil, 30*24*time.Hour)
//	entries, err := f.Fetch(ctx, []record.Ref{{DB: "uniprot", Accession: "P69905"}})
//
// [NewHTTP] talks to an EBI dbfetch compatible service, [NewCached] adds a
// byte cache in front of any fetcher and [NewLocal] serves entries from
// flat files on disk.
package fetch

import (
	"context"

	"github.com/matzehuels/taxotree/pkg/record"
)

// DefaultMaxBatch is the number of references sent per request.
const DefaultMaxBatch = 500

// Fetcher retrieves raw flat-file entries.
type Fetcher interface {
	Fetch(ctx context.Context, refs []record.Ref) (map[record.Ref][]byte, error)
}

// Batches groups refs by database and cuts each group into batches of at
// most size references. Databases appear in first-seen order and
// duplicates are dropped.
func Batches(refs []record.Ref, size int) [][]record.Ref {
	if size <= 0 {
		size = DefaultMaxBatch
	}
	var order []string
	groups := make(map[string][]record.Ref)
	seen := make(map[record.Ref]bool, len(refs))
	for _, r := range refs {
		if seen[r] {
			continue
		}
		seen[r] = true
		if _, ok := groups[r.DB]; !ok {
			order = append(order, r.DB)
		}
		groups[r.DB] = append(groups[r.DB], r)
	}

	var out [][]record.Ref
	for _, db := range order {
		g := groups[db]
		for len(g) > size {
			out = append(out, g[:size:size])
			g = g[size:]
		}
		out = append(out, g)
	}
	return out
}

// match assigns the entries of a flat file to the refs they answer.
func match(refs []record.Ref, data []byte) map[record.Ref][]byte {
	out := make(map[record.Ref][]byte, len(refs))
	for _, e := range record.Split(data) {
		r := record.Parse(e, false)
		if r.Format == record.FormatUnknown {
			continue
		}
		for _, ref := range refs {
			if _, done := out[ref]; !done && r.HasAccession(ref.Accession) {
				out[ref] = e
			}
		}
	}
	return out
}

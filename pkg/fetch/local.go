package fetch

import (
	"context"
	"io"
	"strings"

	"github.com/shenwei356/xopen"

	"github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/record"
)

// Local serves entries from flat files loaded into memory. Entries are
// indexed by entry name and accessions, whatever database a reference
// names.
type Local struct {
	entries map[string][]byte
}

// NewLocal loads the flat files at paths. Gzipped files are accepted.
func NewLocal(paths ...string) (*Local, error) {
	l := &Local{entries: make(map[string][]byte)}
	for _, p := range paths {
		r, err := xopen.Ropen(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", p)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", p)
		}
		l.Add(data)
	}
	return l, nil
}

// Add indexes the entries of a flat file.
func (l *Local) Add(data []byte) {
	for _, e := range record.Split(data) {
		r := record.Parse(e, false)
		if r.Format == record.FormatUnknown {
			continue
		}
		if r.ID != "" {
			l.entries[strings.ToUpper(r.ID)] = e
		}
		for _, a := range r.Accessions {
			l.entries[strings.ToUpper(a)] = e
		}
	}
}

// Len returns the number of indexed names.
func (l *Local) Len() int { return len(l.entries) }

func (l *Local) Fetch(_ context.Context, refs []record.Ref) (map[record.Ref][]byte, error) {
	out := make(map[record.Ref][]byte)
	for _, r := range refs {
		if e, ok := l.entries[strings.ToUpper(r.Accession)]; ok {
			out[r] = e
		}
	}
	return out, nil
}

var _ Fetcher = (*Local)(nil)

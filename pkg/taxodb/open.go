package taxodb

import (
	"context"
	"net/url"
	"strings"

	"github.com/matzehuels/taxotree/pkg/errors"
)

// Open opens the store named by uri. See the package documentation for
// the accepted forms.
func Open(ctx context.Context, uri string) (Store, error) {
	return open(ctx, uri, false)
}

// OpenWriter opens the store named by uri for filling. For kv files the
// database is created, replacing any existing file.
func OpenWriter(ctx context.Context, uri string) (Writer, error) {
	return open(ctx, uri, true)
}

func open(ctx context.Context, uri string, create bool) (Writer, error) {
	switch {
	case uri == "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty store uri")
	case uri == "memory:":
		return NewMemory(nil), nil
	case strings.HasPrefix(uri, "redis://"), strings.HasPrefix(uri, "rediss://"):
		u, err := url.Parse(uri)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse store uri")
		}
		prefix := u.Query().Get("prefix")
		q := u.Query()
		q.Del("prefix")
		u.RawQuery = q.Encode()
		return OpenRedis(ctx, u.String(), prefix)
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		u, err := url.Parse(uri)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse store uri")
		}
		database := strings.Trim(u.Path, "/")
		if database == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mongodb uri %q names no database", uri)
		}
		collection := u.Query().Get("collection")
		q := u.Query()
		q.Del("collection")
		u.RawQuery = q.Encode()
		return OpenMongo(ctx, u.String(), database, collection)
	case strings.Contains(uri, "://") && !strings.HasPrefix(uri, "kv://"):
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported store uri %q", uri)
	default:
		path := strings.TrimPrefix(uri, "kv://")
		if create {
			return CreateKV(path)
		}
		return OpenKV(path)
	}
}

// Set holds the stores used to annotate one run.
type Set struct {
	// Organisms maps organism names to lineages.
	Organisms Store

	// Accessions maps database names ("silva", "gg") to accession stores.
	Accessions map[string]Store
}

// OpenSet opens the organism store and one accession store per entry of
// accessions. Stores already opened are closed on failure.
func OpenSet(ctx context.Context, organisms string, accessions map[string]string) (*Set, error) {
	s := &Set{Accessions: make(map[string]Store, len(accessions))}
	if organisms != "" {
		st, err := Open(ctx, organisms)
		if err != nil {
			return nil, err
		}
		s.Organisms = st
	}
	for db, uri := range accessions {
		st, err := Open(ctx, uri)
		if err != nil {
			s.Close()
			return nil, errors.Wrap(errors.GetCode(err), err, "accession store %s", db)
		}
		s.Accessions[db] = st
	}
	return s, nil
}

// Close closes every store of the set.
func (s *Set) Close() error {
	var first error
	if s.Organisms != nil {
		first = s.Organisms.Close()
	}
	for _, st := range s.Accessions {
		if err := st.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

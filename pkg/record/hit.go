package record

import (
	"strings"

	"github.com/matzehuels/taxotree/pkg/errors"
)

// DefaultSeparator splits the fields of a hit identifier.
const DefaultSeparator = "|"

// Ref names one entry of one database.
type Ref struct {
	DB        string
	Accession string
}

// String returns "db:accession", the form dbfetch services accept.
func (r Ref) String() string { return r.DB + ":" + r.Accession }

// ParseHit extracts the database and accession from a hit identifier.
//
// The identifier is split by sep:
//   - five fields ("gi|123|emb|CAA123.1|"): database and accession are the
//     third and fourth fields;
//   - two or three fields ("sp|P69905", "gb||AB000263"): the database is
//     the first field, the accession the second, or the third when the
//     second is empty;
//   - one field: the whole identifier is the accession, which requires
//     forcedDB.
//
// A non-empty forcedDB replaces the database found in the identifier.
// Accession versions are dropped. ParseHit fails with
// [errors.ErrCodeParseRow] when no database or accession can be found.
func ParseHit(field, sep, forcedDB string) (Ref, error) {
	if sep == "" {
		sep = DefaultSeparator
	}
	f := strings.Split(field, sep)

	var ref Ref
	switch len(f) {
	case 5:
		ref = Ref{DB: f[2], Accession: f[3]}
	case 2, 3:
		ref = Ref{DB: f[0], Accession: f[1]}
		if len(f) == 3 && f[1] == "" {
			ref.Accession = f[2]
		}
	case 1:
		ref = Ref{Accession: f[0]}
	}
	if forcedDB != "" {
		ref.DB = forcedDB
	}
	ref.Accession = StripVersion(ref.Accession)

	if ref.DB == "" || ref.Accession == "" {
		return Ref{}, errors.New(errors.ErrCodeParseRow, "cannot parse accession from %q", field)
	}
	return ref, nil
}

package record

import (
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/taxotree/pkg/errors"
)

//go:embed aliases.toml
var defaultAliases string

// Action tells what to do with a hit of a given database.
type Action int

const (
	// Fetch retrieves the entry from the record fetcher.
	Fetch Action = iota
	// Skip does no lookup; the row has no taxonomy.
	Skip
	// AccessionStore looks the accession up in the database's own store.
	AccessionStore
)

func (a Action) String() string {
	switch a {
	case Skip:
		return "skip"
	case AccessionStore:
		return "accession-store"
	default:
		return "fetch"
	}
}

// Aliases maps database names from hit identifiers to canonical names.
type Aliases struct {
	// Canonical maps short names ("sp", "gb") to canonical ones.
	Canonical map[string]string `toml:"canonical"`

	// Prefixes are canonical names that also match any name they prefix,
	// e.g. "embl_wgs" for "embl_wgs_aaaa01".
	Prefixes []string `toml:"prefixes"`

	Skip            []string `toml:"skip"`
	AccessionStores []string `toml:"accession_stores"`
}

// DefaultAliases returns the built-in alias table.
func DefaultAliases() *Aliases {
	a, err := DecodeAliases(strings.NewReader(defaultAliases))
	if err != nil {
		panic("record: bad built-in alias table: " + err.Error())
	}
	return a
}

// DecodeAliases reads an alias table in TOML.
func DecodeAliases(r io.Reader) (*Aliases, error) {
	var a Aliases
	if _, err := toml.NewDecoder(r).Decode(&a); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode alias table")
	}
	return &a, nil
}

// LoadAliases reads an alias table from path.
func LoadAliases(path string) (*Aliases, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open alias table")
	}
	defer f.Close()
	return DecodeAliases(f)
}

// Resolve returns the canonical name of db and what to do with its hits.
// Names the table does not know are fetched under their own name.
func (a *Aliases) Resolve(db string) (string, Action) {
	for _, s := range a.Skip {
		if db == s {
			return db, Skip
		}
	}
	for _, s := range a.AccessionStores {
		if db == s {
			return db, AccessionStore
		}
	}
	if c, ok := a.Canonical[db]; ok {
		return c, Fetch
	}
	for _, p := range a.Prefixes {
		if strings.HasPrefix(db, p) {
			return p, Fetch
		}
	}
	return db, Fetch
}

package record

import (
	"bufio"
	"bytes"
	"strings"
)

// Format is the flat-file layout of an entry.
type Format int

const (
	FormatUnknown Format = iota
	FormatEMBL           // UniProt, EMBL
	FormatGenBank        // GenBank, GenPept, RefSeq
)

func (f Format) String() string {
	switch f {
	case FormatEMBL:
		return "embl"
	case FormatGenBank:
		return "genbank"
	default:
		return "unknown"
	}
}

// Record holds the taxonomy-relevant fields of one entry.
type Record struct {
	Format Format

	// ID is the entry name (UniProt ID line, GenBank LOCUS name).
	ID string

	// Accessions lists the accession numbers of the entry, without
	// version suffix.
	Accessions []string

	OrganismName string
	TaxID        string

	// Lineage is the lineage as written in the entry, usually without
	// ranks.
	Lineage string

	Description string

	// ResolvedLineage is the ranked lineage found in an organism store.
	// It is empty until annotation fills it in.
	ResolvedLineage string
}

// Taxonomy returns the resolved lineage if there is one, else the lineage
// from the entry.
func (r Record) Taxonomy() string {
	if r.ResolvedLineage != "" {
		return r.ResolvedLineage
	}
	return r.Lineage
}

// HasAccession reports whether acc names this entry.
func (r Record) HasAccession(acc string) bool {
	acc = StripVersion(acc)
	if strings.EqualFold(acc, r.ID) {
		return true
	}
	for _, a := range r.Accessions {
		if strings.EqualFold(a, acc) {
			return true
		}
	}
	return false
}

// StripVersion removes a ".N" version suffix from an accession.
func StripVersion(acc string) string {
	if i := strings.IndexByte(acc, '.'); i >= 0 {
		return acc[:i]
	}
	return acc
}

// Detect returns the layout of an entry from its first bytes.
func Detect(entry []byte) Format {
	switch {
	case bytes.HasPrefix(entry, []byte("ID")):
		return FormatEMBL
	case bytes.HasPrefix(entry, []byte("LOCUS")):
		return FormatGenBank
	default:
		return FormatUnknown
	}
}

// Parse parses one entry. Descriptions are only collected when
// withDescription is set. An entry of unknown layout yields a zero
// Record with FormatUnknown.
func Parse(entry []byte, withDescription bool) Record {
	switch Detect(entry) {
	case FormatEMBL:
		return parseEMBL(entry, withDescription)
	case FormatGenBank:
		return parseGenBank(entry, withDescription)
	default:
		return Record{}
	}
}

// ParseAll splits a flat file into entries and parses each of them.
// Entries of unknown layout are dropped.
func ParseAll(data []byte, withDescription bool) []Record {
	var out []Record
	for _, e := range Split(data) {
		if r := Parse(e, withDescription); r.Format != FormatUnknown {
			out = append(out, r)
		}
	}
	return out
}

// Split cuts a flat file into entries at "//" terminator lines. The
// terminators are not part of the entries; blank entries are dropped.
func Split(data []byte) [][]byte {
	var out [][]byte
	start := 0
	for start < len(data) {
		end := bytes.IndexByte(data[start:], '\n')
		var line []byte
		next := len(data)
		if end >= 0 {
			line = data[start : start+end]
			next = start + end + 1
		} else {
			line = data[start:]
		}
		if string(bytes.TrimRight(line, "\r ")) == "//" {
			if e := bytes.TrimSpace(data[:start]); len(e) > 0 {
				out = append(out, e)
			}
			data = data[next:]
			start = 0
			continue
		}
		start = next
	}
	if e := bytes.TrimSpace(data); len(e) > 0 {
		out = append(out, e)
	}
	return out
}

func lines(entry []byte) *bufio.Scanner {
	sc := bufio.NewScanner(bytes.NewReader(entry))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return sc
}

func parseEMBL(entry []byte, withDescription bool) Record {
	r := Record{Format: FormatEMBL}
	var seenOS, seenOC, ocDone bool
	var desc, lineage, taxID strings.Builder

	sc := lines(entry)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		tag := strings.TrimSpace(line[:min(2, len(line))])
		value := ""
		if len(line) > 5 {
			value = line[5:]
		}

		switch {
		case tag == "ID":
			if f := strings.Fields(value); len(f) > 0 {
				r.ID = strings.TrimSuffix(f[0], ";")
			}
		case tag == "AC":
			for _, a := range strings.Split(value, ";") {
				if a = strings.TrimSpace(a); a != "" {
					r.Accessions = append(r.Accessions, StripVersion(a))
				}
			}
		case tag == "DE" && withDescription:
			appendField(&desc, value)
		case tag == "OS" && !seenOS:
			name, _, _ := strings.Cut(value, "(")
			r.OrganismName = strings.TrimSpace(name)
			seenOS = true
		case tag == "OC" && !ocDone:
			appendField(&lineage, value)
			seenOC = true
		case tag == "XX" && seenOC:
			ocDone = true
		case tag == "OX":
			taxID.WriteString(value)
		case tag == "RN" || tag == "DR" || tag == "CC" || tag == "FH" || tag == "SQ":
			return finish(r, &desc, &lineage, &taxID)
		}
	}
	return finish(r, &desc, &lineage, &taxID)
}

func parseGenBank(entry []byte, withDescription bool) Record {
	r := Record{Format: FormatGenBank}
	var inLineage bool
	var desc, lineage, taxID strings.Builder

	sc := lines(entry)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		tag := strings.TrimSpace(line[:min(12, len(line))])
		value := ""
		if len(line) > 12 {
			value = line[12:]
		}

		switch {
		case tag == "LOCUS":
			if f := strings.Fields(value); len(f) > 0 {
				r.ID = f[0]
			}
		case tag == "ACCESSION":
			for _, a := range strings.Fields(value) {
				r.Accessions = append(r.Accessions, StripVersion(a))
			}
		case tag == "DEFINITION" && withDescription:
			appendField(&desc, value)
		case tag == "ORGANISM":
			r.OrganismName = strings.TrimSpace(value)
			inLineage = true
		case tag == "" && inLineage:
			appendField(&lineage, value)
		case tag == "TaxID":
			taxID.WriteString(value)
		case tag == "REFERENCE" || tag == "COMMENT" || tag == "FEATURES" || tag == "ORIGIN":
			return finish(r, &desc, &lineage, &taxID)
		default:
			inLineage = false
		}
	}
	return finish(r, &desc, &lineage, &taxID)
}

func appendField(b *strings.Builder, value string) {
	value = strings.TrimSpace(value)
	if b.Len() > 0 && value != "" {
		b.WriteByte(' ')
	}
	b.WriteString(value)
}

func finish(r Record, desc, lineage, taxID *strings.Builder) Record {
	r.Description = strings.TrimSpace(desc.String())
	r.Lineage = strings.TrimSpace(lineage.String())
	r.TaxID = strings.TrimSpace(taxID.String())
	return r
}

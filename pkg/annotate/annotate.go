// Package annotate appends taxonomy columns to the rows of a search
// report.
//
// For every row the hit identifier column is parsed into a database and
// an accession. Depending on the database the entry is fetched and parsed,
// looked up in an accession store, or skipped. Fetched entries have their
// organism resolved to a ranked lineage through the organism store; when
// the store does not know the organism the entry's own lineage is used.
//
// Rows are written in input order as
//
//	<row>\t<organism>\t<lineage>[\t<description>]
//
// Rows without taxonomy are echoed unchanged to the main output, unless
// Split is set, and to the no-taxonomy output when there is one.
package annotate

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/fetch"
	"github.com/matzehuels/taxotree/pkg/record"
	"github.com/matzehuels/taxotree/pkg/taxodb"
)

// DefaultColumn holds the hit identifier in BLAST tabular output.
const DefaultColumn = 2

// Options configures an annotation run.
type Options struct {
	// Column is the 1-based whitespace-separated column of the hit
	// identifier.
	Column int

	// Separator splits the hit identifier, "|" by default.
	Separator string

	// DB forces the database of every hit.
	DB string

	// Description appends the entry description column.
	Description bool

	// Split keeps rows without taxonomy out of the main output.
	Split bool

	// MaxBatch is the number of references fetched at once.
	MaxBatch int
}

// Stats counts what happened to the rows.
type Stats struct {
	Rows       int
	Annotated  int
	NoTaxonomy int
	Unparsed   int // rows whose accession could not be found
	Skipped    int // rows of skipped databases
	Fetched    int // entries requested from the fetcher
	Batches    int
}

// Annotator annotates reports. It memoises entries and organism lineages
// across calls, so one Annotator should serve one run.
type Annotator struct {
	Fetcher fetch.Fetcher
	Stores  *taxodb.Set
	Aliases *record.Aliases
	Logger  *log.Logger

	opts Options

	records   map[record.Ref]*record.Record // nil value: not found
	organisms map[string]string             // "" value: not found
}

// New returns an annotator. A nil alias table means the default one.
func New(f fetch.Fetcher, stores *taxodb.Set, aliases *record.Aliases, opts Options) (*Annotator, error) {
	if opts.Column == 0 {
		opts.Column = DefaultColumn
	}
	if err := errors.ValidateColumn("column", opts.Column); err != nil {
		return nil, err
	}
	if opts.Separator == "" {
		opts.Separator = record.DefaultSeparator
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = fetch.DefaultMaxBatch
	}
	if aliases == nil {
		aliases = record.DefaultAliases()
	}
	if stores == nil {
		stores = &taxodb.Set{}
	}
	return &Annotator{
		Fetcher:   f,
		Stores:    stores,
		Aliases:   aliases,
		Logger:    log.New(io.Discard),
		opts:      opts,
		records:   make(map[record.Ref]*record.Record),
		organisms: make(map[string]string),
	}, nil
}

// pending is a row waiting for its batch to be fetched.
type pending struct {
	text   string
	ref    record.Ref
	action record.Action
	ok     bool // ref was parsed
}

// Run annotates the report read from r. notax may be nil.
func (a *Annotator) Run(ctx context.Context, r io.Reader, out, notax io.Writer) (Stats, error) {
	var stats Stats
	bw := bufio.NewWriter(out)
	var nw *bufio.Writer
	if notax != nil {
		nw = bufio.NewWriter(notax)
	}

	var queue []pending
	toFetch := 0
	flush := func() error {
		if err := a.resolve(ctx, queue, &stats); err != nil {
			return err
		}
		for _, p := range queue {
			if err := a.write(bw, nw, p, &stats); err != nil {
				return err
			}
		}
		queue = queue[:0]
		toFetch = 0
		return nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		stats.Rows++

		p := pending{text: text}
		ref, err := a.parseRow(text)
		if err != nil {
			stats.Unparsed++
			a.Logger.Warn("cannot parse accession", "line", line, "err", errors.UserMessage(err))
		} else {
			p.ok = true
			p.ref.Accession = ref.Accession
			p.ref.DB, p.action = a.Aliases.Resolve(ref.DB)
			if p.action == record.Skip {
				stats.Skipped++
				a.Logger.Debug("database skipped", "line", line, "db", ref.DB)
			}
			if p.action == record.Fetch {
				if _, known := a.records[p.ref]; !known {
					toFetch++
				}
			}
		}
		queue = append(queue, p)

		if toFetch >= a.opts.MaxBatch {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return stats, errors.Wrap(errors.ErrCodeInvalidInput, err, "read line %d", line+1)
	}
	if err := flush(); err != nil {
		return stats, err
	}
	if err := bw.Flush(); err != nil {
		return stats, errors.Wrap(errors.ErrCodeOutputFailed, err, "write output")
	}
	if nw != nil {
		if err := nw.Flush(); err != nil {
			return stats, errors.Wrap(errors.ErrCodeOutputFailed, err, "write no-taxonomy output")
		}
	}
	return stats, nil
}

func (a *Annotator) parseRow(text string) (record.Ref, error) {
	fields := strings.Fields(text)
	if a.opts.Column > len(fields) {
		return record.Ref{}, errors.New(errors.ErrCodeParseRow, "no column %d (%d columns)", a.opts.Column, len(fields))
	}
	return record.ParseHit(fields[a.opts.Column-1], a.opts.Separator, a.opts.DB)
}

// resolve fills the record memo for every row of the queue.
func (a *Annotator) resolve(ctx context.Context, queue []pending, stats *Stats) error {
	var refs []record.Ref
	queued := make(map[record.Ref]bool)
	for _, p := range queue {
		if !p.ok || queued[p.ref] {
			continue
		}
		if _, known := a.records[p.ref]; known {
			continue
		}
		switch p.action {
		case record.Fetch:
			queued[p.ref] = true
			refs = append(refs, p.ref)
		case record.AccessionStore:
			if err := a.lookupAccession(ctx, p.ref); err != nil {
				return err
			}
		}
	}
	if len(refs) == 0 || a.Fetcher == nil {
		return nil
	}

	stats.Batches++
	stats.Fetched += len(refs)
	a.Logger.Debug("fetching batch", "refs", len(refs))
	entries, err := a.Fetcher.Fetch(ctx, refs)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if _, known := a.records[ref]; known {
			continue
		}
		e, ok := entries[ref]
		if !ok {
			a.records[ref] = nil
			continue
		}
		rec := record.Parse(e, a.opts.Description)
		if err := a.resolveOrganism(ctx, &rec); err != nil {
			return err
		}
		a.records[ref] = &rec
	}
	return nil
}

func (a *Annotator) lookupAccession(ctx context.Context, ref record.Ref) error {
	st, ok := a.Stores.Accessions[ref.DB]
	if !ok {
		a.Logger.Warn("no accession store configured", "db", ref.DB)
		a.records[ref] = nil
		return nil
	}
	v, found, err := st.Get(ctx, ref.Accession)
	if err != nil {
		return err
	}
	if !found {
		a.records[ref] = nil
		return nil
	}
	org, lineage := taxodb.SplitOrganism(v)
	a.records[ref] = &record.Record{OrganismName: org, ResolvedLineage: lineage}
	return nil
}

func (a *Annotator) resolveOrganism(ctx context.Context, rec *record.Record) error {
	if rec.OrganismName == "" || a.Stores.Organisms == nil {
		return nil
	}
	if lineage, ok := a.organisms[rec.OrganismName]; ok {
		rec.ResolvedLineage = lineage
		return nil
	}
	lineage, _, err := a.Stores.Organisms.Get(ctx, rec.OrganismName)
	if err != nil {
		return err
	}
	a.organisms[rec.OrganismName] = lineage
	rec.ResolvedLineage = lineage
	return nil
}

func (a *Annotator) write(out, notax *bufio.Writer, p pending, stats *Stats) error {
	var rec *record.Record
	if p.ok && p.action != record.Skip {
		rec = a.records[p.ref]
	}
	if rec != nil && rec.Taxonomy() != "" {
		stats.Annotated++
		out.WriteString(p.text)
		out.WriteByte('\t')
		out.WriteString(rec.OrganismName)
		out.WriteByte('\t')
		out.WriteString(rec.Taxonomy())
		if a.opts.Description {
			out.WriteByte('\t')
			out.WriteString(rec.Description)
		}
		_, err := out.WriteString("\n")
		return err
	}

	stats.NoTaxonomy++
	if notax != nil {
		notax.WriteString(p.text)
		notax.WriteByte('\n')
	}
	if a.opts.Split {
		return nil
	}
	out.WriteString(p.text)
	_, err := out.WriteString("\n")
	return err
}

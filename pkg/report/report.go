// Package report reads tabular alignment reports.
//
// A report has one hit per line and tab separated columns. The first column
// is the query identifier; the score and taxonomy columns are configurable.
// Column numbers are 1-based in every user facing surface and converted to
// 0-based indices by [NewColumns].
//
// The reader keeps track of the byte offset of every line so that a query
// can later be traced back to the record it came from.
package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/shenwei356/xopen"

	"github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/selection"
	"github.com/matzehuels/taxotree/pkg/taxon"
)

// Default 1-based columns of a BLAST tabular report annotated with a
// lineage column.
const (
	DefaultScoreColumn = 12
	DefaultTaxColumn   = 14
)

// Row is one non-empty line of a report.
type Row struct {
	Line   int    // 1-based line number
	Offset int64  // byte offset of the line start
	Text   string // the line without its terminator
	Fields []string
}

// Reader iterates over the rows of a report.
type Reader struct {
	br     *bufio.Reader
	offset int64
	line   int
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64<<10)}
}

// Open opens a report file, transparently decompressing gzip, bzip2, xz
// and zstd input. "-" reads standard input.
func Open(path string) (*xopen.Reader, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open report %s", path)
	}
	return r, nil
}

// Next returns the next non-empty row. It returns io.EOF after the last row.
func (r *Reader) Next() (Row, error) {
	for {
		start := r.offset
		text, err := r.br.ReadString('\n')
		r.offset += int64(len(text))
		if len(text) > 0 {
			r.line++
		}
		text = strings.TrimRight(text, "\r\n")
		if text != "" {
			return Row{
				Line:   r.line,
				Offset: start,
				Text:   text,
				Fields: strings.Split(text, "\t"),
			}, nil
		}
		if err != nil {
			if err == io.EOF {
				return Row{}, io.EOF
			}
			return Row{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read line %d", r.line+1)
		}
	}
}

// ParseScore parses a score or e-value. Values written without mantissa,
// such as "e-10", are read as "1e-10".
func ParseScore(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "e") || strings.HasPrefix(s, "E") {
		s = "1" + s
	}
	return strconv.ParseFloat(s, 64)
}

// Columns holds 0-based column indices.
type Columns struct {
	Query int
	Score int
	Tax   int
}

// NewColumns converts 1-based score and taxonomy columns.
func NewColumns(scoreColumn, taxColumn int) (Columns, error) {
	if err := errors.ValidateColumn("score_column", scoreColumn); err != nil {
		return Columns{}, err
	}
	if err := errors.ValidateColumn("tax_column", taxColumn); err != nil {
		return Columns{}, err
	}
	return Columns{Query: 0, Score: scoreColumn - 1, Tax: taxColumn - 1}, nil
}

// HitOptions controls how a row is turned into a hit.
type HitOptions struct {
	Columns      Columns
	DropCellular bool
}

// Hit extracts the query and the hit of a row. The lineage is pre-cleaned
// with [taxon.Clean]; a row without the taxonomy column yields a hit with
// no lineage. A missing or unparseable score is an error: the report does
// not have the expected layout.
func Hit(row Row, opts HitOptions) (string, selection.Hit, error) {
	c := opts.Columns
	query := row.Fields[c.Query]
	if c.Score >= len(row.Fields) {
		return "", selection.Hit{}, errors.New(errors.ErrCodeInvalidFormat,
			"line %d: no score column %d (%d columns)", row.Line, c.Score+1, len(row.Fields))
	}
	score, err := ParseScore(row.Fields[c.Score])
	if err != nil {
		return "", selection.Hit{}, errors.Wrap(errors.ErrCodeInvalidFormat, err,
			"line %d: score column %d", row.Line, c.Score+1)
	}
	h := selection.Hit{Score: score, Offset: row.Offset}
	if c.Tax < len(row.Fields) {
		if lineage := strings.TrimSpace(row.Fields[c.Tax]); lineage != "" {
			h.Lineage = taxon.Clean(lineage, opts.DropCellular)
		}
	}
	return query, h, nil
}

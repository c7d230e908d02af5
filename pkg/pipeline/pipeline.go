// Package pipeline runs the aggregation of a search report into a taxon
// tree and renders the tree into the requested formats.
//
// The pipeline has two stages:
//
//  1. Build: read the report, select the best (and delta) hits of every
//     query and insert their lineages into a fresh tree
//  2. Render: serialize the tree into each requested format
//
// Both the CLI and the HTTP server go through a [Runner], which caches
// rendered artifacts by tree identity:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, report, pipeline.Options{
//	    DeltaPercent: 5,
//	    RankTracking: true,
//	    Formats:      []string{pipeline.FormatKronaXML, pipeline.FormatText},
//	})
//	xml := result.Artifacts[pipeline.FormatKronaXML]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxotree/pkg/errors"
	taxio "github.com/matzehuels/taxotree/pkg/io"
	"github.com/matzehuels/taxotree/pkg/report"
	"github.com/matzehuels/taxotree/pkg/taxon"
)

// =============================================================================
// Formats
// =============================================================================

const (
	FormatText      = "text"
	FormatKronaXML  = "krona-xml"
	FormatKronaJSON = "krona-json"
	FormatKronaHTML = "krona-html"
	FormatDOT       = "dot"
	FormatSVG       = "svg"
	FormatDump      = "dump"
	FormatJSON      = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText:      true,
	FormatKronaXML:  true,
	FormatKronaJSON: true,
	FormatKronaHTML: true,
	FormatDOT:       true,
	FormatSVG:       true,
	FormatDump:      true,
	FormatJSON:      true,
}

// Extensions maps formats to output file extensions.
var Extensions = map[string]string{
	FormatText:      ".txt",
	FormatKronaXML:  ".krona.xml",
	FormatKronaJSON: ".krona.json",
	FormatKronaHTML: ".krona.html",
	FormatDOT:       ".dot",
	FormatSVG:       ".svg",
	FormatDump:      ".dump",
	FormatJSON:      ".tree.json",
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatText:      "text/plain; charset=utf-8",
	FormatKronaXML:  "application/xml",
	FormatKronaJSON: "application/json",
	FormatKronaHTML: "text/html; charset=utf-8",
	FormatDOT:       "text/vnd.graphviz",
	FormatSVG:       "image/svg+xml",
	FormatDump:      "application/octet-stream",
	FormatJSON:      "application/json",
}

// DefaultFormat is written when no format is requested.
const DefaultFormat = FormatKronaXML

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It supports JSON for server requests.
type Options struct {
	// Report layout, 1-based.
	ScoreColumn int `json:"score_column,omitempty"`
	TaxColumn   int `json:"tax_column,omitempty"`

	// Tree building.
	DeltaPercent   int  `json:"delta_percent,omitempty"`
	RankTracking   bool `json:"rank_tracking,omitempty"`
	IdenticalReads bool `json:"identical_reads,omitempty"`
	CleanCellular  bool `json:"clean_cellular,omitempty"`

	// Rendering.
	Formats  []string `json:"formats,omitempty"`
	Queries  bool     `json:"queries,omitempty"`   // dendrogram query lines
	Dataset  string   `json:"dataset,omitempty"`   // Krona dataset name
	KronaURL string   `json:"krona_url,omitempty"` // Krona script location
	Detailed bool     `json:"detailed,omitempty"`  // rank and count in DOT labels
	MinCount int      `json:"min_count,omitempty"` // DOT node threshold

	// Source names the report in the dump header.
	Source string `json:"source,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.ScoreColumn == 0 {
		o.ScoreColumn = report.DefaultScoreColumn
	}
	if o.TaxColumn == 0 {
		o.TaxColumn = report.DefaultTaxColumn
	}
	if err := errors.ValidateColumn("score_column", o.ScoreColumn); err != nil {
		return err
	}
	if err := errors.ValidateColumn("tax_column", o.TaxColumn); err != nil {
		return err
	}
	if err := errors.ValidateDelta(o.DeltaPercent); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.MinCount < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "min_count must be >= 0, got %d", o.MinCount)
	}
	o.validated = true
	return nil
}

// TreeOptions returns the insertion options.
func (o Options) TreeOptions() taxon.Options {
	return taxon.Options{TrackRank: o.RankTracking, IdenticalReads: o.IdenticalReads}
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, ValidFormats); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of a pipeline run.
type Result struct {
	Tree   *taxon.Tree
	Header taxio.Header

	// Skipped lists the queries without any taxonomy, in report order.
	Skipped []string

	// Artifacts holds the renderings keyed by format.
	Artifacts map[string][]byte

	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	Rows       int // report rows read
	Queries    int // distinct queries
	Selected   int // queries inserted into the tree
	DeltaHits  int // extra insertions admitted by the delta tolerance
	Nodes      int // tree size, root included
	BuildTime  time.Duration
	RenderTime time.Duration
}

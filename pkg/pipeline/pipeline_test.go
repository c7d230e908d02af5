package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/taxotree/pkg/cache"
	"github.com/matzehuels/taxotree/pkg/errors"
	taxio "github.com/matzehuels/taxotree/pkg/io"
	"github.com/matzehuels/taxotree/pkg/observability"
)

// row builds a 14-column annotated report line: 12 alignment columns with
// the score last, then organism and lineage.
func row(query, score, lineage string) string {
	cols := []string{query, "subj", "99.0", "100", "0", "0", "1", "100", "1", "100", "1e-30", score, "org", lineage}
	return strings.Join(cols, "\t")
}

const (
	ecoli = "Bacteria (superkingdom); Proteobacteria (phylum); Escherichia coli (species);"
	bsub  = "Bacteria (superkingdom); Firmicutes (phylum); Bacillus subtilis (species);"
	human = "cellular organisms; Eukaryota (superkingdom); Homo sapiens (species);"
)

func sampleReport() string {
	return strings.Join([]string{
		row("q1", "200", ecoli),
		row("q1", "195", bsub),
		row("q1", "150", human),
		row("q2", "80", bsub),
		row("q3_4", "50", human),
		row("q4", "10", ""),
	}, "\n") + "\n"
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.ScoreColumn != 12 || o.TaxColumn != 14 {
		t.Errorf("columns = %d, %d, want 12, 14", o.ScoreColumn, o.TaxColumn)
	}
	if len(o.Formats) != 1 || o.Formats[0] != DefaultFormat {
		t.Errorf("Formats = %v", o.Formats)
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative delta", Options{DeltaPercent: -1}, errors.ErrCodeInvalidDelta},
		{"bad column", Options{TaxColumn: -2}, errors.ErrCodeInvalidColumn},
		{"bad format", Options{Formats: []string{"png"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	tree, skipped, stats, err := Build(context.Background(), strings.NewReader(sampleReport()), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.Rows != 6 || stats.Queries != 4 || stats.Selected != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if len(skipped) != 1 || skipped[0] != "q4" {
		t.Errorf("skipped = %v, want [q4]", skipped)
	}
	if tree.Root.Count != 3 {
		t.Errorf("root count = %d, want 3", tree.Root.Count)
	}
	bac, ok := tree.Root.Child("Bacteria")
	if !ok || bac.Count != 2 {
		t.Fatalf("Bacteria = %v, %v", bac, ok)
	}
	if bac.Rank != "" {
		t.Errorf("rank kept without rank tracking: %q", bac.Rank)
	}
	if _, ok := tree.Root.Child("cellular organisms"); !ok {
		t.Error("cellular organisms dropped without cleaning")
	}
}

func TestBuildDeltaRankIdentical(t *testing.T) {
	opts := Options{DeltaPercent: 5, RankTracking: true, IdenticalReads: true, CleanCellular: true}
	tree, _, stats, err := Build(context.Background(), strings.NewReader(sampleReport()), opts)
	if err != nil {
		t.Fatal(err)
	}
	if stats.DeltaHits != 1 {
		t.Errorf("DeltaHits = %d, want 1 (q1's B. subtilis)", stats.DeltaHits)
	}
	// q1 twice (best + delta), q2 once, q3_4 four times
	if tree.Root.Count != 7 {
		t.Errorf("root count = %d, want 7", tree.Root.Count)
	}
	bac, _ := tree.Root.Child("Bacteria")
	if bac.Rank != "superkingdom" || bac.Count != 3 {
		t.Errorf("Bacteria = %s/%d, want superkingdom/3", bac.Rank, bac.Count)
	}
	euk, ok := tree.Root.Child("Eukaryota")
	if !ok || euk.Count != 4 {
		t.Errorf("Eukaryota = %v, %v, want count 4 after cleaning", euk, ok)
	}
}

func TestBuildEmptySegmentLineage(t *testing.T) {
	report := strings.Join([]string{
		row("q1", "300", ";"),
		row("q1", "100", ecoli),
		row("q2", "90", "."),
	}, "\n") + "\n"

	tree, skipped, _, err := Build(context.Background(), strings.NewReader(report), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 1 || skipped[0] != "q2" {
		t.Errorf("skipped = %v, want [q2]", skipped)
	}
	if tree.Root.Count != 1 {
		t.Errorf("root count = %d, want 1", tree.Root.Count)
	}
	if got := tree.Attributions(); got != tree.Inserts() {
		t.Errorf("attributions = %d, inserts = %d", got, tree.Inserts())
	}
	if len(tree.Root.Queries) != 0 {
		t.Errorf("root holds queries %v", tree.Root.Queries)
	}
}

func TestBuildBadScore(t *testing.T) {
	bad := row("q1", "high", ecoli) + "\n"
	_, _, _, err := Build(context.Background(), strings.NewReader(bad), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Fatalf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, _, err := Build(ctx, strings.NewReader(sampleReport()), Options{}); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRenderAllFormats(t *testing.T) {
	tree, _, _, err := Build(context.Background(), strings.NewReader(sampleReport()), Options{RankTracking: true})
	if err != nil {
		t.Fatal(err)
	}
	h := taxio.NewHeader("sample")
	checks := map[string]string{
		FormatText:      "+ root",
		FormatKronaXML:  "<krona",
		FormatKronaJSON: `"krona"`,
		FormatKronaHTML: "<html",
		FormatDOT:       "digraph",
		FormatJSON:      `"name": "root"`,
	}
	for format, want := range checks {
		t.Run(format, func(t *testing.T) {
			data, err := Render(context.Background(), tree, h, format, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), want) {
				t.Errorf("%s output missing %q", format, want)
			}
		})
	}

	data, err := Render(context.Background(), tree, h, FormatDump, Options{})
	if err != nil {
		t.Fatal(err)
	}
	d, err := taxio.ReadDump(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if d.Header.RunID != h.RunID || d.Tree.Root.Count != tree.Root.Count {
		t.Error("dump does not round-trip")
	}

	if _, err := Render(context.Background(), tree, h, "png", Options{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	c := cache.NewMemoryCache()
	r := NewRunner(c, nil, nil)
	opts := Options{Formats: []string{FormatText, FormatKronaXML}, Source: "sample"}

	res, err := r.Execute(context.Background(), strings.NewReader(sampleReport()), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(res.Artifacts))
	}
	if res.Header.Source != "sample" {
		t.Errorf("Source = %q", res.Header.Source)
	}
	if c.Len() != 2 {
		t.Errorf("cached %d artifacts, want 2", c.Len())
	}

	// same run id and options: served from cache
	again, err := r.Render(context.Background(), res.Tree, res.Header, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again[FormatText], res.Artifacts[FormatText]) {
		t.Error("cached artifact differs")
	}
	if c.Len() != 2 {
		t.Errorf("cache grew to %d", c.Len())
	}

	// different rendering options: new entry
	opts.Queries = true
	if _, err := r.Render(context.Background(), res.Tree, res.Header, opts); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 3 {
		t.Errorf("cache = %d entries, want 3", c.Len())
	}
}

// recordingHooks records pipeline and cache events.
type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	source         string
	queries, nodes int
	renders        int
	hits           int
}

func (h *recordingHooks) OnBuildComplete(_ context.Context, source string, queries, nodes int, _ time.Duration, _ error) {
	h.source, h.queries, h.nodes = source, queries, nodes
}

func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.renders++
}

func (h *recordingHooks) OnCacheHit(context.Context, string) { h.hits++ }

func TestRunnerHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	t.Cleanup(observability.Reset)

	r := NewRunner(cache.NewMemoryCache(), nil, nil)
	opts := Options{Formats: []string{FormatText}, Source: "sample"}
	res, err := r.Execute(context.Background(), strings.NewReader(sampleReport()), opts)
	if err != nil {
		t.Fatal(err)
	}
	if h.source != "sample" || h.queries != res.Stats.Queries || h.nodes != res.Stats.Nodes {
		t.Errorf("build hook got (%q, %d, %d), want (sample, %d, %d)",
			h.source, h.queries, h.nodes, res.Stats.Queries, res.Stats.Nodes)
	}
	if _, err := r.Render(context.Background(), res.Tree, res.Header, opts); err != nil {
		t.Fatal(err)
	}
	if h.renders != 2 || h.hits != 1 {
		t.Errorf("renders = %d, hits = %d, want 2 and 1", h.renders, h.hits)
	}
}

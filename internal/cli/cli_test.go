package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/pipeline"
)

// runCLI executes the command line args in a fresh CLI and returns the log
// output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs bytes.Buffer
	root := New(&logs, LogDebug).RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return logs.String(), err
}

// isolate runs the test in an empty directory with its own home and cache.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func writeTestFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// reportRow builds a 14-column annotated report line.
func reportRow(query, score, lineage string) string {
	cols := []string{query, "subj", "99.0", "100", "0", "0", "1", "100", "1", "100", "1e-30", score, "org", lineage}
	return strings.Join(cols, "\t")
}

const (
	ecoli = "Bacteria (superkingdom); Proteobacteria (phylum); Escherichia coli (species);"
	bsub  = "Bacteria (superkingdom); Firmicutes (phylum); Bacillus subtilis (species);"
	human = "cellular organisms; Eukaryota (superkingdom); Homo sapiens (species);"
)

var sampleReport = strings.Join([]string{
	reportRow("q1", "200", ecoli),
	reportRow("q1", "150", human),
	reportRow("q2", "80", bsub),
	reportRow("q3", "50", human),
	reportRow("q4", "10", ""),
}, "\n") + "\n"

func TestAggregateRenderExtract(t *testing.T) {
	dir := isolate(t)
	report := writeTestFile(t, filepath.Join(dir, "hits.tsv"), sampleReport)
	base := filepath.Join(dir, "out")

	if _, err := runCLI(t, "aggregate", report, "-f", "dump,text,krona-xml", "-o", base, "--rank", "--clean"); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	text := readTestFile(t, base+pipeline.Extensions[pipeline.FormatText])
	if !strings.Contains(text, "Bacteria (superkingdom)") {
		t.Errorf("dendrogram misses Bacteria:\n%s", text)
	}
	if strings.Contains(text, "cellular organisms") {
		t.Errorf("--clean kept the cellular organisms prefix:\n%s", text)
	}
	xml := readTestFile(t, base+pipeline.Extensions[pipeline.FormatKronaXML])
	if !strings.Contains(xml, "<krona") {
		t.Errorf("krona output does not look like krona XML:\n%s", xml)
	}

	dump := base + pipeline.Extensions[pipeline.FormatDump]
	rendered := filepath.Join(dir, "again.txt")
	if _, err := runCLI(t, "render", dump, "-f", "text", "-o", rendered); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := readTestFile(t, rendered); got != text {
		t.Errorf("render from dump differs from aggregate output:\ngot:\n%s\nwant:\n%s", got, text)
	}

	members := filepath.Join(dir, "bacteria.txt")
	if _, err := runCLI(t, "extract", dump, "-n", "Bacteria", "-o", members); err != nil {
		t.Fatalf("extract: %v", err)
	}
	got := readTestFile(t, members)
	for _, q := range []string{"q1\t", "q2\t"} {
		if !strings.Contains(got, q) {
			t.Errorf("extract output misses %q:\n%s", q, got)
		}
	}
	if strings.Contains(got, "q3\t") {
		t.Errorf("extract output lists q3 outside Bacteria:\n%s", got)
	}

	prefix := filepath.Join(dir, "split")
	if _, err := runCLI(t, "extract", dump, "-n", "Bacteria", "--split", prefix); err != nil {
		t.Fatalf("extract --split: %v", err)
	}
	if seq := readTestFile(t, prefix+".seq"); seq != "q1\nq2\n" {
		t.Errorf("seq file = %q, want %q", seq, "q1\nq2\n")
	}

	_, err := runCLI(t, "extract", dump, "-n", "Archaea")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("extract unknown taxon: got %v, want NOT_FOUND", err)
	}
}

func TestAggregateDelta(t *testing.T) {
	dir := isolate(t)
	report := writeTestFile(t, filepath.Join(dir, "hits.tsv"), strings.Join([]string{
		reportRow("q1", "200", ecoli),
		reportRow("q1", "195", bsub),
	}, "\n")+"\n")

	tests := []struct {
		name  string
		args  []string
		wantB bool // Bacillus placed
	}{
		{"best only", nil, false},
		{"within delta", []string{"--delta", "5"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".txt")
			args := append([]string{"aggregate", report, "-f", "text", "-o", out}, tt.args...)
			if _, err := runCLI(t, args...); err != nil {
				t.Fatal(err)
			}
			if got := strings.Contains(readTestFile(t, out), "Bacillus subtilis"); got != tt.wantB {
				t.Errorf("Bacillus placed = %v, want %v", got, tt.wantB)
			}
		})
	}
}

func TestAggregateConfigFile(t *testing.T) {
	dir := isolate(t)
	report := writeTestFile(t, filepath.Join(dir, "hits.tsv"), sampleReport)
	writeTestFile(t, filepath.Join(dir, "taxotree.toml"), "[tree]\nrank_tracking = true\n")

	out := filepath.Join(dir, "tree.txt")
	if _, err := runCLI(t, "aggregate", report, "-f", "text", "-o", out); err != nil {
		t.Fatal(err)
	}
	if got := readTestFile(t, out); !strings.Contains(got, "(superkingdom)") {
		t.Errorf("rank_tracking from taxotree.toml not applied:\n%s", got)
	}
}

func TestAggregateInvalidFormat(t *testing.T) {
	dir := isolate(t)
	report := writeTestFile(t, filepath.Join(dir, "hits.tsv"), sampleReport)
	_, err := runCLI(t, "aggregate", report, "-f", "png")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("got %v, want INVALID_FORMAT", err)
	}
}

const hbaHuman = "ID   HBA_HUMAN   Reviewed;\nAC   P69905;\nDE   Hemoglobin subunit alpha.\nOS   Homo sapiens (Human).\nOC   Eukaryota; Metazoa; Homo.\n//\n"

func TestDBBuildAndAnnotate(t *testing.T) {
	dir := isolate(t)
	tsv := writeTestFile(t, filepath.Join(dir, "organisms.tsv"),
		"# organism\tlineage\nHomo sapiens\tEukaryota (superkingdom); Homo sapiens (species);\n")
	store := filepath.Join(dir, "organisms.kv")
	if _, err := runCLI(t, "db", "build", tsv, store); err != nil {
		t.Fatalf("db build: %v", err)
	}
	if _, err := runCLI(t, "db", "get", "--store", store, "Homo sapiens"); err != nil {
		t.Fatalf("db get: %v", err)
	}
	_, err := runCLI(t, "db", "get", "--store", store, "Mus musculus")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("db get missing key: got %v, want NOT_FOUND", err)
	}

	records := writeTestFile(t, filepath.Join(dir, "records.dat"), hbaHuman)
	report := writeTestFile(t, filepath.Join(dir, "blast.tsv"),
		"q1\tsp|P69905|HBA_HUMAN\t98.0\t1e-50\nq2\tsp|Q99999\t60.0\t1e-3\n")
	out := filepath.Join(dir, "annotated.tsv")
	notax := filepath.Join(dir, "notax.tsv")

	if _, err := runCLI(t, "annotate", report, "-o", out, "--notax", notax, "--split",
		"--records", records, "--organism-store", store); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	want := "q1\tsp|P69905|HBA_HUMAN\t98.0\t1e-50\tHomo sapiens\tEukaryota (superkingdom); Homo sapiens (species);\n"
	if got := readTestFile(t, out); got != want {
		t.Errorf("annotated =\n%q\nwant\n%q", got, want)
	}
	if got := readTestFile(t, notax); got != "q2\tsp|Q99999\t60.0\t1e-3\n" {
		t.Errorf("notax = %q", got)
	}
}

func TestCachePath(t *testing.T) {
	dir := isolate(t)
	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"cache", "path"})
	root.SetOut(&out)
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "cache", appName)
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCacheClear(t *testing.T) {
	dir := isolate(t)
	cached := filepath.Join(dir, "cache", appName, "ab", "entry")
	if err := os.MkdirAll(filepath.Dir(cached), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, cached, "x")

	if _, err := runCLI(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cached); !os.IsNotExist(err) {
		t.Errorf("cache entry still present after clear: %v", err)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "hits.tsv", "hits"},
		{"", "data/hits.tsv.gz", "data/hits"},
		{"", "-", appName},
		{"out.krona.xml", "hits.tsv", "out"},
		{"out", "hits.tsv", "out"},
		{"", "dir.v2/hits", "dir.v2/hits"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{pipeline.DefaultFormat}},
		{"text", []string{"text"}},
		{"text, svg,", []string{"text", "svg"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

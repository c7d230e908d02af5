package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/taxotree/pkg/errors"
	taxio "github.com/matzehuels/taxotree/pkg/io"
	"github.com/matzehuels/taxotree/pkg/render/krona"
	"github.com/matzehuels/taxotree/pkg/taxon"
)

func sampleTree() *taxon.Tree {
	t := taxon.NewTree(taxon.Options{TrackRank: true})
	t.Insert("q1", 0, "Bacteria (superkingdom); Proteobacteria (phylum); Escherichia (genus);")
	t.Insert("q2", 90, "Bacteria (superkingdom); Proteobacteria (phylum);")
	t.Insert("q3", 180, "Bacteria (superkingdom); Firmicutes (phylum);")
	t.Insert("q4", 270, "Eukaryota (superkingdom);")
	return t
}

func ids(refs []taxon.QueryRef) []string {
	var out []string
	for _, r := range refs {
		out = append(out, r.ID)
	}
	return out
}

func TestMembers(t *testing.T) {
	tree := sampleTree()
	tests := []struct {
		name string
		want []string
	}{
		{"Proteobacteria", []string{"q2", "q1"}},
		{"Bacteria", []string{"q2", "q1", "q3"}},
		{"Eukaryota", []string{"q4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Members(tree.Root, tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", ids(got), tt.want)
			}
			seen := map[string]bool{}
			for _, id := range ids(got) {
				seen[id] = true
			}
			for _, id := range tt.want {
				if !seen[id] {
					t.Errorf("missing %s in %v", id, ids(got))
				}
			}
		})
	}
}

func TestMembersNotFound(t *testing.T) {
	_, err := Members(sampleTree().Root, "Archaea")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestMembersDuplicateNames(t *testing.T) {
	tree := taxon.NewTree(taxon.Options{})
	tree.Insert("q1", 0, "A; X; X;")
	got, err := Members(tree.Root, "X")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %v, want q1 once", ids(got))
	}
}

func TestWrite(t *testing.T) {
	refs := []taxon.QueryRef{{ID: "q1", Offset: 0}, {ID: "q2", Offset: 90}}
	var buf bytes.Buffer
	if err := Write(&buf, refs); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "q1\t0\nq2\t90\n" {
		t.Errorf("got %q", buf.String())
	}

	var seq, off bytes.Buffer
	if err := WriteSplit(&seq, &off, refs); err != nil {
		t.Fatal(err)
	}
	if seq.String() != "q1\nq2\n" || off.String() != "0\n90\n" {
		t.Errorf("seq = %q, offsets = %q", seq.String(), off.String())
	}
}

func TestLoadFormats(t *testing.T) {
	tree := sampleTree()
	dir := t.TempDir()

	jsonDoc, err := krona.RenderJSON(tree.Root, krona.Options{})
	if err != nil {
		t.Fatal(err)
	}
	var plain bytes.Buffer
	if err := taxio.WriteJSON(tree.Root, &plain); err != nil {
		t.Fatal(err)
	}
	var dump bytes.Buffer
	if err := taxio.WriteDump(&dump, tree, taxio.NewHeader("x")); err != nil {
		t.Fatal(err)
	}

	files := map[string][]byte{
		"krona-xml":  krona.RenderXML(tree.Root, krona.Options{}),
		"krona-json": jsonDoc,
		"json":       plain.Bytes(),
		"dump":       dump.Bytes(),
	}
	for format, data := range files {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, format)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}
			src, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if src.Format != format {
				t.Errorf("Format = %q, want %q", src.Format, format)
			}
			got, err := Members(src.Tree.Root, "Proteobacteria")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 {
				t.Errorf("members = %v, want 2", ids(got))
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.xml")); err == nil {
		t.Fatal("expected error")
	}
}

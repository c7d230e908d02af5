package krona

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/taxotree/pkg/taxon"
)

func sampleTree() *taxon.Tree {
	t := taxon.NewTree(taxon.Options{TrackRank: true})
	t.Insert("q1", 0, "Bacteria (superkingdom); Proteobacteria (phylum);")
	t.Insert("q2", 52, "Bacteria (superkingdom); Firmicutes (phylum);")
	t.Insert("q<3>", 97, "Bacteria (superkingdom);")
	return t
}

func TestRenderXML(t *testing.T) {
	got := string(RenderXML(sampleTree().Root, Options{Dataset: "sample"}))
	want := `<krona collapse="false" key="true">
  <datasets>
    <dataset>sample</dataset>
  </datasets>
  <attributes magnitude="reads">
    <attribute display="Nb of reads" listAll="read_members">reads</attribute>
    <attribute display="Rank" mono="true">rank</attribute>
    <list>read_members</list>
  </attributes>
  <node name="root">
    <reads>
      <val>3</val>
    </reads>
    <node name="Bacteria">
      <reads>
        <val>3</val>
      </reads>
      <rank>
        <val>superkingdom</val>
      </rank>
      <node name="Proteobacteria">
        <reads>
          <val>1</val>
        </reads>
        <rank>
          <val>phylum</val>
        </rank>
        <read_members>
          <vals>
            <val>q1	0</val>
          </vals>
        </read_members>
      </node>
      <node name="Firmicutes">
        <reads>
          <val>1</val>
        </reads>
        <rank>
          <val>phylum</val>
        </rank>
        <read_members>
          <vals>
            <val>q2	52</val>
          </vals>
        </read_members>
      </node>
      <read_members>
        <vals>
          <val>q&lt;3&gt;	97</val>
        </vals>
      </read_members>
    </node>
  </node>
</krona>
`
	if got != want {
		t.Errorf("RenderXML() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderJSONShape(t *testing.T) {
	data, err := RenderJSON(sampleTree().Root, Options{})
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	krona := doc["krona"].(map[string]any)
	if krona["_collapse"] != "false" || krona["_key"] != "true" {
		t.Errorf("krona attributes = %v %v", krona["_collapse"], krona["_key"])
	}
	attrs := krona["attributes"].(map[string]any)
	if attrs["_magnitude"] != "reads" {
		t.Errorf("_magnitude = %v", attrs["_magnitude"])
	}
	root := krona["node"].(map[string]any)
	if root["_name"] != "root" {
		t.Errorf("root _name = %v", root["_name"])
	}
	if _, ok := root["rank"]; ok {
		t.Error("root must not carry a rank")
	}
	bacteria := root["node"].([]any)[0].(map[string]any)
	members := bacteria["read_members"].(map[string]any)["vals"].(map[string]any)["val"].([]any)
	if len(members) != 1 || members[0] != "q<3>\t97" {
		t.Errorf("Bacteria members = %v", members)
	}
}

func TestRoundTrip(t *testing.T) {
	tree := sampleTree()
	opts := Options{Dataset: "run42"}

	jsonData, err := RenderJSON(tree.Root, opts)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	decoders := []struct {
		name string
		read func() (*Document, error)
	}{
		{"xml", func() (*Document, error) { return ReadXML(bytes.NewReader(RenderXML(tree.Root, opts))) }},
		{"json", func() (*Document, error) { return ReadJSON(bytes.NewReader(jsonData)) }},
		{"html", func() (*Document, error) { return ReadXML(bytes.NewReader(RenderHTML(tree.Root, opts))) }},
	}
	for _, d := range decoders {
		t.Run(d.name, func(t *testing.T) {
			doc, err := d.read()
			if err != nil {
				t.Fatalf("read error: %v", err)
			}
			if doc.Dataset != "run42" {
				t.Errorf("Dataset = %q, want run42", doc.Dataset)
			}
			if msg := diff(tree.Root, doc.Tree.Root); msg != "" {
				t.Error(msg)
			}
			if !doc.Tree.Options().TrackRank {
				t.Error("ranked document should decode with rank tracking")
			}
			if doc.Tree.Root.Children[0].Parent() != doc.Tree.Root {
				t.Error("decoded tree must have parent links")
			}
		})
	}
}

func TestIdempotent(t *testing.T) {
	root := sampleTree().Root
	if !bytes.Equal(RenderXML(root, Options{}), RenderXML(root, Options{})) {
		t.Error("RenderXML is not deterministic")
	}
	a, _ := RenderJSON(root, Options{})
	b, _ := RenderJSON(root, Options{})
	if !bytes.Equal(a, b) {
		t.Error("RenderJSON is not deterministic")
	}
}

func TestRenderHTML(t *testing.T) {
	page := string(RenderHTML(sampleTree().Root, Options{KronaURL: "http://localhost/krona"}))
	for _, want := range []string{
		`<script src="http://localhost/krona/src/krona-2.8.1.js"></script>`,
		`<div style="display:none">`,
		`    <krona collapse="false" key="true">`,
		"</html>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("RenderHTML() missing %q", want)
		}
	}
}

func TestParseMember(t *testing.T) {
	tests := []struct {
		in      string
		want    taxon.QueryRef
		wantErr bool
	}{
		{"q1\t12", taxon.QueryRef{ID: "q1", Offset: 12}, false},
		{"q1                                      \t12", taxon.QueryRef{ID: "q1", Offset: 12}, false},
		{"q1", taxon.QueryRef{}, true},
		{"q1\tx", taxon.QueryRef{}, true},
	}
	for _, tt := range tests {
		got, err := ParseMember(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMember(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMember(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReadXMLErrors(t *testing.T) {
	if _, err := ReadXML(strings.NewReader("<html></html>")); err == nil {
		t.Error("ReadXML() without krona element should fail")
	}
	bad := `<krona><node name="root"><reads><val>x</val></reads></node></krona>`
	if _, err := ReadXML(strings.NewReader(bad)); err == nil {
		t.Error("ReadXML() with non-numeric reads should fail")
	}
}

func diff(want, got *taxon.Node) string {
	if want.Name != got.Name || want.Rank != got.Rank || want.Count != got.Count {
		return "node " + want.Name + ": label or count mismatch"
	}
	if len(want.Queries) != len(got.Queries) {
		return "node " + want.Name + ": query count mismatch"
	}
	for i := range want.Queries {
		if want.Queries[i] != got.Queries[i] {
			return "node " + want.Name + ": query mismatch"
		}
	}
	if len(want.Children) != len(got.Children) {
		return "node " + want.Name + ": children mismatch"
	}
	for i := range want.Children {
		if msg := diff(want.Children[i], got.Children[i]); msg != "" {
			return msg
		}
	}
	return ""
}

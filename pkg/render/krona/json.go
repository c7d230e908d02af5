package krona

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/matzehuels/taxotree/pkg/taxon"
)

// The JSON document mirrors the XML one element for element. Attributes
// are "_"-prefixed keys and element text is "__text".

type jsonDocument struct {
	Krona jsonKrona `json:"krona"`
}

type jsonKrona struct {
	Collapse   string         `json:"_collapse"`
	Key        string         `json:"_key"`
	Datasets   jsonDatasets   `json:"datasets"`
	Attributes jsonAttributes `json:"attributes"`
	Node       jsonNode       `json:"node"`
}

type jsonDatasets struct {
	Dataset []string `json:"dataset"`
}

type jsonAttributes struct {
	Magnitude string          `json:"_magnitude"`
	Attribute []jsonAttribute `json:"attribute"`
	List      []string        `json:"list"`
}

type jsonAttribute struct {
	Display string `json:"_display"`
	ListAll string `json:"_listAll,omitempty"`
	Mono    string `json:"_mono,omitempty"`
	Text    string `json:"__text"`
}

type jsonNode struct {
	Name        string       `json:"_name"`
	Reads       jsonVal      `json:"reads"`
	Rank        *jsonVal     `json:"rank,omitempty"`
	Node        []jsonNode   `json:"node,omitempty"`
	ReadMembers *jsonMembers `json:"read_members,omitempty"`
}

type jsonVal struct {
	Val string `json:"val"`
}

type jsonMembers struct {
	Vals jsonVals `json:"vals"`
}

type jsonVals struct {
	Val []string `json:"val"`
}

// RenderJSON returns the Krona JSON document of the tree rooted at root.
func RenderJSON(root *taxon.Node, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, root, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes the Krona JSON document to w.
func WriteJSON(w io.Writer, root *taxon.Node, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(toDocument(root, opts))
}

func toDocument(root *taxon.Node, opts Options) jsonDocument {
	return jsonDocument{Krona: jsonKrona{
		Collapse: strconv.FormatBool(opts.Collapse),
		Key:      "true",
		Datasets: jsonDatasets{Dataset: []string{opts.dataset()}},
		Attributes: jsonAttributes{
			Magnitude: AttrReads,
			Attribute: []jsonAttribute{
				{Display: "Nb of reads", ListAll: ListMembers, Text: AttrReads},
				{Display: "Rank", Mono: "true", Text: AttrRank},
			},
			List: []string{ListMembers},
		},
		Node: toJSONNode(root),
	}}
}

func toJSONNode(n *taxon.Node) jsonNode {
	jn := jsonNode{
		Name:  n.Name,
		Reads: jsonVal{Val: strconv.Itoa(n.Count)},
	}
	if n.Rank != "" {
		jn.Rank = &jsonVal{Val: n.Rank}
	}
	for _, c := range n.Children {
		jn.Node = append(jn.Node, toJSONNode(c))
	}
	if len(n.Queries) > 0 {
		vals := make([]string, len(n.Queries))
		for i, q := range n.Queries {
			vals[i] = Member(q)
		}
		jn.ReadMembers = &jsonMembers{Vals: jsonVals{Val: vals}}
	}
	return jn
}

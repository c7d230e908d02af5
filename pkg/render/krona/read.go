package krona

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/taxon"
)

// Document is a decoded Krona document.
type Document struct {
	Dataset string
	Tree    *taxon.Tree
}

type xmlDocument struct {
	XMLName  xml.Name `xml:"krona"`
	Datasets []string `xml:"datasets>dataset"`
	Node     xmlNode  `xml:"node"`
}

type xmlNode struct {
	Name    string    `xml:"name,attr"`
	Reads   []string  `xml:"reads>val"`
	Rank    []string  `xml:"rank>val"`
	Nodes   []xmlNode `xml:"node"`
	Members []string  `xml:"read_members>vals>val"`
}

// ReadXML decodes a Krona XML document. An HTML page produced by
// [RenderHTML] is accepted as well: the krona element is located inside it.
func ReadXML(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read krona document")
	}
	start := bytes.Index(data, []byte("<krona"))
	end := bytes.LastIndex(data, []byte("</krona>"))
	if start < 0 || end < start {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no krona element found")
	}
	data = data[start : end+len("</krona>")]

	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode krona XML")
	}
	root, err := fromXMLNode(doc.Node)
	if err != nil {
		return nil, err
	}
	return newDocument(firstOf(doc.Datasets), root), nil
}

func fromXMLNode(x xmlNode) (*taxon.Node, error) {
	n := &taxon.Node{Name: x.Name, Rank: firstOf(x.Rank)}
	count, err := parseCount(x.Name, firstOf(x.Reads))
	if err != nil {
		return nil, err
	}
	n.Count = count
	if n.Queries, err = parseMembers(x.Name, x.Members); err != nil {
		return nil, err
	}
	for _, cx := range x.Nodes {
		c, err := fromXMLNode(cx)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

// ReadJSON decodes a Krona JSON document.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc jsonDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode krona JSON")
	}
	root, err := fromJSONNode(doc.Krona.Node)
	if err != nil {
		return nil, err
	}
	return newDocument(firstOf(doc.Krona.Datasets.Dataset), root), nil
}

func fromJSONNode(j jsonNode) (*taxon.Node, error) {
	n := &taxon.Node{Name: j.Name}
	if j.Rank != nil {
		n.Rank = j.Rank.Val
	}
	count, err := parseCount(j.Name, j.Reads.Val)
	if err != nil {
		return nil, err
	}
	n.Count = count
	if j.ReadMembers != nil {
		if n.Queries, err = parseMembers(j.Name, j.ReadMembers.Vals.Val); err != nil {
			return nil, err
		}
	}
	for _, cj := range j.Node {
		c, err := fromJSONNode(cj)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func newDocument(dataset string, root *taxon.Node) *Document {
	trackRank := false
	root.Walk(func(n *taxon.Node, _ int) bool {
		if n.Rank != "" {
			trackRank = true
		}
		return !trackRank
	})
	return &Document{
		Dataset: dataset,
		Tree:    taxon.FromRoot(root, taxon.Options{TrackRank: trackRank}),
	}
}

func parseCount(name, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	c, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q: reads", name)
	}
	return c, nil
}

// ParseMember splits a "query<TAB>offset" list value. Values written with
// the query padded by spaces are accepted.
func ParseMember(s string) (taxon.QueryRef, error) {
	i := strings.LastIndexByte(s, '\t')
	if i < 0 {
		return taxon.QueryRef{}, errors.New(errors.ErrCodeInvalidFormat, "member %q: missing offset", s)
	}
	off, err := strconv.ParseInt(strings.TrimSpace(s[i+1:]), 10, 64)
	if err != nil {
		return taxon.QueryRef{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "member %q: offset", s)
	}
	return taxon.QueryRef{ID: strings.TrimSpace(s[:i]), Offset: off}, nil
}

func parseMembers(name string, vals []string) ([]taxon.QueryRef, error) {
	var refs []taxon.QueryRef
	for _, v := range vals {
		q, err := ParseMember(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q", name)
		}
		refs = append(refs, q)
	}
	return refs, nil
}

func firstOf(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/taxotree/pkg/taxon"
)

type jsonNode struct {
	Name     string      `json:"name"`
	Rank     string      `json:"rank,omitempty"`
	Count    int         `json:"count"`
	Queries  []jsonQuery `json:"queries,omitempty"`
	Children []jsonNode  `json:"children,omitempty"`
}

type jsonQuery struct {
	ID     string `json:"id"`
	Offset int64  `json:"offset"`
}

func toJSON(n *taxon.Node) jsonNode {
	jn := jsonNode{Name: n.Name, Rank: n.Rank, Count: n.Count}
	for _, q := range n.Queries {
		jn.Queries = append(jn.Queries, jsonQuery{ID: q.ID, Offset: q.Offset})
	}
	for _, c := range n.Children {
		jn.Children = append(jn.Children, toJSON(c))
	}
	return jn
}

func fromJSON(jn jsonNode) *taxon.Node {
	n := &taxon.Node{Name: jn.Name, Rank: jn.Rank, Count: jn.Count}
	for _, q := range jn.Queries {
		n.Queries = append(n.Queries, taxon.QueryRef{ID: q.ID, Offset: q.Offset})
	}
	for _, c := range jn.Children {
		n.Children = append(n.Children, fromJSON(c))
	}
	return n
}

// WriteJSON encodes the tree rooted at root as JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(root *taxon.Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(root)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a JSON tree from r.
//
// ReadJSON returns an error if the JSON is malformed or if a node has no
// name or two siblings share a name. ReadJSON does not close r.
func ReadJSON(r io.Reader, opts taxon.Options) (*taxon.Tree, error) {
	var data jsonNode
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	root := fromJSON(data)
	if err := validate(root); err != nil {
		return nil, err
	}
	return taxon.FromRoot(root, opts), nil
}

func validate(n *taxon.Node) error {
	seen := make(map[string]bool, len(n.Children))
	for _, c := range n.Children {
		if c.Name == "" {
			return fmt.Errorf("node %q: %w", n.Name, taxon.ErrEmptyName)
		}
		if seen[c.Name] {
			return fmt.Errorf("node %q: %w: %q", n.Name, taxon.ErrDuplicateChild, c.Name)
		}
		seen[c.Name] = true
		if err := validate(c); err != nil {
			return err
		}
	}
	return nil
}

// ExportJSON writes the tree to a JSON file at path.
func ExportJSON(root *taxon.Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(root, f)
}

// ImportJSON reads a JSON tree file at path.
func ImportJSON(path string, opts taxon.Options) (*taxon.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, opts)
}

// Package extract pulls the query members out of a named part of a tree.
//
// Trees come from any of the formats taxotree writes and can read back:
// dumps, Krona XML (or the HTML page embedding it), Krona JSON and plain
// JSON trees. [Load] tells them apart by content.
package extract

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/shenwei356/xopen"

	"github.com/matzehuels/taxotree/pkg/errors"
	taxio "github.com/matzehuels/taxotree/pkg/io"
	"github.com/matzehuels/taxotree/pkg/render/krona"
	"github.com/matzehuels/taxotree/pkg/taxon"
)

// Source is a loaded tree.
type Source struct {
	Tree   *taxon.Tree
	Format string // "dump", "krona-xml", "krona-json" or "json"
}

// Load reads a tree from path; "-" is standard input.
func Load(path string) (*Source, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return Decode(data)
}

// Decode reads a tree in any supported format.
func Decode(data []byte) (*Source, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("<")):
		doc, err := krona.ReadXML(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read krona xml")
		}
		return &Source{Tree: doc.Tree, Format: "krona-xml"}, nil
	case bytes.HasPrefix(trimmed, []byte("{")):
		if bytes.Contains(trimmed[:min(len(trimmed), 64)], []byte(`"krona"`)) {
			doc, err := krona.ReadJSON(bytes.NewReader(data))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read krona json")
			}
			return &Source{Tree: doc.Tree, Format: "krona-json"}, nil
		}
		t, err := taxio.ReadJSON(bytes.NewReader(data), taxon.Options{})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read json tree")
		}
		return &Source{Tree: t, Format: "json"}, nil
	default:
		d, err := taxio.ReadDump(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return &Source{Tree: d.Tree, Format: "dump"}, nil
	}
}

// Members returns the queries attributed below every node named name, in
// pre-order, each query once. It fails with [errors.ErrCodeNotFound] when
// no node has that name.
func Members(root *taxon.Node, name string) ([]taxon.QueryRef, error) {
	nodes := root.Find(name)
	if len(nodes) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no result for: %s", name)
	}
	seen := make(map[taxon.QueryRef]bool)
	var out []taxon.QueryRef
	for _, n := range nodes {
		for _, q := range n.Members() {
			if seen[q] {
				continue
			}
			seen[q] = true
			out = append(out, q)
		}
	}
	return out, nil
}

// Write writes one "query\toffset" line per member.
func Write(w io.Writer, members []taxon.QueryRef) error {
	bw := bufio.NewWriter(w)
	for _, q := range members {
		bw.WriteString(q.String())
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteSplit writes the query names to seq and the offsets to offsets,
// one per line, in the same order.
func WriteSplit(seq, offsets io.Writer, members []taxon.QueryRef) error {
	sw := bufio.NewWriter(seq)
	ow := bufio.NewWriter(offsets)
	for _, q := range members {
		sw.WriteString(q.ID)
		sw.WriteByte('\n')
		ow.WriteString(strconv.FormatInt(q.Offset, 10))
		ow.WriteByte('\n')
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return ow.Flush()
}

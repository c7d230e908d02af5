package io

import (
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shenwei356/xopen"

	"github.com/matzehuels/taxotree/pkg/buildinfo"
	"github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/taxon"
)

// DumpVersion is bumped whenever the dump layout changes.
const DumpVersion = 1

// Header describes the run a dump comes from.
type Header struct {
	Version   int
	RunID     uuid.UUID
	CreatedAt time.Time
	Tool      string // taxotree version that wrote the dump
	Source    string // report the tree was built from
	Options   taxon.Options
	Inserts   int
}

// NewHeader returns a header for a new run over source.
func NewHeader(source string) Header {
	return Header{
		Version:   DumpVersion,
		RunID:     uuid.New(),
		CreatedAt: time.Now().UTC(),
		Tool:      buildinfo.Version,
		Source:    source,
	}
}

// Dump is a decoded dump.
type Dump struct {
	Header Header
	Tree   *taxon.Tree
}

// dumpNode is a node in pre-order; Parent is the index of the parent
// node, -1 for the root.
type dumpNode struct {
	Parent  int
	Name    string
	Rank    string
	Count   int
	Queries []taxon.QueryRef
}

// WriteDump encodes the tree and its header to w.
func WriteDump(w io.Writer, t *taxon.Tree, h Header) error {
	h.Version = DumpVersion
	h.Options = t.Options()
	h.Inserts = t.Inserts()

	var nodes []dumpNode
	index := make(map[*taxon.Node]int)
	t.Root.Walk(func(n *taxon.Node, _ int) bool {
		parent := -1
		if p := n.Parent(); p != nil {
			parent = index[p]
		}
		index[n] = len(nodes)
		nodes = append(nodes, dumpNode{
			Parent:  parent,
			Name:    n.Name,
			Rank:    n.Rank,
			Count:   n.Count,
			Queries: n.Queries,
		})
		return true
	})

	enc := gob.NewEncoder(w)
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if err := enc.Encode(nodes); err != nil {
		return fmt.Errorf("encode nodes: %w", err)
	}
	return nil
}

// ReadDump decodes a dump from r.
func ReadDump(r io.Reader) (*Dump, error) {
	dec := gob.NewDecoder(r)
	var h Header
	if err := dec.Decode(&h); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode dump header")
	}
	if h.Version != DumpVersion {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported dump version %d (want %d)", h.Version, DumpVersion)
	}
	var nodes []dumpNode
	if err := dec.Decode(&nodes); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode dump nodes")
	}
	if len(nodes) == 0 || nodes[0].Parent != -1 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "dump has no root")
	}

	built := make([]*taxon.Node, len(nodes))
	for i, dn := range nodes {
		n := &taxon.Node{Name: dn.Name, Rank: dn.Rank, Count: dn.Count, Queries: dn.Queries}
		built[i] = n
		if i == 0 {
			continue
		}
		if dn.Parent < 0 || dn.Parent >= i {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node %d: bad parent index %d", i, dn.Parent)
		}
		p := built[dn.Parent]
		p.Children = append(p.Children, n)
	}

	t := taxon.FromRoot(built[0], h.Options)
	return &Dump{Header: h, Tree: t}, nil
}

// ExportDump writes a dump to path.
func ExportDump(t *taxon.Tree, h Header, path string) (err error) {
	w, err := xopen.Wopen(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutputFailed, err, "create %s", path)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeOutputFailed, cerr, "close %s", path)
		}
	}()
	return WriteDump(w, t, h)
}

// ImportDump reads a dump from path.
func ImportDump(path string) (*Dump, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer r.Close()
	return ReadDump(r)
}

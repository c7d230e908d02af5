package taxon

import (
	"strconv"
	"strings"
)

// Options controls how lineages are inserted.
type Options struct {
	// TrackRank keeps the rank annotations on the nodes.
	TrackRank bool

	// IdenticalReads reads the suffix after the last '_' of a query
	// identifier as the number of identical reads it stands for.
	IdenticalReads bool
}

// Tree is the abundance tree built from a run.
type Tree struct {
	Root *Node
	opts Options

	inserts int
}

// NewTree returns a tree that holds only the root.
func NewTree(opts Options) *Tree {
	return &Tree{Root: NewRoot(), opts: opts}
}

// FromRoot wraps an existing root, e.g. one decoded from a dump.
func FromRoot(root *Node, opts Options) *Tree {
	root.Adopt()
	return &Tree{Root: root, opts: opts}
}

// Options returns the insertion options of the tree.
func (t *Tree) Options() Options { return t.opts }

// Inserts returns the number of Insert calls the tree has received.
func (t *Tree) Inserts() int { return t.inserts }

// Weight returns how much a query contributes to the counts. In identical
// reads mode "read_12" weighs 12; a missing, non-numeric or non-positive
// suffix weighs 1.
func Weight(queryID string, identicalReads bool) int {
	if !identicalReads {
		return 1
	}
	i := strings.LastIndexByte(queryID, '_')
	if i < 0 {
		return 1
	}
	w, err := strconv.Atoi(queryID[i+1:])
	if err != nil || w <= 0 {
		return 1
	}
	return w
}

// Insert adds one query with its lineage and returns t.
//
// The root always gains the query's weight. Every non-empty segment of the
// lineage is then matched by name against the children of the current node,
// created if missing, and gains the same weight. The query is attributed
// once, to the node reached by the last segment. A lineage without any
// named segment leaves the tree untouched apart from the root count and is
// attributed nowhere; callers filter such lineages with [HasNames].
//
// rawLineage must already have gone through [Clean].
func (t *Tree) Insert(queryID string, offset int64, rawLineage string) *Tree {
	t.inserts++
	w := Weight(queryID, t.opts.IdenticalReads)
	t.Root.Count += w

	segs := Normalize(rawLineage)
	if len(segs) == 0 {
		return t
	}

	cur := t.Root
	for _, s := range segs {
		if s.Name == "" {
			continue
		}
		child, ok := cur.Child(s.Name)
		if !ok {
			rank := ""
			if t.opts.TrackRank {
				rank = s.Rank
			}
			// cannot fail: the name is non-empty and absent
			child, _ = cur.AddChild(s.Name, rank)
		} else if t.opts.TrackRank && child.Rank == "" && s.Rank != "" {
			child.Rank = s.Rank
		}
		child.Count += w
		cur = child
	}
	if cur != t.Root {
		cur.AddQuery(queryID, offset)
	}
	return t
}

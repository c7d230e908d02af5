// Package dendrogram renders a taxon tree as indented text.
//
// # Format
//
// The tree is written depth first. A node with several children ends its
// line with "#count" and each child starts a new line "+ name (rank);".
// Chains of single children are folded onto the same line, so
//
//	+ root;Bacteria (superkingdom);#3
//	.+ Proteobacteria (phylum);#2
//	.|+ Gammaproteobacteria (class);#1
//	.|+ Alphaproteobacteria (class);#1
//	.+ Firmicutes (phylum);#1
//
// reads: root has a single child Bacteria, which splits into two phyla.
// A chain is folded only while the counts agree and no node of it holds
// queries of its own. The prefix of a line is built from the markers of its
// ancestors: '|' for a child that has siblings after it, '.' for the last
// child. Leaves also end with "#count". When queries are listed, every node
// with attributed queries is followed by one " - query (offset) " line per
// query, before the lines of its children.
package dendrogram

import (
	"bytes"
	"io"
	"strconv"

	"github.com/matzehuels/taxotree/pkg/taxon"
)

// Options configures the text output.
type Options struct {
	// Queries lists the queries attributed to each leaf.
	Queries bool
}

// Render returns the dendrogram of the tree rooted at root.
func Render(root *taxon.Node, opts Options) []byte {
	var buf bytes.Buffer
	w := writer{buf: &buf, queries: opts.Queries}
	w.node(root, true, ".")
	buf.WriteByte('\n')
	return buf.Bytes()
}

// Write renders the dendrogram to w.
func Write(w io.Writer, root *taxon.Node, opts Options) error {
	_, err := w.Write(Render(root, opts))
	return err
}

type writer struct {
	buf     *bytes.Buffer
	queries bool
}

func (w writer) node(n *taxon.Node, named bool, prefix string) {
	if named {
		w.buf.WriteString("+ ")
		w.buf.WriteString(n.Label())
		w.buf.WriteByte(';')
	}

	if folds(n) {
		c := n.Children[0]
		w.buf.WriteString(c.Label())
		w.buf.WriteByte(';')
		w.node(c, false, prefix)
		return
	}

	w.count(n)
	if w.queries {
		for _, q := range n.Queries {
			w.buf.WriteString(prefix)
			w.buf.WriteString(" - ")
			w.buf.WriteString(q.ID)
			w.buf.WriteString(" (")
			w.buf.WriteString(strconv.FormatInt(q.Offset, 10))
			w.buf.WriteString(") \n")
		}
	}
	last := len(n.Children) - 1
	for i, c := range n.Children {
		w.buf.WriteString(prefix)
		marker := "|"
		if i == last {
			marker = "."
		}
		w.node(c, true, prefix+marker)
	}
}

// folds reports whether the single child of n continues n's line. A node
// holding queries, or whose count differs from its child's, ends the line.
func folds(n *taxon.Node) bool {
	return len(n.Children) == 1 && len(n.Queries) == 0 && n.Count == n.Children[0].Count
}

func (w writer) count(n *taxon.Node) {
	w.buf.WriteByte('#')
	w.buf.WriteString(strconv.Itoa(n.Count))
	w.buf.WriteByte('\n')
}

package krona

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/taxotree/pkg/taxon"
)

// Attribute and list names of the Krona schema.
const (
	AttrReads   = "reads"
	AttrRank    = "rank"
	ListMembers = "read_members"
)

// DefaultDataset names the dataset when none is given.
const DefaultDataset = "taxotree"

// Options configures the Krona documents.
type Options struct {
	// Dataset is the name shown in the viewer's dataset selector.
	Dataset string

	// Collapse makes the viewer collapse single-child chains.
	Collapse bool

	// KronaURL is the base URL the HTML page loads the viewer from.
	KronaURL string
}

func (o Options) dataset() string {
	if o.Dataset == "" {
		return DefaultDataset
	}
	return o.Dataset
}

// Member formats a query attribution as a list value.
func Member(q taxon.QueryRef) string {
	return q.ID + "\t" + strconv.FormatInt(q.Offset, 10)
}

// RenderXML returns the Krona XML document of the tree rooted at root.
func RenderXML(root *taxon.Node, opts Options) []byte {
	var buf bytes.Buffer
	writeXML(&buf, root, opts, 0)
	return buf.Bytes()
}

// WriteXML writes the Krona XML document to w.
func WriteXML(w io.Writer, root *taxon.Node, opts Options) error {
	_, err := w.Write(RenderXML(root, opts))
	return err
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

type xmlWriter struct {
	buf    *bytes.Buffer
	indent int
}

func (w *xmlWriter) line(format string, args ...any) {
	w.buf.WriteString(strings.Repeat("  ", w.indent))
	fmt.Fprintf(w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *xmlWriter) open(tag string)  { w.line("<%s>", tag); w.indent++ }
func (w *xmlWriter) close(tag string) { w.indent--; w.line("</%s>", tag) }

func (w *xmlWriter) text(tag, value string) {
	w.line("<%s>%s</%s>", tag, xmlEscaper.Replace(value), tag)
}

func writeXML(buf *bytes.Buffer, root *taxon.Node, opts Options, indent int) {
	w := &xmlWriter{buf: buf, indent: indent}

	w.line(`<krona collapse="%t" key="true">`, opts.Collapse)
	w.indent++

	w.open("datasets")
	w.text("dataset", opts.dataset())
	w.close("datasets")

	w.line(`<attributes magnitude="%s">`, AttrReads)
	w.indent++
	w.line(`<attribute display="Nb of reads" listAll="%s">%s</attribute>`, ListMembers, AttrReads)
	w.line(`<attribute display="Rank" mono="true">%s</attribute>`, AttrRank)
	w.text("list", ListMembers)
	w.close("attributes")

	w.node(root)

	w.close("krona")
}

func (w *xmlWriter) node(n *taxon.Node) {
	w.line(`<node name="%s">`, xmlEscaper.Replace(n.Name))
	w.indent++

	w.open(AttrReads)
	w.text("val", strconv.Itoa(n.Count))
	w.close(AttrReads)

	if n.Rank != "" {
		w.open(AttrRank)
		w.text("val", n.Rank)
		w.close(AttrRank)
	}

	for _, c := range n.Children {
		w.node(c)
	}

	if len(n.Queries) > 0 {
		w.open(ListMembers)
		w.open("vals")
		for _, q := range n.Queries {
			w.text("val", Member(q))
		}
		w.close("vals")
		w.close(ListMembers)
	}

	w.close("node")
}

package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/taxotree/pkg/taxon"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the rank and the number of attributed queries to the
	// node labels. When false, labels show the name and the count.
	Detailed bool

	// MinCount hides the subtrees whose count is below this threshold.
	// Zero keeps every node.
	MinCount int
}

// ToDOT converts a taxon tree to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Node identifiers are assigned in pre-order ("n0" is the root) since taxon
// names are only unique among siblings. Nodes holding queries are filled.
func ToDOT(root *taxon.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	ids := make(map[*taxon.Node]string)
	var edges []string
	root.Walk(func(n *taxon.Node, _ int) bool {
		if n.Count < opts.MinCount && !n.IsRoot() {
			return false
		}
		id := "n" + strconv.Itoa(len(ids))
		ids[n] = id
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		if p := n.Parent(); p != nil {
			edges = append(edges, fmt.Sprintf("  %s -> %s;\n", ids[p], id))
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *taxon.Node, detailed bool) string {
	if !detailed {
		return fmt.Sprintf("%s\n%d", n.Name, n.Count)
	}

	parts := []string{n.Name}
	if n.Rank != "" {
		parts = append(parts, "rank: "+n.Rank)
	}
	parts = append(parts, fmt.Sprintf("count: %d", n.Count))
	if len(n.Queries) > 0 {
		parts = append(parts, fmt.Sprintf("queries: %d", len(n.Queries)))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *taxon.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if len(n.Queries) > 0 {
		attrs = append(attrs, "fillcolor=lightblue")
	}
	if n.IsRoot() {
		attrs = append(attrs, "style=\"rounded,filled,bold\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

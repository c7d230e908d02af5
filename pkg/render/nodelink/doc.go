// Package nodelink renders taxon trees as node-link diagrams.
//
// # Overview
//
// This package produces Graphviz diagrams of the abundance tree, with one
// box per taxon labelled with its name and count. It complements the Krona
// output when a static picture is wanted, e.g. in a report or a paper.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(tree.Root, nodelink.Options{MinCount: 5})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//
// The generated DOT uses left-to-right layout (rankdir=LR) so that deep
// lineages grow horizontally.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink

// Package render groups the renderers of taxon trees. Each subpackage turns
// a [taxon.Node] subtree into one output family:
//
//   - [dendrogram]: indented text, one line per node with its count
//   - [krona]: Krona XML and JSON, plus an HTML page embedding the XML;
//     readers for both formats rebuild a tree for extraction
//   - [nodelink]: Graphviz DOT, and SVG laid out by an embedded Graphviz
//
// Renderers never modify the tree:
//
//	text := dendrogram.Render(tree.Root, dendrogram.Options{Queries: true})
//	xml := krona.RenderXML(tree.Root, krona.Options{Dataset: "sample"})
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(tree.Root, nodelink.Options{}))
//
// [taxon.Node]: github.com/matzehuels/taxotree/pkg/taxon
// [dendrogram]: github.com/matzehuels/taxotree/pkg/render/dendrogram
// [krona]: github.com/matzehuels/taxotree/pkg/render/krona
// [nodelink]: github.com/matzehuels/taxotree/pkg/render/nodelink
package render

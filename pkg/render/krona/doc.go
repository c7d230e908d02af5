// Package krona renders taxon trees in the Krona exchange formats.
//
// # Overview
//
// Krona is an interactive zoomable pie chart viewer for hierarchical data.
// This package writes the tree it consumes in two equivalent encodings:
//
//   - [RenderXML]: the Krona XML document
//   - [RenderJSON]: the same document as JSON, with attributes as "_name"
//     keys and element text as "__text", the mapping used by x2js
//   - [RenderHTML]: the XML document embedded in a page that loads the
//     Krona viewer script
//
// # Schema
//
// Both encodings carry the same facts for every node:
//
//	<node name="Bacteria">
//	  <reads><val>12</val></reads>
//	  <rank><val>superkingdom</val></rank>
//	  <node name="...">...</node>
//	  <read_members><vals><val>read1	4096</val></vals></read_members>
//	</node>
//
// The rank element is present only for ranked nodes and read_members only
// on nodes holding queries. Members are "query<TAB>offset" strings.
//
// # Reading
//
// [ReadXML] and [ReadJSON] decode the documents back into a
// [taxon.Tree]. ReadXML also accepts the HTML page. Together with the
// renderers they give a lossless round trip of names, ranks, counts and
// members.
package krona

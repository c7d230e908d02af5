// Package taxon implements the taxonomic abundance tree.
//
// # Overview
//
// A [Tree] is a prefix tree of taxon names rooted at a node called "root".
// Each call to [Tree.Insert] walks one lineage from the root downwards,
// creating the nodes it is missing and adding the query's weight to every
// node it touches. The query itself is recorded only once, on the deepest
// node of its lineage.
//
//	t := taxon.NewTree(taxon.Options{TrackRank: true})
//	t.Insert("read1", 0, "Bacteria (superkingdom); Proteobacteria (phylum);")
//	t.Insert("read2", 87, "Bacteria (superkingdom); Firmicutes (phylum);")
//
// After these two calls, root and Bacteria both count 2, and each phylum
// counts 1 and holds one query.
//
// # Lineages
//
// A lineage is a ';' separated list of names, from the broadest to the most
// specific. Each name may carry a rank in parentheses. [Normalize] turns the
// raw string into (name, rank) [Segment] values. A parenthesized group is
// kept as a rank only if it is one of the [Ranks]. Anything else is glued
// back onto the name. [Clean] applies the pre-cleaning the callers use
// before insertion.
//
// # Identity
//
// A node is identified by its name among its siblings. The rank is metadata:
// the first insertion that reaches a node with rank information sets it, and
// later insertions never change it. Two lineages that differ only in their
// rank annotations therefore share their nodes.
//
// # Concurrency
//
// A Tree is not safe for concurrent mutation. Once built, any number of
// goroutines may read it concurrently, which is what the renderers do.
package taxon

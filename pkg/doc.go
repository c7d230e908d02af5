// Package pkg provides the libraries behind taxotree, which aggregates the
// hits of a sequence similarity search into a taxonomic tree.
//
// # Overview
//
// A typical analysis runs in two steps:
//
//	search report (query, hit id, ..., score)
//	         ↓
//	    [annotate] hit id → database entry → organism → lineage
//	         ↓
//	annotated report (..., organism, lineage)
//	         ↓
//	    [pipeline] best hits per query → [taxon] tree → [render] outputs
//
// # Main Packages
//
// ## Core Domain Logic
//
// [taxon] - Lineage normalization and the taxon tree: insertion with
// counts, rank tracking, identical-read weighting, walkers and LCA.
//
// [selection] - Best-hit and delta-tolerance selection of the hits of one
// query.
//
// [report] - Tabular report reader keeping byte offsets of every row.
//
// [render] - Dendrogram text, Krona XML/JSON/HTML and Graphviz renderers.
//
// ## Annotation
//
// [record] - EMBL and GenBank flat-file entries, hit identifier parsing and
// the database alias table.
//
// [fetch] - Batched entry retrieval from a dbfetch service or local files,
// with a caching decorator.
//
// [taxodb] - Organism and accession lineage stores on kv files, Redis or
// MongoDB.
//
// [annotate] - The annotation flow tying the above together.
//
// ## Orchestration and Infrastructure
//
// [pipeline] - Report → tree → artifacts, shared by the CLI and the server.
//
// [extract] - Queries attributed below a named taxon of a saved tree.
//
// [io] - Tree dumps with a run header, and plain JSON trees.
//
// [config] - Configuration from defaults, file, environment and flags.
//
// [cache] - Byte caches (file, memory, null) and retry helpers.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for build, render, cache and HTTP events.
//
// [taxon]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/taxon
// [selection]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/selection
// [report]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/report
// [render]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/render
// [record]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/record
// [fetch]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/fetch
// [taxodb]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/taxodb
// [annotate]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/annotate
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/pipeline
// [extract]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/extract
// [io]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/io
// [config]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/taxotree/pkg/observability
package pkg

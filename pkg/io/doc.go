// Package io saves and loads taxon trees.
//
// # Dump
//
// A dump is the checkpoint of an aggregation run: the complete tree plus a
// [Header] describing the run that built it. It is a gob stream and only
// meant to be read back by this package:
//
//	err := io.ExportDump(tree, io.NewHeader("sample.blast"), "sample.dump")
//	d, err := io.ImportDump("sample.dump")
//	fmt.Println(d.Header.RunID, d.Tree.Root.Count)
//
// Dumps written to a path ending in ".gz" (or another extension known to
// xopen) are compressed.
//
// # JSON
//
// [WriteJSON] and [ReadJSON] exchange the tree as plain nested JSON for
// external tools:
//
//	{
//	  "name": "root",
//	  "count": 3,
//	  "children": [
//	    {"name": "Bacteria", "rank": "superkingdom", "count": 3,
//	     "queries": [{"id": "q1", "offset": 0}]}
//	  ]
//	}
//
// Unlike the Krona documents, this format carries no viewer schema.
//
// # Concurrency
//
// All functions only read the tree they are given, so they may run
// concurrently with other readers. The trees returned by the readers are
// independent of their input.
package io

// Package taxodb looks up lineages in key/value stores.
//
// Two kinds of store are used during annotation. An organism store maps an
// organism name to its ranked lineage:
//
//	Homo sapiens -> Eukaryota (superkingdom); ... ; Homo sapiens (species);
//
// An accession store maps an accession of a reference database such as
// SILVA to the organism and lineage joined by [Separator]:
//
//	AB000263 -> Homo sapiens_@#$_Eukaryota (superkingdom); ...
//
// Stores are opened from a URI by [Open]:
//
//	taxo.kv, kv:///data/taxo.kv        modernc.org/kv file
//	redis://host:6379/0?prefix=taxo:   Redis, keys optionally prefixed
//	mongodb://host/taxo?collection=os  MongoDB, documents {_id, value}
//	memory:                            empty in-memory store
//
// [Build] fills a [Writer] from a two-column TSV file.
package taxodb

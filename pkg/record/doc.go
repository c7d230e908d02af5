// Package record parses sequence database flat files into the few fields
// taxonomy annotation needs.
//
// A flat file holds one or more entries separated by "//" lines. Two
// layouts are understood, told apart by their first line:
//
//   - UniProt and EMBL entries start with "ID". The organism comes from the
//     first OS line, the lineage from the OC lines up to the first XX line,
//     the taxonomy identifier from OX and the description from DE.
//   - GenBank and GenPept entries start with "LOCUS". The organism is the
//     ORGANISM line and the lineage is the untagged block that follows it.
//
// Parsing stops at the first reference, comment, feature or sequence
// section, so the bulk of an entry is never scanned.
//
// The package also decides which database a report hit belongs to. Hit
// identifiers such as "gi|12345|emb|CAA12345.1|" or "sp|P69905" are split
// by [ParseHit], and the database name is mapped by an [Aliases] table to
// its canonical name, or marked to be skipped or looked up in an
// accession store.
package record

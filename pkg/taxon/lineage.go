package taxon

import "strings"

// Segment is one level of a normalized lineage.
type Segment struct {
	Name string
	Rank string // empty when the segment carries no recognized rank
}

const cellularPrefix = "cellular organisms"

// Normalize splits a raw lineage into its (name, rank) segments.
//
// Each ';' separated segment is trimmed. The last parenthesized group, if
// any, is the rank candidate; inner spaces become underscores. When the
// segment has more than one group, the text before the last one, with its
// parentheses removed, is the name. A candidate that is not one of the
// [Ranks] is appended to the name with '_' and the rank is left empty.
//
// Segments whose name is empty are kept so that positions line up with the
// raw lineage, except for the empty tail left by a terminating ';'. An
// empty or blank lineage yields no segments.
func Normalize(raw string) []Segment {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	if strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		segs = append(segs, parseSegment(p))
	}
	return segs
}

// HasNames reports whether raw holds at least one non-empty segment name,
// that is whether inserting it reaches a node below the root.
func HasNames(raw string) bool {
	for _, s := range Normalize(raw) {
		if s.Name != "" {
			return true
		}
	}
	return false
}

var parenStripper = strings.NewReplacer("(", "", ")", "")

func parseSegment(s string) Segment {
	s = strings.TrimSpace(s)
	open := strings.LastIndexByte(s, '(')
	if open < 0 {
		return Segment{Name: s}
	}

	name := s[:open]
	if strings.Count(s, "(") > 1 {
		name = parenStripper.Replace(name)
	}
	name = strings.TrimSpace(name)

	rank := s[open+1:]
	if end := strings.IndexByte(rank, ')'); end >= 0 {
		rank = rank[:end]
	}
	rank = strings.ReplaceAll(strings.TrimSpace(rank), " ", "_")

	if rank != "" && !IsRank(rank) {
		return Segment{Name: name + "_" + rank}
	}
	return Segment{Name: name, Rank: rank}
}

// Clean prepares a raw lineage for insertion. A single trailing '.' is
// replaced by ';' and, when dropCellular is set, the leading
// "cellular organisms; " group is removed.
func Clean(raw string, dropCellular bool) string {
	s := strings.TrimSpace(raw)
	if strings.HasSuffix(s, ".") {
		s = s[:len(s)-1] + ";"
	}
	if dropCellular {
		s = trimCellular(s)
	}
	return s
}

func trimCellular(s string) string {
	rest, ok := strings.CutPrefix(s, cellularPrefix)
	if !ok {
		return s
	}
	rest = strings.TrimLeft(rest, " ")
	rest, ok = strings.CutPrefix(rest, ";")
	if !ok {
		return s
	}
	return strings.TrimLeft(rest, " ")
}

// String renders segments back into lineage form, e.g.
// "Bacteria (superkingdom); Proteobacteria (phylum);". Empty names are
// omitted.
func String(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Name == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.Name)
		if s.Rank != "" {
			b.WriteString(" (")
			b.WriteString(s.Rank)
			b.WriteByte(')')
		}
		b.WriteByte(';')
	}
	return b.String()
}

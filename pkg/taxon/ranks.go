package taxon

// Ranks is the vocabulary of recognized taxonomic ranks, from the broadest
// to the most specific. A parenthesized annotation that is not in this list
// is treated as part of the taxon name.
var Ranks = []string{
	"superkingdom",
	"kingdom",
	"subkingdom",
	"superphylum",
	"phylum",
	"subphylum",
	"superclass",
	"class",
	"subclass",
	"infraclass",
	"superorder",
	"order",
	"suborder",
	"infraorder",
	"parvorder",
	"superfamily",
	"family",
	"subfamily",
	"tribe",
	"subtribe",
	"genus",
	"subgenus",
	"species_group",
	"species_subgroup",
	"species",
	"subspecies",
	"varietas",
	"forma",
}

var rankLevel = func() map[string]int {
	m := make(map[string]int, len(Ranks))
	for i, r := range Ranks {
		m[r] = i
	}
	return m
}()

// IsRank reports whether s is a recognized rank.
func IsRank(s string) bool {
	_, ok := rankLevel[s]
	return ok
}

// RankLevel returns the position of rank in [Ranks], or -1 if rank is not
// recognized. Lower levels are broader.
func RankLevel(rank string) int {
	if lvl, ok := rankLevel[rank]; ok {
		return lvl
	}
	return -1
}

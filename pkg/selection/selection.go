// Package selection chooses which alignment hits of a query feed the tree.
//
// Every query keeps its best hit: the highest score among the hits that
// carry a lineage, the first one winning ties. With a delta tolerance d,
// hits whose score lies within d percent of the best are kept as well, as
// long as their lineage differs from every lineage already kept for the
// query.
package selection

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxotree/pkg/taxon"
)

// Hit is one alignment record of a query.
type Hit struct {
	Score   float64
	Lineage string // empty when the record has no usable taxonomy
	Offset  int64  // byte offset of the record in the report
}

// HasLineage reports whether the hit can be inserted into the tree: its
// lineage must name at least one taxon.
func (h Hit) HasLineage() bool {
	return taxon.HasNames(h.Lineage)
}

// Selection is the outcome for one query.
type Selection struct {
	Query string
	Best  Hit
	Delta []Hit // distinct-lineage hits within tolerance, in report order
}

// Hits returns the best hit followed by the delta hits.
func (s Selection) Hits() []Hit {
	return append([]Hit{s.Best}, s.Delta...)
}

// WithinDelta reports whether score lies in the closed window of
// deltaPercent percent of |best| around best.
func WithinDelta(best, score float64, deltaPercent int) bool {
	d := math.Abs(best) * float64(deltaPercent) / 100
	return score >= best-d && score <= best+d
}

// Selector accumulates hits per query, in the order queries first appear.
//
// The zero value is not usable; use [New].
type Selector struct {
	delta  int
	order  []string
	hits   map[string][]Hit
	Logger *log.Logger
}

// New returns a selector with the given delta tolerance in percent. A zero
// delta keeps only the best hit of every query.
func New(deltaPercent int) *Selector {
	return &Selector{
		delta: deltaPercent,
		hits:  make(map[string][]Hit),
	}
}

// Add records a hit for query.
func (s *Selector) Add(query string, h Hit) {
	if _, seen := s.hits[query]; !seen {
		s.order = append(s.order, query)
	}
	s.hits[query] = append(s.hits[query], h)
}

// Queries returns the number of distinct queries seen.
func (s *Selector) Queries() int { return len(s.order) }

// Select runs the policy over every query. Queries with no hit carrying a
// lineage are returned separately, in order of appearance.
func (s *Selector) Select() (selected []Selection, skipped []string) {
	for _, q := range s.order {
		sel, ok := Choose(q, s.hits[q], s.delta)
		if !ok {
			if s.Logger != nil {
				s.Logger.Warn("no taxonomy found", "query", q)
			}
			skipped = append(skipped, q)
			continue
		}
		selected = append(selected, sel)
	}
	return selected, skipped
}

// Choose applies the policy to the hits of a single query. It returns
// false when none of the hits has a lineage.
func Choose(query string, hits []Hit, deltaPercent int) (Selection, bool) {
	best := -1
	for i, h := range hits {
		if !h.HasLineage() {
			continue
		}
		if best < 0 || h.Score > hits[best].Score {
			best = i
		}
	}
	if best < 0 {
		return Selection{Query: query}, false
	}

	sel := Selection{Query: query, Best: hits[best]}
	if deltaPercent <= 0 {
		return sel, true
	}

	seen := map[string]bool{sel.Best.Lineage: true}
	for i, h := range hits {
		if i == best || !h.HasLineage() {
			continue
		}
		if !WithinDelta(sel.Best.Score, h.Score, deltaPercent) {
			continue
		}
		if seen[h.Lineage] {
			continue
		}
		seen[h.Lineage] = true
		sel.Delta = append(sel.Delta, h)
	}
	return sel, true
}

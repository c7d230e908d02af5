package pipeline

import (
	"context"
	"io"

	"github.com/matzehuels/taxotree/pkg/report"
	"github.com/matzehuels/taxotree/pkg/selection"
	"github.com/matzehuels/taxotree/pkg/taxon"
)

// Build reads a report and returns the tree of its selected lineages.
//
// Every row goes to the selector; once the report is exhausted the best
// hit of each query is inserted, then its delta hits. Queries are handled
// in the order they first appear. A row with a missing or malformed score
// aborts the build.
func Build(ctx context.Context, r io.Reader, opts Options) (*taxon.Tree, []string, Stats, error) {
	var stats Stats
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, stats, err
	}
	cols, err := report.NewColumns(opts.ScoreColumn, opts.TaxColumn)
	if err != nil {
		return nil, nil, stats, err
	}
	hitOpts := report.HitOptions{Columns: cols, DropCellular: opts.CleanCellular}

	sel := selection.New(opts.DeltaPercent)
	sel.Logger = opts.Logger

	rows := report.NewReader(r)
	for {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, stats, err
		}
		if stats.Rows%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, stats, err
			}
		}
		stats.Rows++

		query, hit, err := report.Hit(row, hitOpts)
		if err != nil {
			return nil, nil, stats, err
		}
		sel.Add(query, hit)
	}

	selected, skipped := sel.Select()
	tree := Insert(taxon.NewTree(opts.TreeOptions()), selected)

	stats.Queries = sel.Queries()
	stats.Selected = len(selected)
	for _, s := range selected {
		stats.DeltaHits += len(s.Delta)
	}
	stats.Nodes = tree.Root.Size()
	return tree, skipped, stats, nil
}

// Insert adds the selections to t: for each query its best hit, then its
// delta hits.
func Insert(t *taxon.Tree, selected []selection.Selection) *taxon.Tree {
	for _, s := range selected {
		for _, h := range s.Hits() {
			t.Insert(s.Query, h.Offset, h.Lineage)
		}
	}
	return t
}

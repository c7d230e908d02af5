package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taxotree/pkg/config"
	"github.com/matzehuels/taxotree/pkg/pipeline"
	"github.com/matzehuels/taxotree/pkg/report"
)

// aggregateOpts holds the flags of the aggregate command that are not
// part of the configuration.
type aggregateOpts struct {
	output   string // output file (single format) or base path (several)
	formats  string // comma-separated output formats
	queries  bool   // query lines in the dendrogram
	lca      bool   // print the lowest common ancestor
	detailed bool   // rank and count in Graphviz labels
	minCount int    // Graphviz node threshold
}

// treeFlagBindings are the config keys shared by commands building trees.
var treeFlagBindings = flagBindings{
	"report.tax_column":    "tax-column",
	"report.score_column":  "score-column",
	"tree.delta_percent":   "delta",
	"tree.rank_tracking":   "rank",
	"tree.identical_reads": "identical",
	"tree.clean_cellular":  "clean",
	"krona.dataset":        "dataset",
	"krona.script_url":     "krona-url",
}

func (c *CLI) aggregateCommand() *cobra.Command {
	var opts aggregateOpts

	cmd := &cobra.Command{
		Use:   "aggregate [report]",
		Short: "Aggregate the best hits of every query into a taxon tree",
		Long: `Aggregate reads an annotated search report, keeps the best-scoring hits
of every query (plus those within --delta percent of the best) and inserts
their lineages into a taxon tree. The tree is written in the requested
formats: ` + strings.Join(formatNames(), ", ") + `.

The report is read from standard input when no file is given. Compressed
reports are decompressed transparently.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, treeFlagBindings)
			if err != nil {
				return err
			}
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runAggregate(c.commandContext(cmd), cfg, input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s), comma-separated (default "+pipeline.DefaultFormat+")")
	cmd.Flags().BoolVar(&opts.queries, "queries", false, "list queries and offsets in the text dendrogram")
	cmd.Flags().BoolVar(&opts.lca, "lca", false, "print the lowest common ancestor of all queries")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show rank and count in Graphviz labels")
	cmd.Flags().IntVar(&opts.minCount, "min-count", 0, "omit Graphviz nodes with a lower count")
	addTreeFlags(cmd)

	return cmd
}

// addTreeFlags registers the flags bound by treeFlagBindings.
func addTreeFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("tax-column", "t", report.DefaultTaxColumn, "1-based column of the lineage")
	cmd.Flags().IntP("score-column", "s", report.DefaultScoreColumn, "1-based column of the score")
	cmd.Flags().IntP("delta", "d", 0, "also keep hits within this percent of the best score")
	cmd.Flags().BoolP("rank", "r", false, "track ranks and store them on the nodes")
	cmd.Flags().BoolP("identical", "i", false, "weight queries by the identical-read count in their id")
	cmd.Flags().Bool("clean", false, "remove the leading cellular organisms taxon")
	cmd.Flags().String("dataset", "", "Krona dataset name")
	cmd.Flags().String("krona-url", "", "Krona script location for HTML output")
}

// pipelineOptions maps the configuration onto pipeline options.
func pipelineOptions(cfg *config.Config, formats []string, source string) pipeline.Options {
	return pipeline.Options{
		ScoreColumn:    cfg.Report.ScoreColumn,
		TaxColumn:      cfg.Report.TaxColumn,
		DeltaPercent:   cfg.Tree.DeltaPercent,
		RankTracking:   cfg.Tree.RankTracking,
		IdenticalReads: cfg.Tree.IdenticalReads,
		CleanCellular:  cfg.Tree.CleanCellular,
		Formats:        formats,
		Dataset:        cfg.Krona.Dataset,
		KronaURL:       cfg.Krona.ScriptURL,
		Source:         source,
	}
}

func (c *CLI) runAggregate(ctx context.Context, cfg *config.Config, input string, opts *aggregateOpts) error {
	logger := loggerFromContext(ctx)

	popts := pipelineOptions(cfg, parseFormats(opts.formats), input)
	popts.Queries = opts.queries
	popts.Detailed = opts.detailed
	popts.MinCount = opts.minCount
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	r, err := report.Open(input)
	if err != nil {
		return err
	}
	defer r.Close()

	runner := c.newRunner()
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, r, popts)
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(ctx, result.Artifacts, popts.Formats, opts.output, input)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Aggregated %d queries", result.Stats.Selected))

	lca := ""
	if opts.lca {
		lca = strings.Join(result.Tree.LCA().Path(), ";")
		if lca == "" {
			lca = result.Tree.Root.Name
		}
		logger.Info("Lowest common ancestor", "path", lca)
	}

	// Stdout carries the artifact; keep it clean.
	if len(paths) == 0 {
		return nil
	}
	printSuccess("Tree built from %s", input)
	printStats(
		stat{result.Stats.Queries, "queries"},
		stat{result.Stats.Selected, "placed"},
		stat{result.Stats.DeltaHits, "delta hits"},
		stat{len(result.Skipped), "without taxonomy"},
		stat{result.Stats.Nodes, "nodes"},
	)
	for _, p := range paths {
		printFile(p)
	}
	if lca != "" {
		printKeyValue("LCA", lca)
	}
	for i, f := range popts.Formats {
		if f == pipeline.FormatDump {
			printNextStep("Render other formats", fmt.Sprintf("%s render %s -f svg", appName, paths[i]))
		}
	}
	return nil
}

// formatNames lists the supported formats in a stable order.
func formatNames() []string {
	return []string{
		pipeline.FormatKronaXML,
		pipeline.FormatKronaJSON,
		pipeline.FormatKronaHTML,
		pipeline.FormatText,
		pipeline.FormatDOT,
		pipeline.FormatSVG,
		pipeline.FormatJSON,
		pipeline.FormatDump,
	}
}

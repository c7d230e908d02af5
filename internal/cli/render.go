package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taxotree/pkg/config"
	taxio "github.com/matzehuels/taxotree/pkg/io"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string
	formats  string
	queries  bool
	detailed bool
	minCount int
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <dump>",
		Short: "Render a saved tree dump",
		Long: `Render loads a tree written by "aggregate -f dump" and renders it in the
requested formats without reading the report again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, flagBindings{
				"krona.dataset":    "dataset",
				"krona.script_url": "krona-url",
			})
			if err != nil {
				return err
			}
			return c.runRender(c.commandContext(cmd), cfg, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s), comma-separated")
	cmd.Flags().BoolVar(&opts.queries, "queries", false, "list queries and offsets in the text dendrogram")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show rank and count in Graphviz labels")
	cmd.Flags().IntVar(&opts.minCount, "min-count", 0, "omit Graphviz nodes with a lower count")
	cmd.Flags().String("dataset", "", "Krona dataset name")
	cmd.Flags().String("krona-url", "", "Krona script location for HTML output")

	return cmd
}

// runRender loads the dump at input and writes the requested renderings.
func (c *CLI) runRender(ctx context.Context, cfg *config.Config, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	d, err := taxio.ImportDump(input)
	if err != nil {
		return err
	}
	logger.Debug("Loaded dump",
		"run", d.Header.RunID,
		"source", d.Header.Source,
		"created", d.Header.CreatedAt,
		"inserts", d.Header.Inserts)

	popts := pipelineOptions(cfg, parseFormats(opts.formats), d.Header.Source)
	popts.Queries = opts.queries
	popts.Detailed = opts.detailed
	popts.MinCount = opts.minCount
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner := c.newRunner()
	defer runner.Close()

	artifacts, err := runner.Render(ctx, d.Tree, d.Header, popts)
	if err != nil {
		return err
	}
	paths, err := writeArtifacts(ctx, artifacts, popts.Formats, opts.output, input)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(popts.Formats)))

	if len(paths) == 0 {
		return nil
	}
	printSuccess("Rendered %s", input)
	printStats(stat{d.Tree.Root.Size(), "nodes"}, stat{d.Header.Inserts, "inserts"})
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

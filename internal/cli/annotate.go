package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taxotree/pkg/annotate"
	"github.com/matzehuels/taxotree/pkg/cache"
	"github.com/matzehuels/taxotree/pkg/config"
	"github.com/matzehuels/taxotree/pkg/fetch"
	"github.com/matzehuels/taxotree/pkg/record"
	"github.com/matzehuels/taxotree/pkg/report"
	"github.com/matzehuels/taxotree/pkg/taxodb"
)

// annotateOpts holds the command-line flags for the annotate command.
type annotateOpts struct {
	output      string
	notax       string
	column      int
	separator   string
	db          string
	description bool
	split       bool
	noCache     bool
}

func (c *CLI) annotateCommand() *cobra.Command {
	var opts annotateOpts

	cmd := &cobra.Command{
		Use:   "annotate [report]",
		Short: "Add organism and lineage columns to a search report",
		Long: `Annotate reads the hit identifier of every report row (db|accession or a
bare accession), resolves it to a sequence database entry and appends the
organism name and its lineage to the row.

Entries of canonical databases are fetched in batches from a dbfetch
service, or read from local flat files given with --records. Databases
listed as accession stores (silva, gg) are looked up directly in the stores
configured with --accession-store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, flagBindings{
				"fetch.max_batch":  "max-batch",
				"fetch.url":        "url",
				"fetch.timeout":    "timeout",
				"fetch.records":    "records",
				"stores.organism":  "organism-store",
				"stores.accession": "accession-store",
				"aliases":          "aliases",
			})
			if err != nil {
				return err
			}
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runAnnotate(c.commandContext(cmd), cfg, input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "annotated report (default stdout)")
	cmd.Flags().StringVar(&opts.notax, "notax", "", "also write rows without taxonomy to this file")
	cmd.Flags().IntVarP(&opts.column, "column", "c", annotate.DefaultColumn, "1-based column of the hit identifier")
	cmd.Flags().StringVarP(&opts.separator, "separator", "s", record.DefaultSeparator, "separator inside the hit identifier")
	cmd.Flags().StringVarP(&opts.db, "db", "d", "", "force the database of every hit")
	cmd.Flags().BoolVarP(&opts.description, "description", "e", false, "append the entry description")
	cmd.Flags().BoolVar(&opts.split, "split", false, "write rows without taxonomy to --notax only")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the fetched-record cache")
	cmd.Flags().Int("max-batch", fetch.DefaultMaxBatch, "entries fetched per request")
	cmd.Flags().String("url", fetch.DefaultURL, "dbfetch service URL")
	cmd.Flags().Duration("timeout", 0, "timeout of a fetch request (default fetch.timeout)")
	cmd.Flags().StringSlice("records", nil, "local EMBL/GenBank flat files used instead of the service")
	cmd.Flags().String("organism-store", "", "organism lineage store URI")
	cmd.Flags().StringToString("accession-store", nil, "accession lineage store per database (db=URI)")
	cmd.Flags().String("aliases", "", "database alias table replacing the built-in one")

	return cmd
}

func (c *CLI) runAnnotate(ctx context.Context, cfg *config.Config, input string, opts *annotateOpts) (err error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if opts.split && opts.notax == "" {
		logger.Warn("--split without --notax drops rows without taxonomy")
	}

	var aliases *record.Aliases
	if cfg.Aliases != "" {
		a, err := record.LoadAliases(cfg.Aliases)
		if err != nil {
			return err
		}
		aliases = a
		logger.Debug("Loaded alias table", "file", cfg.Aliases)
	}

	stores, err := taxodb.OpenSet(ctx, cfg.Stores.Organism, cfg.Stores.Accession)
	if err != nil {
		return err
	}
	defer stores.Close()
	if stores.Organisms == nil {
		logger.Warn("no organism store configured; fetched entries keep their own lineage")
	}

	hooks, unregister := registerHooks(logger)
	defer unregister()

	fetcher, closeFetcher, err := newFetcher(cfg, opts.noCache, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	a, err := annotate.New(fetcher, stores, aliases, annotate.Options{
		Column:      opts.column,
		Separator:   opts.separator,
		DB:          opts.db,
		Description: opts.description,
		Split:       opts.split,
		MaxBatch:    cfg.Fetch.MaxBatch,
	})
	if err != nil {
		return err
	}
	a.Logger = logger

	r, err := report.Open(input)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer closeOutput(out, &err)

	var notax io.Writer
	if opts.notax != "" {
		nw, oerr := openOutput(opts.notax)
		if oerr != nil {
			return oerr
		}
		defer closeOutput(nw, &err)
		notax = nw
	}

	stats, err := a.Run(ctx, r, out, notax)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Annotated %d of %d rows", stats.Annotated, stats.Rows))

	if opts.output == "" || opts.output == "-" {
		return nil
	}
	printSuccess("Annotated %s", input)
	printFile(opts.output)
	if opts.notax != "" {
		printFile(opts.notax)
	}
	printSummary("rows",
		stat{stats.Rows, "read"},
		stat{stats.Annotated, "annotated"},
		stat{stats.NoTaxonomy, "no taxonomy"},
		stat{stats.Unparsed, "unparsed"},
		stat{stats.Skipped, "skipped db"},
		stat{stats.Fetched, "fetched"},
		stat{stats.Batches, "batches"},
	)
	printStats(hooks.stats()...)
	return nil
}

// newFetcher returns the entry fetcher for cfg: local flat files when
// fetch.records is set, else the dbfetch service behind the record cache.
func newFetcher(cfg *config.Config, noCache bool, logger *log.Logger) (fetch.Fetcher, func(), error) {
	if len(cfg.Fetch.Records) > 0 {
		local, err := fetch.NewLocal(cfg.Fetch.Records...)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("Indexed local records", "files", len(cfg.Fetch.Records), "entries", local.Len())
		return local, func() {}, nil
	}

	c, err := newRecordCache(cfg, noCache)
	if err != nil {
		return nil, nil, err
	}
	remote := fetch.NewHTTP(fetch.HTTPOptions{
		URL:      cfg.Fetch.URL,
		MaxBatch: cfg.Fetch.MaxBatch,
		Timeout:  cfg.Fetch.Timeout,
		Logger:   logger,
	})
	logger.Debug("Fetching entries", "url", remote.URL())
	if _, null := c.(cache.NullCache); null {
		return remote, func() {}, nil
	}
	keyer := cache.NewScopedKeyer(nil, remote.URL()+"|")
	return fetch.NewCached(remote, c, keyer, cfg.Cache.TTL), func() { c.Close() }, nil
}

package cli

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taxotree/pkg/config"
	"github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/taxodb"
)

// dbCommand creates the lineage store command.
func (c *CLI) dbCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Build and query lineage stores",
		Long: `Lineage stores map organism names, or accessions of reference databases,
to lineages. They are named by URI:

  taxo.kv, kv:///data/taxo.kv        local key/value file
  redis://host:6379/0?prefix=taxo:   Redis
  mongodb://host/taxo?collection=os  MongoDB`,
	}

	cmd.AddCommand(c.dbBuildCommand())
	cmd.AddCommand(c.dbGetCommand())

	return cmd
}

// dbBuildOpts holds the command-line flags for "db build".
type dbBuildOpts struct {
	keyColumn   int
	valueColumn int
	threads     int
	chunkSize   int
}

func (c *CLI) dbBuildCommand() *cobra.Command {
	var opts dbBuildOpts

	cmd := &cobra.Command{
		Use:   "build <tsv> <store>",
		Short: "Load a key/lineage TSV file into a store",
		Long: `Build loads a tab-separated file into the store at URI. A kv file is
created from scratch; Redis and MongoDB keys are upserted.

Accession store values hold the organism and the lineage joined by "` + taxodb.Separator + `".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDBBuild(c.commandContext(cmd), args[0], args[1], &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.keyColumn, "key-column", "k", 1, "1-based column of the key")
	cmd.Flags().IntVarP(&opts.valueColumn, "value-column", "c", 2, "1-based column of the lineage")
	cmd.Flags().IntVarP(&opts.threads, "threads", "j", runtime.NumCPU(), "parser threads")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 1000, "lines per parser chunk")

	return cmd
}

func (c *CLI) runDBBuild(ctx context.Context, path, uri string, opts *dbBuildOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	w, err := taxodb.OpenWriter(ctx, uri)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Loading "+path)
	spinner.Start()
	n, err := taxodb.Build(ctx, w, path, taxodb.BuildOptions{
		KeyColumn:   opts.keyColumn,
		ValueColumn: opts.valueColumn,
		Threads:     opts.threads,
		ChunkSize:   opts.chunkSize,
		Logger:      logger,
	})
	spinner.Stop()
	if cerr := w.Close(); err == nil && cerr != nil {
		err = errors.Wrap(errors.ErrCodeStoreUnavailable, cerr, "close store %s", uri)
	}
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Loaded %d entries", n))
	printSuccess("Built %s", uri)
	printStats(stat{n, "entries"})
	return nil
}

// dbGetOpts holds the command-line flags for "db get".
type dbGetOpts struct {
	store string // explicit store URI
	db    string // accession store of this database
}

func (c *CLI) dbGetCommand() *cobra.Command {
	var opts dbGetOpts

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Look up a key in a lineage store",
		Long: `Get prints the lineage stored under key. The organism store of the
configuration is used unless --db names an accession store or --store gives
a URI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			return c.runDBGet(c.commandContext(cmd), cfg, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.store, "store", "", "store URI")
	cmd.Flags().StringVar(&opts.db, "db", "", "use the accession store of this database")

	return cmd
}

// storeURI picks the store to query from the flags and configuration.
func (o *dbGetOpts) storeURI(cfg *config.Config) (string, error) {
	switch {
	case o.store != "":
		return o.store, nil
	case o.db != "":
		uri, ok := cfg.Stores.Accession[strings.ToLower(o.db)]
		if !ok {
			return "", errors.New(errors.ErrCodeInvalidInput, "no accession store configured for %s", o.db)
		}
		return uri, nil
	case cfg.Stores.Organism != "":
		return cfg.Stores.Organism, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "no store given: use --store or configure stores.organism")
	}
}

func (c *CLI) runDBGet(ctx context.Context, cfg *config.Config, key string, opts *dbGetOpts) error {
	uri, err := opts.storeURI(cfg)
	if err != nil {
		return err
	}
	st, err := taxodb.Open(ctx, uri)
	if err != nil {
		return err
	}
	defer st.Close()

	v, ok, err := st.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no entry for %s in %s", key, uri)
	}

	org, lineage := taxodb.SplitOrganism(v)
	if org != "" {
		printKeyValue("organism", org)
	}
	printKeyValue("lineage", lineage)
	return nil
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/extract"
	"github.com/matzehuels/taxotree/pkg/taxon"
)

// extractOpts holds the command-line flags for the extract command.
type extractOpts struct {
	name   string // taxon to extract, picked interactively when empty
	output string // query/offset listing
	split  string // prefix of .seq and .offset files
}

func (c *CLI) extractCommand() *cobra.Command {
	var opts extractOpts

	cmd := &cobra.Command{
		Use:   "extract <tree>",
		Short: "List the queries attributed below a taxon",
		Long: `Extract loads a tree (Krona XML or JSON, tree JSON or dump) and lists the
queries of every subtree rooted at a node named --name, one "query<TAB>offset"
line each. The offsets locate the query in the report the tree was built
from.

Without --name an interactive picker opens over the tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(c.commandContext(cmd), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "taxon name")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.split, "split", "", "write query ids to PREFIX.seq and offsets to PREFIX.offset")

	return cmd
}

func (c *CLI) runExtract(ctx context.Context, input string, opts *extractOpts) error {
	logger := loggerFromContext(ctx)

	src, err := extract.Load(input)
	if err != nil {
		return err
	}
	logger.Debug("Loaded tree", "format", src.Format, "nodes", src.Tree.Root.Size())

	name := opts.name
	if name == "" {
		n, err := pickTaxon(src.Tree.Root)
		if err != nil {
			return err
		}
		if n == nil {
			printInfo("No taxon selected")
			return nil
		}
		name = n.Name
	}

	members, err := extract.Members(src.Tree.Root, name)
	if err != nil {
		return err
	}
	logger.Infof("Found %d queries under %s", len(members), name)

	if opts.split != "" {
		return writeSplit(opts.split, members)
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	if err := extract.Write(out, members); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if opts.output != "" && opts.output != "-" {
		printSuccess("Extracted %d queries under %s", len(members), name)
		printFile(opts.output)
	}
	return nil
}

// writeSplit writes the query ids and offsets of members to two files.
func writeSplit(prefix string, members []taxon.QueryRef) (err error) {
	if err := errors.ValidatePath(prefix); err != nil {
		return err
	}
	seqPath, offPath := prefix+".seq", prefix+".offset"
	seq, err := openOutput(seqPath)
	if err != nil {
		return err
	}
	defer closeOutput(seq, &err)
	off, err := openOutput(offPath)
	if err != nil {
		return err
	}
	defer closeOutput(off, &err)

	if err := extract.WriteSplit(seq, off, members); err != nil {
		return err
	}
	printSuccess("Extracted %d queries", len(members))
	printFile(seqPath)
	printFile(offPath)
	return nil
}

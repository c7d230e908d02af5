package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/taxotree/internal/server"
	taxio "github.com/matzehuels/taxotree/pkg/io"
)

func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <dump>",
		Short: "Serve the renderings of a tree dump over HTTP",
		Long: `Serve loads a tree dump and serves it until interrupted:

  /                 Krona chart
  /krona.xml        Krona XML
  /krona.json       Krona JSON
  /dendrogram.txt   text dendrogram (?queries=true lists queries)
  /tree.svg         Graphviz drawing
  /tree.dot         Graphviz source
  /tree.json        tree JSON
  /members/{name}   queries under a taxon
  /healthz          health check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, flagBindings{
				"server.addr":      "addr",
				"krona.dataset":    "dataset",
				"krona.script_url": "krona-url",
			})
			if err != nil {
				return err
			}
			ctx := c.commandContext(cmd)

			d, err := taxio.ImportDump(args[0])
			if err != nil {
				return err
			}
			opts := pipelineOptions(cfg, nil, d.Header.Source)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner := c.newRunner()
			defer runner.Close()

			printSuccess("Serving %s", args[0])
			printKeyValue("address", StyleLink.Render("http://"+cfg.Server.Addr+"/"))
			printStats(stat{d.Tree.Root.Size(), "nodes"}, stat{d.Header.Inserts, "inserts"})
			return server.New(d, runner, opts, c.Logger).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().String("addr", "localhost:8080", "listen address")
	cmd.Flags().String("dataset", "", "Krona dataset name")
	cmd.Flags().String("krona-url", "", "Krona script location")

	return cmd
}

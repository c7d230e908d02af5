package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taxotree/pkg/buildinfo"
	"github.com/matzehuels/taxotree/pkg/cache"
	"github.com/matzehuels/taxotree/pkg/config"
	"github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configFile is the --config flag value.
	configFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Taxotree aggregates search hits into taxonomic trees",
		Long:         `Taxotree annotates sequence search reports with taxonomic lineages and aggregates the best hits of every query into a taxon tree, rendered as a dendrogram, Krona chart or Graphviz diagram.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ./taxotree.toml or ~/.config/taxotree/taxotree.toml)")

	root.AddCommand(c.annotateCommand())
	root.AddCommand(c.aggregateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.dbCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// flagBindings maps config keys to the flags overriding them.
type flagBindings map[string]string

// loadConfig reads the configuration with the given command flags bound on
// top of the file and environment.
func (c *CLI) loadConfig(cmd *cobra.Command, bindings flagBindings) (*config.Config, error) {
	l := config.NewLoader()
	for key, name := range bindings {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := l.Viper().BindPFlag(key, f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "bind flag %s", name)
		}
	}
	cfg, err := l.Load(c.configFile)
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		c.Logger.Debug("Loaded config", "file", cfg.File)
	}
	return cfg, nil
}

// commandContext attaches the CLI logger to the command context.
func (c *CLI) commandContext(cmd *cobra.Command) context.Context {
	return withLogger(cmd.Context(), c.Logger)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Artifacts are cached in
// memory only, since every CLI run builds a fresh tree.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(cache.NewMemoryCache(), nil, c.Logger)
}

// newRecordCache opens the fetched-record cache.
func newRecordCache(cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Output
// =============================================================================

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing, compressing by extension. An empty path
// or "-" writes to stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	w, err := xopen.Wopen(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutputFailed, err, "create %s", path)
	}
	return w, nil
}

// closeOutput closes w and records the error in err if none is set.
func closeOutput(w io.Closer, err *error) {
	if cerr := w.Close(); cerr != nil && *err == nil {
		*err = errors.Wrap(errors.ErrCodeOutputFailed, cerr, "close output")
	}
}

// writeFile writes data to path via openOutput.
func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return errors.Wrap(errors.ErrCodeOutputFailed, err, "write %s", path)
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeOutputFailed, err, "close %s", path)
	}
	return nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// basePath derives the base output path for multi-format output. If output
// is empty, the input path is used without its extension. A known format
// extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "" || input == "-" {
			return appName
		}
		base := strings.TrimSuffix(input, ".gz")
		if i := strings.LastIndexByte(base, '.'); i > strings.LastIndexByte(base, '/') {
			base = base[:i]
		}
		return base
	}
	for _, ext := range pipeline.Extensions {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// writeArtifacts writes rendered artifacts. A single format goes to output,
// stdout when output is empty; several formats go to base+extension files.
func writeArtifacts(ctx context.Context, artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	logger := loggerFromContext(ctx)
	if len(formats) == 1 {
		if err := writeFile(output, artifacts[formats[0]]); err != nil {
			return nil, err
		}
		if output == "" || output == "-" {
			return nil, nil
		}
		logger.Debugf("Generated %s", output)
		return []string{output}, nil
	}

	base := basePath(output, input)
	var paths []string
	for _, f := range formats {
		path := base + pipeline.Extensions[f]
		if err := writeFile(path, artifacts[f]); err != nil {
			return paths, err
		}
		logger.Debugf("Generated %s", path)
		paths = append(paths, path)
	}
	return paths, nil
}

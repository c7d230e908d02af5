package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxotree/pkg/cache"
	taxio "github.com/matzehuels/taxotree/pkg/io"
	"github.com/matzehuels/taxotree/pkg/observability"
	"github.com/matzehuels/taxotree/pkg/taxon"
)

// TTLArtifact is how long rendered artifacts stay cached.
const TTLArtifact = time.Hour

// Runner runs the pipeline and caches rendered artifacts.
//
// The Runner keeps no run state besides its cache, so one Runner may serve
// concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means the default one.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute builds the tree from report and renders it.
func (r *Runner) Execute(ctx context.Context, report io.Reader, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.Source)
	start := time.Now()
	tree, skipped, stats, err := Build(ctx, report, opts)
	stats.BuildTime = time.Since(start)
	hooks.OnBuildComplete(ctx, opts.Source, stats.Queries, stats.Nodes, stats.BuildTime, err)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("built tree",
		"rows", stats.Rows,
		"queries", stats.Queries,
		"nodes", stats.Nodes,
		"duration", stats.BuildTime)
	if len(skipped) > 0 {
		r.Logger.Warn("queries without taxonomy", "count", len(skipped))
	}

	h := taxio.NewHeader(opts.Source)
	start = time.Now()
	artifacts, err := r.Render(ctx, tree, h, opts)
	if err != nil {
		return nil, err
	}
	stats.RenderTime = time.Since(start)
	r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", stats.RenderTime)

	return &Result{
		Tree:      tree,
		Header:    h,
		Skipped:   skipped,
		Artifacts: artifacts,
		Stats:     stats,
	}, nil
}

// Render renders the requested formats of a tree, going through the
// cache. Artifacts are keyed by the run id of h, so trees loaded from the
// same dump share entries.
func (r *Runner) Render(ctx context.Context, t *taxon.Tree, h taxio.Header, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	out, err := r.render(ctx, t, h, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return out, err
}

func (r *Runner) render(ctx context.Context, t *taxon.Tree, h taxio.Header, opts Options) (map[string][]byte, error) {
	cacheHooks := observability.Cache()
	out := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		key := r.Keyer.ArtifactKey(h.RunID.String(), artifactVariant(f, opts))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, observability.KeyArtifact)
			r.Logger.Debug("artifact from cache", "format", f)
			out[f] = data
			continue
		}
		cacheHooks.OnCacheMiss(ctx, observability.KeyArtifact)
		data, err := Render(ctx, t, h, f, opts)
		if err != nil {
			return nil, err
		}
		if r.Cache.Set(ctx, key, data, TTLArtifact) == nil {
			cacheHooks.OnCacheSet(ctx, observability.KeyArtifact, len(data))
		}
		out[f] = data
	}
	return out, nil
}

// artifactVariant names a format together with the options that change
// its output.
func artifactVariant(format string, opts Options) string {
	switch format {
	case FormatText:
		return fmt.Sprintf("%s|queries=%t", format, opts.Queries)
	case FormatKronaXML, FormatKronaJSON, FormatKronaHTML:
		return fmt.Sprintf("%s|dataset=%s|url=%s", format, opts.Dataset, opts.KronaURL)
	case FormatDOT, FormatSVG:
		return fmt.Sprintf("%s|detailed=%t|min=%d", format, opts.Detailed, opts.MinCount)
	default:
		return format
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

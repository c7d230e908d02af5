package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxotree/pkg/buildinfo"
	"github.com/matzehuels/taxotree/pkg/cache"
	"github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/observability"
	"github.com/matzehuels/taxotree/pkg/record"
)

// DefaultURL is the EBI dbfetch endpoint.
const DefaultURL = "https://www.ebi.ac.uk/Tools/dbfetch/dbfetch"

// DefaultDBNames maps canonical database names to dbfetch names where
// they differ.
var DefaultDBNames = map[string]string{
	"uniprot": "uniprotkb",
	"genbank": "embl",
	"refseq":  "refseqn",
	"genpept": "refseqp",
}

// HTTPOptions configures an HTTP fetcher.
type HTTPOptions struct {
	URL      string
	MaxBatch int
	Timeout  time.Duration

	// DBNames overrides DefaultDBNames.
	DBNames map[string]string

	Client *http.Client
	Logger *log.Logger
}

// HTTP fetches entries from a dbfetch service.
type HTTP struct {
	url      string
	maxBatch int
	dbNames  map[string]string
	client   *http.Client
	logger   *log.Logger
}

// NewHTTP returns a dbfetch client.
func NewHTTP(opts HTTPOptions) *HTTP {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = DefaultMaxBatch
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.DBNames == nil {
		opts.DBNames = DefaultDBNames
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &HTTP{
		url:      opts.URL,
		maxBatch: opts.MaxBatch,
		dbNames:  opts.DBNames,
		client:   opts.Client,
		logger:   opts.Logger,
	}
}

// URL returns the service endpoint.
func (h *HTTP) URL() string { return h.url }

// Fetch sends one request per batch and database.
func (h *HTTP) Fetch(ctx context.Context, refs []record.Ref) (map[record.Ref][]byte, error) {
	out := make(map[record.Ref][]byte, len(refs))
	for _, batch := range Batches(refs, h.maxBatch) {
		var body []byte
		err := cache.RetryWithBackoff(ctx, func() error {
			var err error
			body, err = h.request(ctx, batch)
			return err
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "fetch %d %s entries", len(batch), batch[0].DB)
		}
		found := match(batch, body)
		h.logger.Debug("fetched batch", "db", batch[0].DB, "requested", len(batch), "found", len(found))
		for ref, e := range found {
			out[ref] = e
		}
	}
	return out, nil
}

func (h *HTTP) request(ctx context.Context, batch []record.Ref) ([]byte, error) {
	db := batch[0].DB
	if name, ok := h.dbNames[db]; ok {
		db = name
	}
	ids := make([]string, len(batch))
	for i, r := range batch {
		ids[i] = r.Accession
	}

	q := url.Values{}
	q.Set("db", db)
	q.Set("id", strings.Join(ids, ","))
	q.Set("format", "default")
	q.Set("style", "raw")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, strings.NewReader(q.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, cache.Retryable(fmt.Errorf("%w: %s", cache.ErrNetwork, resp.Status))
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("dbfetch: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

var _ Fetcher = (*HTTP)(nil)

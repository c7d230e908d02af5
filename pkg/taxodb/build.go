package taxodb

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shenwei356/breader"

	"github.com/matzehuels/taxotree/pkg/errors"
)

// BuildOptions controls how a TSV file is loaded.
type BuildOptions struct {
	// KeyColumn and ValueColumn are 1-based. Zero means 1 and 2.
	KeyColumn   int
	ValueColumn int

	// Threads and ChunkSize tune the parallel line parser.
	Threads   int
	ChunkSize int

	Logger *log.Logger
}

type entry struct{ key, value string }

// Build loads the key/value pairs of the TSV file at path into w and
// returns their number. Lines starting with '#' and lines with too few
// columns are skipped. Gzipped files are read transparently. When w
// supports batches, all puts run in one.
func Build(ctx context.Context, w Writer, path string, opts BuildOptions) (int, error) {
	if opts.KeyColumn == 0 {
		opts.KeyColumn = 1
	}
	if opts.ValueColumn == 0 {
		opts.ValueColumn = 2
	}
	if opts.Threads <= 0 {
		opts.Threads = 4
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if err := errors.ValidateColumn("key column", opts.KeyColumn); err != nil {
		return 0, err
	}
	if err := errors.ValidateColumn("value column", opts.ValueColumn); err != nil {
		return 0, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	need := max(opts.KeyColumn, opts.ValueColumn)
	parse := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' {
			return nil, false, nil
		}
		items := strings.Split(line, "\t")
		if len(items) < need {
			return nil, false, nil
		}
		key := strings.TrimSpace(items[opts.KeyColumn-1])
		if key == "" {
			return nil, false, nil
		}
		return entry{key: key, value: items[opts.ValueColumn-1]}, true, nil
	}

	reader, err := breader.NewBufferedReader(path, opts.Threads, opts.ChunkSize, parse)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}

	n := 0
	load := func() error {
		for chunk := range reader.Ch {
			if chunk.Err != nil {
				return errors.Wrap(errors.ErrCodeParseRow, chunk.Err, "read %s", path)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, data := range chunk.Data {
				e := data.(entry)
				if err := w.Put(ctx, e.key, e.value); err != nil {
					return err
				}
				n++
			}
			logger.Debug("loaded chunk", "entries", n)
		}
		return nil
	}

	if b, ok := w.(interface{ Batch(func() error) error }); ok {
		err = b.Batch(load)
	} else {
		err = load()
	}
	if err != nil {
		reader.Cancel()
		for range reader.Ch {
		}
		return n, err
	}
	return n, nil
}

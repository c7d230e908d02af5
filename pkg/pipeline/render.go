package pipeline

import (
	"bytes"
	"context"

	"github.com/matzehuels/taxotree/pkg/errors"
	taxio "github.com/matzehuels/taxotree/pkg/io"
	"github.com/matzehuels/taxotree/pkg/render/dendrogram"
	"github.com/matzehuels/taxotree/pkg/render/krona"
	"github.com/matzehuels/taxotree/pkg/render/nodelink"
	"github.com/matzehuels/taxotree/pkg/taxon"
)

// Render serializes the tree into one format.
func Render(ctx context.Context, t *taxon.Tree, h taxio.Header, format string, opts Options) ([]byte, error) {
	kopts := krona.Options{Dataset: opts.Dataset, KronaURL: opts.KronaURL}
	nopts := nodelink.Options{Detailed: opts.Detailed, MinCount: opts.MinCount}

	switch format {
	case FormatText:
		return dendrogram.Render(t.Root, dendrogram.Options{Queries: opts.Queries}), nil
	case FormatKronaXML:
		return krona.RenderXML(t.Root, kopts), nil
	case FormatKronaJSON:
		return krona.RenderJSON(t.Root, kopts)
	case FormatKronaHTML:
		return krona.RenderHTML(t.Root, kopts), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(t.Root, nopts)), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(t.Root, nopts))
	case FormatDump:
		var buf bytes.Buffer
		if err := taxio.WriteDump(&buf, t, h); err != nil {
			return nil, errors.Wrap(errors.ErrCodeOutputFailed, err, "write dump")
		}
		return buf.Bytes(), nil
	case FormatJSON:
		var buf bytes.Buffer
		if err := taxio.WriteJSON(t.Root, &buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeOutputFailed, err, "write json")
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.ValidateFormat(format, ValidFormats)
	}
}

// RenderAll renders every format of opts.Formats.
func RenderAll(ctx context.Context, t *taxon.Tree, h taxio.Header, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		data, err := Render(ctx, t, h, f, opts)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "render %s", f)
		}
		out[f] = data
	}
	return out, nil
}

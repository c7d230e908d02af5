package krona

import (
	"bytes"
	"fmt"
	"io"

	"github.com/matzehuels/taxotree/pkg/taxon"
)

// DefaultKronaURL hosts the Krona viewer script and images.
const DefaultKronaURL = "https://marbl.github.io/Krona"

const kronaScript = "src/krona-2.8.1.js"

// RenderHTML returns a standalone page that displays the tree with the
// Krona viewer. The XML document is embedded in a hidden div, where the
// viewer script looks for it.
func RenderHTML(root *taxon.Node, opts Options) []byte {
	base := opts.KronaURL
	if base == "" {
		base = DefaultKronaURL
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">
<head>
  <meta charset="utf-8"/>
  <link rel="shortcut icon" href="%[1]s/img/favicon.ico"/>
  <script id="notfound">window.onload=function(){document.body.innerHTML="Could not get resources from \"%[1]s\"."}</script>
  <script src="%[1]s/%[2]s"></script>
</head>
<body>
  <img id="hiddenImage" src="%[1]s/img/hidden.png" style="display:none"/>
  <img id="loadingImage" src="%[1]s/img/loading.gif" style="display:none"/>
  <noscript>Javascript must be enabled to view this page.</noscript>
  <div style="display:none">
`, xmlEscaper.Replace(base), kronaScript)
	writeXML(&buf, root, opts, 2)
	buf.WriteString("  </div>\n</body>\n</html>\n")
	return buf.Bytes()
}

// WriteHTML writes the Krona page to w.
func WriteHTML(w io.Writer, root *taxon.Node, opts Options) error {
	_, err := w.Write(RenderHTML(root, opts))
	return err
}

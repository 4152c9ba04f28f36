package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"epistack/app"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown writes the table as a pipe table. Row indentation is kept with
// non-breaking spaces.
func Markdown(w io.Writer, res *app.Result) error {
	_, err := w.Write(markdownTable(res))
	return err
}

// HTML renders the Markdown table to an HTML fragment
func HTML(w io.Writer, res *app.Result) error {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	_, err := w.Write(markdown.ToHTML(markdownTable(res), p, renderer))
	return err
}

func markdownTable(res *app.Result) []byte {
	var buf bytes.Buffer
	header := append([]string{""}, res.Columns...)
	writePipeRow(&buf, header)

	sep := make([]string, len(header))
	sep[0] = ":---"
	for i := 1; i < len(sep); i++ {
		sep[i] = "---:"
	}
	writePipeRow(&buf, sep)

	for _, row := range res.Rows {
		cells := append([]string{indent(row.Label)}, row.Cells...)
		writePipeRow(&buf, cells)
	}

	if len(res.Warnings) > 0 {
		buf.WriteString("\n")
		for _, warn := range res.Warnings {
			fmt.Fprintf(&buf, "- **%s**: %s\n", warn.Code, escapeCell(warn.Message))
		}
	}
	return buf.Bytes()
}

func writePipeRow(buf *bytes.Buffer, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = escapeCell(c)
	}
	buf.WriteString("| " + strings.Join(escaped, " | ") + " |\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "<", "&lt;")
	return s
}

// indent replaces leading spaces, which pipe tables trim
func indent(label string) string {
	trimmed := strings.TrimLeft(label, " ")
	return strings.Repeat("&nbsp;", len(label)-len(trimmed)) + trimmed
}

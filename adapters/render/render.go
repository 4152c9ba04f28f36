// Package render writes stacked tables as text, Markdown, HTML or JSON.
package render

import (
	"fmt"
	"io"
	"strings"

	"epistack/app"
)

// Format selects an output renderer
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts text, markdown (md), html and json
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Render writes res to w in the given format
func Render(w io.Writer, res *app.Result, format Format) error {
	switch format {
	case FormatMarkdown:
		return Markdown(w, res)
	case FormatHTML:
		return HTML(w, res)
	case FormatJSON:
		return JSON(w, res)
	default:
		return Text(w, res)
	}
}

// Text writes the aligned table followed by any warnings
func Text(w io.Writer, res *app.Result) error {
	if _, err := io.WriteString(w, res.String()); err != nil {
		return err
	}
	if len(res.Warnings) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("\nWarnings:\n")
	for _, warn := range res.Warnings {
		fmt.Fprintf(&sb, "  %s: %s\n", warn.Code, warn.Message)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

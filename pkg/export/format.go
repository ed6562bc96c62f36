package export

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Format is an export output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatSVG  Format = "svg"
	FormatHTML Format = "html"
	FormatDOT  Format = "dot"
	FormatPNG  Format = "png"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatSVG, FormatHTML, FormatDOT, FormatPNG}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unknown export format %q (want one of json, svg, html, dot, png)", s)
	}
	return f, nil
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatSVG:
		return "image/svg+xml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// Encode renders doc in format f. Only PNG needs ctx, for Graphviz.
func Encode(ctx context.Context, doc Document, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return EncodeJSON(doc)
	case FormatSVG:
		return RenderSVG(doc), nil
	case FormatHTML:
		return RenderHTML(doc, WithTitle(DefaultTitle))
	case FormatDOT:
		return []byte(ToDOT(doc)), nil
	case FormatPNG:
		return RenderPNG(ctx, doc)
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

// EncodeJSON returns the indented JSON form of doc.
func EncodeJSON(doc Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(b, '\n'), nil
}

// DecodeJSON parses a document produced by [EncodeJSON].
func DecodeJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Filename returns the default file name for an export taken at t, such as
// "canvas-20240102-150405.png".
func Filename(f Format, t time.Time) string {
	return fmt.Sprintf("canvas-%s.%s", t.UTC().Format("20060102-150405"), f)
}

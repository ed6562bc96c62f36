// Package pipeline runs the layout → compose → export flow with caching.
//
// The CLI and the HTTP server share this package so both cache and report
// the same way.
//
// # Stages
//
//  1. Layout: validate a description and compute positioned nodes and edges.
//     Results are cached by description hash and layout config.
//  2. Compose: merge the layout into a [canvas.Canvas].
//  3. Export: snapshot the scene and encode it in one or more formats.
//     Artifacts are cached by snapshot hash, format and title.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	c := canvas.New()
//	result, err := runner.Execute(ctx, c, desc, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/canvasflow/pkg/canvas"
	"github.com/matzehuels/canvasflow/pkg/export"
	"github.com/matzehuels/canvasflow/pkg/layout"
)

// DefaultFormat is exported when no format is requested.
const DefaultFormat = string(export.FormatSVG)

// Options configures a pipeline run.
type Options struct {
	// Config is the layout configuration. Zero spacings fall back to defaults.
	Config layout.Config `json:"config"`

	// Formats lists the export formats; see [export.Formats].
	Formats []string `json:"formats,omitempty"`

	// Title is the page title of HTML exports.
	Title string `json:"title,omitempty"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the laid-out description before merging.
	Layout layout.Result

	// Report describes the merge into the canvas.
	Report canvas.ApplyReport

	// SnapshotHash is the content hash of the exported document.
	SnapshotHash string

	// Artifacts contains encoded exports keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LayoutTime time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	LayoutHit bool // layout result came from cache
	ExportHit bool // every artifact came from cache
}

// ValidateFormats checks that every format is supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := export.ParseFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Config.Validate(); err != nil {
		return fmt.Errorf("layout config: %w", err)
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.Formats = slices.Clone(o.Formats)
	for i, f := range o.Formats {
		parsed, err := export.ParseFormat(f)
		if err != nil {
			return err
		}
		o.Formats[i] = string(parsed)
	}
	if o.Title == "" {
		o.Title = export.DefaultTitle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

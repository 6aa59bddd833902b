// Package pipeline provides the one-shot load → layout → render pipeline.
//
// The CLI render and snapshot commands and the HTTP export endpoint all go
// through this package, so a proof or model renders the same way from
// every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a proof trace, or a counterexample model plus mapper
//  2. Layout: Build the view and serialize its positioned graph
//  3. Render: Generate output in various formats (JSON, DOT, SVG)
//
// Layouts and artifacts are cached by content hash, so re-rendering an
// unchanged trace with the same options skips the layout and render work.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Kind:    graph.KindProof,
//	    Input:   "proof.xml",
//	    Magic:   true,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prooftower/pkg/cache"
	"github.com/matzehuels/prooftower/pkg/graph"
	"github.com/matzehuels/prooftower/pkg/layout"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidKinds is the set of supported input kinds.
var ValidKinds = map[string]bool{
	graph.KindProof: true,
	graph.KindModel: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Load options
	Kind   string `json:"kind"`
	Input  string `json:"input"`
	Mapper string `json:"mapper,omitempty"` // model only

	// Layout options
	Layout           layout.Options `json:"layout"`
	Magic            bool           `json:"magic,omitempty"`
	Focus            string         `json:"focus,omitempty"` // sub-proof node to focus on
	IgnoreVisibility bool           `json:"ignore_visibility,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// InputHash is the content hash of the input files.
	InputHash string

	// Layout is the serialized view.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateKind checks that an input kind is valid.
func ValidateKind(kind string) error {
	if !ValidKinds[kind] {
		return fmt.Errorf("invalid kind: %q (must be one of: proof, model)", kind)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Kind == "" {
		o.Kind = graph.KindProof
	}
	if err := ValidateKind(o.Kind); err != nil {
		return err
	}
	if o.Input == "" {
		return fmt.Errorf("input is required")
	}
	if o.Mapper != "" && o.Kind != graph.KindModel {
		return fmt.Errorf("mapper is only valid for models")
	}
	o.Layout = o.Layout.WithDefaults()
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// IsProof returns true if the input is a proof trace.
func (o *Options) IsProof() bool { return o.Kind == "" || o.Kind == graph.KindProof }

// IsModel returns true if the input is a counterexample model.
func (o *Options) IsModel() bool { return o.Kind == graph.KindModel }

// LayoutKeyOpts returns cache key options for proof layouts.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Mode:             string(o.Layout.Mode),
		Magic:            o.Magic,
		Focus:            o.Focus,
		AllowOverlap:     o.Layout.AllowOverlap,
		Compact:          o.Layout.Compact,
		DistancePriority: o.Layout.DistancePriority,
		BottomRoot:       o.Layout.BottomRoot,
		Width:            o.Layout.Width,
		Height:           o.Layout.Height,
	}
}

// SnapshotKeyOpts returns cache key options for model snapshots.
func (o *Options) SnapshotKeyOpts(mapperHash string) cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{
		MapperHash:       mapperHash,
		IgnoreVisibility: o.IgnoreVisibility,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	if o.Detailed {
		format += "+detailed"
	}
	return cache.ArtifactKeyOpts{Format: format}
}

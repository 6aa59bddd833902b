package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prooftower/pkg/graph"
	"github.com/matzehuels/prooftower/pkg/layout"
	"github.com/matzehuels/prooftower/pkg/pipeline"
)

// renderOpts holds the command-line flags shared by render and snapshot.
type renderOpts struct {
	output   string // output file path (or base path for multiple outputs)
	formats  string // comma-separated output formats
	detailed bool   // embed node metadata in the output
	noCache  bool   // bypass the cache entirely
	refresh  bool   // recompute and overwrite cached entries

	// proof only
	mode    string
	linear  bool
	magic   bool
	focus   string
	compact bool
	bottom  bool

	// model only
	mapper string
	ignore bool
}

// renderCommand creates the render command for proof traces.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [trace.xml]",
		Short: "Lay out a proof trace and write it as JSON, DOT or SVG",
		Long: `Lay out a proof trace as a tree and write the result.

The layout settings default to the [layout] and [magic] sections of the
config file; flags override them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.proofPipelineOptions(cmd, args[0], &opts)
			if err != nil {
				return err
			}
			return c.runPipeline(cmd.Context(), cmd.ErrOrStderr(), p, &opts)
		},
	}

	addOutputFlags(cmd, &opts)
	cmd.Flags().StringVar(&opts.mode, "mode", "", "layout mode: tree (default), linear")
	cmd.Flags().BoolVar(&opts.linear, "linear", false, "shorthand for --mode linear")
	cmd.Flags().BoolVar(&opts.magic, "magic", false, "condense the proof into a magic-box view")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "lay out only the sub-proof below this node")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "pack subtrees more tightly")
	cmd.Flags().BoolVar(&opts.bottom, "bottom-root", false, "put the conclusion at the bottom")
	_ = cmd.RegisterFlagCompletionFunc("mode", cobra.FixedCompletions(
		[]string{string(layout.ModeTree), string(layout.ModeLinear)}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// snapshotCommand creates the snapshot command for counterexample models.
func (c *CLI) snapshotCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "snapshot [model.xml]",
		Short: "Project a counterexample model into a graph and write it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := pipeline.Options{
				Kind:             graph.KindModel,
				Input:            args[0],
				Mapper:           opts.mapper,
				IgnoreVisibility: opts.ignore,
				Formats:          parseFormats(opts.formats),
				Detailed:         opts.detailed,
				Refresh:          opts.refresh,
			}
			return c.runPipeline(cmd.Context(), cmd.ErrOrStderr(), p, &opts)
		},
	}

	addOutputFlags(cmd, &opts)
	cmd.Flags().StringVar(&opts.mapper, "mapper", "", "concept-to-representative mapper file (JSON)")
	cmd.Flags().BoolVar(&opts.ignore, "ignore-visibility", false, "show nodes the model marks as hidden")

	return cmd
}

func addOutputFlags(cmd *cobra.Command, opts *renderOpts) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node metadata in the output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatDOT}, cobra.ShellCompDirectiveNoFileComp))
}

// proofPipelineOptions merges the config file with the flags that were set.
func (c *CLI) proofPipelineOptions(cmd *cobra.Command, input string, opts *renderOpts) (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	p := pipeline.Options{
		Kind:     graph.KindProof,
		Input:    input,
		Layout:   cfg.LayoutOptions(),
		Magic:    cfg.Magic.Enabled,
		Focus:    opts.focus,
		Formats:  parseFormats(opts.formats),
		Detailed: opts.detailed,
		Refresh:  opts.refresh,
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		mode, err := layout.ParseMode(opts.mode)
		if err != nil {
			return p, err
		}
		p.Layout.Mode = mode
	}
	if opts.linear {
		p.Layout.Mode = layout.ModeLinear
	}
	if flags.Changed("magic") {
		p.Magic = opts.magic
	}
	if flags.Changed("compact") {
		p.Layout.Compact = opts.compact
	}
	if flags.Changed("bottom-root") {
		p.Layout.BottomRoot = opts.bottom
	}
	return p, nil
}

// runPipeline executes p and writes one file per format.
func (c *CLI) runPipeline(ctx context.Context, status io.Writer, p pipeline.Options, opts *renderOpts) error {
	if err := pipeline.ValidateFormats(p.Formats); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spin := startSpinner(ctx, status, fmt.Sprintf("Laying out %s...", filepath.Base(p.Input)))
	result, err := runner.Execute(ctx, p)
	if err != nil {
		if spin.Interrupted() {
			spin.Stop()
			return err
		}
		spin.Fail(fmt.Sprintf("Failed to render %s", p.Input))
		return err
	}

	paths := outputPaths(opts.output, p.Input, p.Formats)
	spin.Set(fmt.Sprintf("Writing %s...", strings.Join(p.Formats, ", ")))
	for _, format := range p.Formats {
		if err := os.WriteFile(paths[format], result.Artifacts[format], 0o644); err != nil {
			spin.Stop()
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}
	spin.Stop()
	prog.done(fmt.Sprintf("Rendered %s", filepath.Base(p.Input)))

	printSuccess("Rendered %s", p.Input)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	for _, format := range p.Formats {
		printFile(paths[format])
	}
	return nil
}

// outputPaths maps each format to the file it is written to. A single
// format with an explicit output goes exactly there; otherwise the format
// becomes the extension of the base path.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = fmt.Sprintf("%s.%s", base, f)
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension, it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

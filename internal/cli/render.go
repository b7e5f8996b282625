package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkoester/pinset/pkg/graph"
	"github.com/tkoester/pinset/pkg/manifest"
	"github.com/tkoester/pinset/pkg/resolve"
)

const (
	formatSVG = "svg"
	formatPNG = "png"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	treeOpts
	output   string // output file path (derived from input if empty)
	format   string // output format: svg, png or dot
	detailed bool   // include summary/license metadata in node labels
}

// newRenderCmd creates the render command.
//
// Render resolves the manifest's dependency graph and draws it with
// Graphviz. DOT output skips Graphviz and emits the graph source.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{
		format:   formatSVG,
		treeOpts: treeOpts{maxDepth: resolve.DefaultMaxDepth, maxNodes: resolve.DefaultMaxNodes},
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render the dependency graph as SVG, PNG or DOT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			m, err := loadManifest(args)
			if err != nil {
				return err
			}
			return runRenderCmd(cmd.Context(), m, manifestArg(args), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (derived from the manifest name if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include summary and license in node labels")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "maximum dependency depth")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "maximum nodes to fetch")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the HTTP cache")
	return cmd
}

func validateFormat(f string) error {
	switch f {
	case formatSVG, formatPNG, formatDOT:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be 'svg', 'png', or 'dot')", f)
}

func runRenderCmd(ctx context.Context, m *manifest.Manifest, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	g, err := resolveGraph(ctx, m, &opts.treeOpts)
	if err != nil {
		return err
	}

	dot := graph.ToDOT(g, graph.DOTOptions{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, err = graph.RenderSVG(ctx, dot)
	case formatPNG:
		data, err = graph.RenderPNG(ctx, dot)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.format, err)
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}

	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	printSuccess("Rendered dependency graph")
	printFile(path)
	return nil
}

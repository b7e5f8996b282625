package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkoester/pinset/pkg/graph"
	"github.com/tkoester/pinset/pkg/manifest"
	"github.com/tkoester/pinset/pkg/resolve"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	maxDepth int  // maximum dependency tree depth
	maxNodes int  // maximum total nodes to fetch
	refresh  bool // bypass HTTP cache
	noCache  bool // disable caching entirely
	check    bool // compare against the manifest's indented listings
}

// newTreeCmd creates the tree command.
//
// Tree resolves the full transitive dependency graph of the manifest
// from the registry and prints it. With --check, the resolved graph is
// compared against the manifest's indented informational entries and
// drifted listings fail the command.
func newTreeCmd() *cobra.Command {
	opts := treeOpts{maxDepth: resolve.DefaultMaxDepth, maxNodes: resolve.DefaultMaxNodes}

	cmd := &cobra.Command{
		Use:   "tree [file]",
		Short: "Resolve and print the transitive dependency tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(args)
			if err != nil {
				return err
			}
			return runTree(cmd.Context(), m, &opts)
		},
	}

	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "maximum dependency depth")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "maximum nodes to fetch")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the HTTP cache")
	cmd.Flags().BoolVar(&opts.check, "check", false, "verify the manifest's indented listings against the resolved graph")
	return cmd
}

func runTree(ctx context.Context, m *manifest.Manifest, opts *treeOpts) error {
	g, err := resolveGraph(ctx, m, opts)
	if err != nil {
		return err
	}

	if opts.check {
		return checkListings(m, g)
	}

	printTree(g)
	return nil
}

// resolveGraph crawls the registry for the manifest's dependency graph.
func resolveGraph(ctx context.Context, m *manifest.Manifest, opts *treeOpts) (*graph.Graph, error) {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	client := newPyPIClient(cfg, newCacheBackend(ctx, cfg, opts.noCache))

	spin := newSpinner(ctx, fmt.Sprintf("Resolving dependencies of %d pins", len(m.Pins)))
	spin.Start()
	defer spin.Stop()

	prog := newProgress(logger)
	g, err := resolve.NewResolver(resolve.NewPyPIFetcher(client)).Resolve(ctx, m, resolve.Options{
		MaxDepth: opts.maxDepth,
		MaxNodes: opts.maxNodes,
		Refresh:  opts.refresh,
		Logger:   func(msg string, args ...any) { logger.Warnf(msg, args...) },
	})
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Resolved %d packages with %d dependencies", g.NodeCount(), g.EdgeCount()))
	return g, nil
}

// printTree prints the graph as an indented tree rooted at the manifest.
func printTree(g *graph.Graph) {
	g.Walk(graph.RootID, func(n *graph.Node, depth int) {
		if n.IsRoot() {
			return
		}
		label := n.ID
		if n.Version != "" {
			label = n.ID + "==" + n.Version
		}
		indent := strings.Repeat("    ", depth-1)
		if depth == 1 {
			fmt.Println(indent + StyleValue.Render(label))
		} else {
			fmt.Println(indent + StyleDim.Render(label))
		}
	})
}

// checkListings compares the manifest's informational entries with the
// resolved graph.
func checkListings(m *manifest.Manifest, g *graph.Graph) error {
	report := resolve.Check(m, g)

	drifted := 0
	for _, e := range report.Entries {
		if len(e.Undocumented) == 0 && len(e.Stale) == 0 {
			continue
		}
		drifted++
		for _, name := range e.Undocumented {
			printError("%s: resolved dependency %s is not listed in the manifest", e.Package, name)
		}
		for _, name := range e.Stale {
			printWarning("%s: listed entry %s is no longer a dependency", e.Package, name)
		}
	}

	if drifted == 0 {
		printSuccess("Indented listings match the resolved graph")
		return nil
	}
	return fmt.Errorf("listings for %d pins have drifted", drifted)
}

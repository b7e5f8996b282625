package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkoester/pinset/pkg/manifest"
)

// bumpOpts holds the command-line flags for the bump command.
type bumpOpts struct {
	file    string // manifest path
	version string // target version (latest if empty)
	note    string // comment recorded above the rewritten pin
	refresh bool
	dryRun  bool
}

// newBumpCmd creates the bump command.
//
// Bump rewrites one pin to a newer version and records a dated note
// above it, the way manifests document why a pin moved. Without a
// package argument it opens an interactive picker listing the pins that
// are behind their latest release.
func newBumpCmd() *cobra.Command {
	opts := bumpOpts{}

	cmd := &cobra.Command{
		Use:   "bump [package]",
		Short: "Rewrite a pin to a newer version",
		Long: `Rewrite a pin to a newer version and record a dated note above it.

Without arguments, bump fetches the latest releases and opens an
interactive picker over the pins that are behind.

Examples:
  pinset bump requests                          # bump to the latest release
  pinset bump requests --version 2.21.0         # bump to an explicit version
  pinset bump requests --note "CVE-2018-18074"  # cite the advisory driving the bump
  pinset bump                                   # pick interactively`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.ParseFile(opts.file)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return runBumpPicker(cmd.Context(), m, &opts)
			}
			return runBump(cmd.Context(), m, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", defaultManifest, "manifest to rewrite")
	cmd.Flags().StringVar(&opts.version, "version", "", "target version (latest release if empty)")
	cmd.Flags().StringVar(&opts.note, "note", "", "extra note recorded above the pin")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the change without writing the file")
	return cmd
}

func runBump(ctx context.Context, m *manifest.Manifest, name string, opts *bumpOpts) error {
	pin, ok := m.Lookup(name)
	if !ok {
		return fmt.Errorf("no pin for %s in %s", name, opts.file)
	}

	target := opts.version
	if target == "" {
		cfg := configFromContext(ctx)
		client := newPyPIClient(cfg, newCacheBackend(ctx, cfg, false))
		info, err := client.FetchPackage(ctx, pin.Name, opts.refresh)
		if err != nil {
			return fmt.Errorf("fetch latest for %s: %w", pin.Name, err)
		}
		target = info.Version
	}

	if target == pin.Version {
		printInfo("%s already pinned at %s", pin.Name, target)
		return nil
	}

	return applyBump(m, pin, target, opts)
}

// applyBump rewrites the pin and persists the manifest.
func applyBump(m *manifest.Manifest, pin *manifest.Pin, target string, opts *bumpOpts) error {
	old := pin.Version

	note := fmt.Sprintf("%s: %s -> %s (%s)", pin.Name, old, target, today())
	if opts.note != "" {
		note = fmt.Sprintf("%s: %s -> %s, %s (%s)", pin.Name, old, target, opts.note, today())
	}

	if !m.SetPinVersion(pin.Name, target, note) {
		return fmt.Errorf("no pin for %s in %s", pin.Name, opts.file)
	}

	if opts.dryRun {
		printInfo("Would bump %s from %s to %s", pin.Name, old, target)
		printDetail("note: %s", note)
		return nil
	}

	if err := m.WriteFile(opts.file); err != nil {
		return fmt.Errorf("write %s: %w", opts.file, err)
	}

	printSuccess("Bumped %s from %s to %s", pin.Name, old, target)
	printFile(opts.file)
	return nil
}

// runBumpPicker lists the pins behind their latest release and bumps the
// one the user picks.
func runBumpPicker(ctx context.Context, m *manifest.Manifest, opts *bumpOpts) error {
	cfg := configFromContext(ctx)

	behind, err := outdatedPins(ctx, cfg, m, opts.refresh)
	if err != nil {
		return err
	}
	if len(behind) == 0 {
		printSuccess("All pins are at the latest release")
		return nil
	}

	choice, err := pickPin(behind)
	if err != nil {
		return err
	}
	if choice == nil {
		printInfo("Nothing selected")
		return nil
	}

	return applyBump(m, choice.Pin, choice.Latest, opts)
}

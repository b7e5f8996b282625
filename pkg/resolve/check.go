package resolve

import (
	"sort"

	"github.com/tkoester/pinset/pkg/graph"
	"github.com/tkoester/pinset/pkg/manifest"
)

// CheckEntry records how one pin's indented informational entries
// compare against the resolved dependency graph.
type CheckEntry struct {
	Package      string   // normalized top-level pin name
	Undocumented []string // resolved dependencies not listed under the pin
	Stale        []string // listed entries the resolver no longer reaches
}

// CheckReport is the result of comparing a manifest's transitive
// listings against a resolved graph.
type CheckReport struct {
	Entries []CheckEntry
}

// Ok reports whether every listing matches the resolved graph.
func (r *CheckReport) Ok() bool {
	for _, e := range r.Entries {
		if len(e.Undocumented) > 0 || len(e.Stale) > 0 {
			return false
		}
	}
	return true
}

// Check compares the informational transitive entries under each
// top-level pin with what the resolver actually reached from that pin.
// Dependencies that are themselves top-level pins are not expected in
// the listing; they are already documented by their own pin line.
func Check(m *manifest.Manifest, g *graph.Graph) *CheckReport {
	declared := m.TransitiveNames()

	pinned := make(map[string]bool, len(m.Pins))
	for _, p := range m.Pins {
		pinned[p.Key()] = true
	}

	report := &CheckReport{}
	for _, p := range m.Pins {
		key := p.Key()
		listed := make(map[string]bool, len(declared[key]))
		for _, name := range declared[key] {
			listed[name] = true
		}

		var entry CheckEntry
		entry.Package = key

		reached := make(map[string]bool)
		for _, dep := range g.Reachable(key) {
			reached[dep] = true
			if !listed[dep] && !pinned[dep] {
				entry.Undocumented = append(entry.Undocumented, dep)
			}
		}
		for _, name := range declared[key] {
			if !reached[name] {
				entry.Stale = append(entry.Stale, name)
			}
		}

		sort.Strings(entry.Undocumented)
		sort.Strings(entry.Stale)
		report.Entries = append(report.Entries, entry)
	}
	return report
}

// Package manifest parses, validates and rewrites pinned requirements
// manifests.
//
// A manifest is the flat, human-maintained file consumed by deployment
// platforms: one `name==version` pin per line, `#` comment lines
// (typically citing the security advisory that forced a version bump),
// and optionally indented lines documenting the transitive dependencies a
// top-level pin drags in. The indentation is documentation, not
// machine-enforced nesting, so parsing is lenient: malformed lines are
// collected for linting instead of aborting the parse.
package manifest

import (
	"strings"

	"github.com/tkoester/pinset/pkg/integrations"
)

// Pin is one pinned package: an exact name/version pair plus the comments
// that travel with it.
type Pin struct {
	Name    string // package name as written (e.g. "Flask")
	Version string // exact version (e.g. "1.0.2")
	Comment string // trailing same-line comment, "#" stripped
	Notes   []string // full-line comments immediately above the pin, "#" stripped
	Line    int    // 1-based line number in the source file

	// Transitive holds the indented informational entries nested under
	// this pin. Entries may nest further (deeper indentation).
	Transitive []*Pin

	depth int // indentation level at parse time; 0 for top-level
}

// Key returns the PEP 503 normalized package name, used for duplicate
// detection and registry lookups.
func (p *Pin) Key() string { return integrations.NormalizePkgName(p.Name) }

// Spec returns the pin in requirement syntax, e.g. "Flask==1.0.2".
func (p *Pin) Spec() string { return p.Name + "==" + p.Version }

// AllComments returns the pin's notes plus its trailing comment, the
// full text an advisory citation could hide in.
func (p *Pin) AllComments() []string {
	out := make([]string, 0, len(p.Notes)+1)
	out = append(out, p.Notes...)
	if p.Comment != "" {
		out = append(out, p.Comment)
	}
	return out
}

// MalformedLine is a non-comment, non-blank line that does not match the
// `name==version` shape. The parser records it and moves on; the
// pin-shape lint rule turns it into a finding.
type MalformedLine struct {
	Line   int    // 1-based line number
	Text   string // the offending line, trimmed
	Reason string // why it was rejected
}

// CommentBlock is a comment block that does not attach to any pin: it was
// terminated by a blank line, or trails at the end of the file. The block
// keeps its position relative to the top-level pins so rewrites preserve it.
type CommentBlock struct {
	After int      // index into Pins of the preceding top-level pin
	Lines []string // comment lines, "#" stripped
}

// Manifest is a parsed pin list.
type Manifest struct {
	Path      string          // source path, empty when parsed from a reader
	Header    []string        // leading comment block not attached to any pin, "#" stripped
	Pins      []*Pin          // top-level pins in file order
	Detached  []CommentBlock  // comment blocks between or after pins
	Malformed []MalformedLine // lines that failed to parse
}

// Lookup returns the top-level pin for the given package name, matched
// after PEP 503 normalization.
func (m *Manifest) Lookup(name string) (*Pin, bool) {
	key := integrations.NormalizePkgName(name)
	for _, p := range m.Pins {
		if p.Key() == key {
			return p, true
		}
	}
	return nil, false
}

// Flatten returns all pins, top-level and transitive, in file order.
func (m *Manifest) Flatten() []*Pin {
	var out []*Pin
	var walk func(ps []*Pin)
	walk = func(ps []*Pin) {
		for _, p := range ps {
			out = append(out, p)
			walk(p.Transitive)
		}
	}
	walk(m.Pins)
	return out
}

// TransitiveNames returns the normalized names of every informational
// transitive entry, keyed by the top-level pin they are listed under.
func (m *Manifest) TransitiveNames() map[string][]string {
	out := make(map[string][]string)
	for _, p := range m.Pins {
		var names []string
		var walk func(ps []*Pin)
		walk = func(ps []*Pin) {
			for _, t := range ps {
				names = append(names, t.Key())
				walk(t.Transitive)
			}
		}
		walk(p.Transitive)
		out[p.Key()] = names
	}
	return out
}

// stripComment removes the leading "#" and surrounding space from a
// comment line.
func stripComment(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
}

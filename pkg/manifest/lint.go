package manifest

import (
	"fmt"

	"github.com/tkoester/pinset/pkg/errors"
	"github.com/tkoester/pinset/pkg/pep440"
)

// Severity classifies a lint finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule identifiers for lint findings.
const (
	RulePinShape      = "pin-shape"      // line must match name==version
	RulePackageName   = "package-name"   // name must be a valid PEP 508 name
	RuleVersionSyntax = "version-syntax" // version must be a valid release identifier
	RuleDuplicatePin  = "duplicate-pin"  // one name, one version
)

// Finding is a single lint result.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line,omitempty"`
	Package  string   `json:"package,omitempty"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%d: %s [%s]", f.Line, f.Message, f.Rule)
	}
	return fmt.Sprintf("%s [%s]", f.Message, f.Rule)
}

// LintReport aggregates lint findings for one manifest.
type LintReport struct {
	Path     string    `json:"path,omitempty"`
	Findings []Finding `json:"findings"`
	Errors   int       `json:"errors"`
	Warnings int       `json:"warnings"`
}

// Ok reports whether the manifest passed without errors (warnings are
// tolerated).
func (r *LintReport) Ok() bool { return r.Errors == 0 }

func (r *LintReport) add(f Finding) {
	r.Findings = append(r.Findings, f)
	switch f.Severity {
	case SeverityError:
		r.Errors++
	case SeverityWarning:
		r.Warnings++
	}
}

// Lint checks the structural properties every pin list must hold:
//
//   - every non-comment, non-blank line has the name==version shape
//   - package names are valid PEP 508 names
//   - versions parse as release identifiers
//   - no top-level package is pinned at two different versions
//
// Transitive (indented) entries get the same shape checks but duplicate
// detection applies to top-level pins only: the indented block is
// documentation and routinely repeats shared dependencies.
func (m *Manifest) Lint() *LintReport {
	report := &LintReport{Path: m.Path}

	for _, bad := range m.Malformed {
		report.add(Finding{
			Rule:     RulePinShape,
			Severity: SeverityError,
			Line:     bad.Line,
			Message:  fmt.Sprintf("malformed line %q: %s", bad.Text, bad.Reason),
		})
	}

	for _, p := range m.Flatten() {
		if err := errors.ValidatePythonPackageName(p.Name); err != nil {
			report.add(Finding{
				Rule:     RulePackageName,
				Severity: SeverityError,
				Line:     p.Line,
				Package:  p.Name,
				Message:  errors.UserMessage(err),
			})
		}
		if !pep440.Valid(p.Version) {
			report.add(Finding{
				Rule:     RuleVersionSyntax,
				Severity: SeverityError,
				Line:     p.Line,
				Package:  p.Name,
				Message:  fmt.Sprintf("version %q is not a valid release identifier", p.Version),
			})
		}
	}

	m.lintDuplicates(report)
	return report
}

func (m *Manifest) lintDuplicates(report *LintReport) {
	seen := make(map[string]*Pin)
	for _, p := range m.Pins {
		prev, dup := seen[p.Key()]
		if !dup {
			seen[p.Key()] = p
			continue
		}
		if prev.Version != p.Version {
			report.add(Finding{
				Rule:     RuleDuplicatePin,
				Severity: SeverityError,
				Line:     p.Line,
				Package:  p.Name,
				Message: fmt.Sprintf("%s pinned at both %s (line %d) and %s",
					p.Name, prev.Version, prev.Line, p.Version),
			})
		} else {
			report.add(Finding{
				Rule:     RuleDuplicatePin,
				Severity: SeverityWarning,
				Line:     p.Line,
				Package:  p.Name,
				Message:  fmt.Sprintf("%s==%s pinned twice (first at line %d)", p.Name, p.Version, prev.Line),
			})
		}
	}
}

// Package audit checks the pins of a manifest against live
// vulnerability data from OSV.dev.
//
// An audit has two angles. First, every pin is queried for known
// vulnerabilities affecting its exact version. Second, the advisory
// identifiers already cited in manifest comments are lined up against
// the live data: a citation normally documents a fix ("CVE-2018-18074
// fixed in 2.20.0"), so a cited advisory that still affects the pinned
// version means the bump never happened or regressed.
package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tkoester/pinset/pkg/advisory"
	"github.com/tkoester/pinset/pkg/integrations/osv"
	"github.com/tkoester/pinset/pkg/manifest"
)

// Severity classifies an audit finding.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityInfo  Severity = "info"
)

// Finding kinds.
const (
	KindVulnerable  = "vulnerable"   // pinned version has a known vulnerability
	KindCitedActive = "cited-active" // a cited advisory still affects the pin
	KindCitedFixed  = "cited-fixed"  // a cited advisory no longer applies
)

// Finding is one audit result for a pin.
type Finding struct {
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Package  string   `json:"package"`           // normalized pin name
	Version  string   `json:"version"`           // pinned version
	Line     int      `json:"line,omitempty"`    // manifest line of the pin
	IDs      []string `json:"ids"`               // advisory identifiers
	Summary  string   `json:"summary,omitempty"` // advisory one-liner, where known
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s==%s: %s (%s)",
		f.Severity, f.Package, f.Version, f.Kind, strings.Join(f.IDs, ", "))
}

// Report is the result of auditing one manifest.
type Report struct {
	ID        string    `json:"id"` // unique report identifier
	Path      string    `json:"path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Findings  []Finding `json:"findings"`
	Pins      int       `json:"pins"`   // pins queried
	Errors    int       `json:"errors"` // error-severity findings
}

// Ok reports whether the audit found no error-severity findings.
func (r *Report) Ok() bool { return r.Errors == 0 }

// Vulnerabilities returns the error-severity findings.
func (r *Report) Vulnerabilities() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Querier is the OSV lookup the auditor depends on.
type Querier interface {
	Query(ctx context.Context, pkg, version string, refresh bool) ([]osv.Vulnerability, error)
}

// Auditor audits manifests against an OSV-compatible vulnerability source.
type Auditor struct {
	osv Querier
}

// New creates an Auditor backed by the given vulnerability source.
func New(querier Querier) *Auditor {
	return &Auditor{osv: querier}
}

// Audit queries every top-level pin and cross-references cited
// advisories. A query failure aborts the audit; partial reports would
// hide vulnerable pins.
func (a *Auditor) Audit(ctx context.Context, m *manifest.Manifest, refresh bool) (*Report, error) {
	report := &Report{
		ID:        uuid.NewString(),
		Path:      m.Path,
		CreatedAt: time.Now().UTC(),
		Pins:      len(m.Pins),
	}

	cited := advisory.ByPackage(advisory.FromManifest(m))

	for _, p := range m.Pins {
		vulns, err := a.osv.Query(ctx, p.Name, p.Version, refresh)
		if err != nil {
			return nil, fmt.Errorf("audit %s: %w", p.Spec(), err)
		}
		a.examine(report, p, vulns, cited[p.Key()])
	}

	report.Errors = len(report.Vulnerabilities())
	return report, nil
}

// examine turns the OSV response for one pin into findings.
func (a *Auditor) examine(report *Report, p *manifest.Pin, vulns []osv.Vulnerability, refs []advisory.Reference) {
	citedActive := make(map[string]bool)

	for i := range vulns {
		v := &vulns[i]
		f := Finding{
			Kind:     KindVulnerable,
			Severity: SeverityError,
			Package:  p.Key(),
			Version:  p.Version,
			Line:     p.Line,
			IDs:      v.IDs(),
			Summary:  v.Summary,
		}
		for _, ref := range refs {
			if v.Matches(ref.ID) {
				f.Kind = KindCitedActive
				citedActive[ref.ID] = true
			}
		}
		report.Findings = append(report.Findings, f)
	}

	// Citations not matched by any live vulnerability document past
	// fixes; record them so the report shows the pin's history held up.
	var fixed []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		if !citedActive[ref.ID] && !seen[ref.ID] {
			seen[ref.ID] = true
			fixed = append(fixed, ref.ID)
		}
	}
	if len(fixed) > 0 {
		sort.Strings(fixed)
		report.Findings = append(report.Findings, Finding{
			Kind:     KindCitedFixed,
			Severity: SeverityInfo,
			Package:  p.Key(),
			Version:  p.Version,
			Line:     p.Line,
			IDs:      fixed,
		})
	}
}

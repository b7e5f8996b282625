// Package advisory extracts and models security advisory references.
//
// Pinned manifests carry their security history in comments: a pin gets
// bumped and the line above it cites the CVE that forced the bump. This
// package recognizes those citations (CVE, GHSA and PYSEC identifiers)
// so the audit can line them up against live vulnerability data.
package advisory

import (
	"regexp"
	"strings"

	"github.com/tkoester/pinset/pkg/manifest"
)

// idRE matches the advisory identifier formats that appear in manifest
// comments. GHSA slugs are four dash-separated base62 groups.
var idRE = regexp.MustCompile(
	`\b(CVE-\d{4}-\d{4,}|PYSEC-\d{4}-\d+|GHSA(?:-[23456789cfghjmpqrvwx]{4}){3})\b`)

// Reference is one advisory citation found in a manifest comment.
type Reference struct {
	ID      string `json:"id"`      // normalized identifier (upper-case except GHSA slug)
	Package string `json:"package"` // normalized name of the pin the comment belongs to
	Line    int    `json:"line"`    // line number of the cited pin
	Comment string `json:"comment"` // the comment the id was found in
}

// ExtractIDs returns all advisory identifiers in the given text, in
// order of appearance, deduplicated and normalized.
func ExtractIDs(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range idRE.FindAllString(text, -1) {
		id := Normalize(m)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Normalize canonicalizes an advisory identifier: the prefix and CVE/PYSEC
// body are upper-cased, GHSA slug characters stay lower-case.
func Normalize(id string) string {
	upper := strings.ToUpper(id)
	if strings.HasPrefix(upper, "GHSA-") {
		return "GHSA-" + strings.ToLower(id[len("GHSA-"):])
	}
	return upper
}

// FromManifest collects every advisory citation in the manifest's
// comments, attributed to the pin each comment belongs to. The file
// header is scanned too, attributed to no package.
func FromManifest(m *manifest.Manifest) []Reference {
	var refs []Reference

	for _, h := range m.Header {
		for _, id := range ExtractIDs(h) {
			refs = append(refs, Reference{ID: id, Comment: h})
		}
	}

	for _, p := range m.Flatten() {
		for _, comment := range p.AllComments() {
			for _, id := range ExtractIDs(comment) {
				refs = append(refs, Reference{
					ID:      id,
					Package: p.Key(),
					Line:    p.Line,
					Comment: comment,
				})
			}
		}
	}
	return refs
}

// ByPackage groups references by normalized package name. Header-level
// citations (no package) are omitted.
func ByPackage(refs []Reference) map[string][]Reference {
	out := make(map[string][]Reference)
	for _, r := range refs {
		if r.Package == "" {
			continue
		}
		out[r.Package] = append(out[r.Package], r)
	}
	return out
}

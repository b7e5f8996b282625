// Package pep440 parses and compares exact Python package versions.
//
// It covers the subset of PEP 440 that appears in pinned manifests:
// an optional epoch, a dotted release segment, and optional pre-release,
// post-release and dev-release suffixes. Version ranges and local
// version labels are out of scope; a pin names exactly one release.
package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var versionRE = regexp.MustCompile(
	`^(?:(\d+)!)?` + // epoch
		`(\d+(?:\.\d+)*)` + // release
		`(?:[._-]?(a|alpha|b|beta|c|rc|pre|preview)[._-]?(\d*))?` + // pre
		`(?:[._-]?post[._-]?(\d*)|-(\d+))?` + // post
		`(?:[._-]?dev[._-]?(\d*))?$`, // dev
)

// Version is a parsed exact version. Compare it with [Version.Compare];
// the struct fields carry the normalized segments.
type Version struct {
	Epoch   int
	Release []int
	Pre     string // normalized pre label ("a", "b", "rc"), empty if final
	PreNum  int
	Post    int // -1 if absent
	Dev     int // -1 if absent

	original string
}

// Parse parses an exact PEP 440 version string. Whitespace is trimmed
// and the comparison is case-insensitive, matching pip's behavior.
func Parse(s string) (Version, error) {
	original := s
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "v")

	m := versionRE.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("invalid version %q", original)
	}

	v := Version{
		Epoch:    atoiDefault(m[1], 0),
		Post:     -1,
		Dev:      -1,
		original: original,
	}

	for _, part := range strings.Split(m[2], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q", original)
		}
		v.Release = append(v.Release, n)
	}

	if m[3] != "" {
		v.Pre = normalizePreLabel(m[3])
		v.PreNum = atoiDefault(m[4], 0)
	}
	if m[5] != "" {
		v.Post = atoiDefault(m[5], 0)
	} else if m[6] != "" {
		// "1.0-1" is an implicit post release.
		v.Post = atoiDefault(m[6], 0)
	} else if strings.Contains(s, "post") {
		// bare ".post" with no number
		v.Post = 0
	}
	if m[7] != "" || strings.HasSuffix(s, "dev") {
		v.Dev = atoiDefault(m[7], 0)
	}

	return v, nil
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Valid reports whether s is a well-formed exact version.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Original returns the string the version was parsed from.
func (v Version) Original() string { return v.original }

// String returns the canonical form, e.g. "1.0.2", "2.0rc1", "1!1.0.post1".
func (v Version) String() string {
	var b strings.Builder
	if v.Epoch > 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}
	for i, n := range v.Release {
		if i > 0 {
			b.WriteByte('.')
		}
		fmt.Fprintf(&b, "%d", n)
	}
	if v.Pre != "" {
		fmt.Fprintf(&b, "%s%d", v.Pre, v.PreNum)
	}
	if v.Post >= 0 {
		fmt.Fprintf(&b, ".post%d", v.Post)
	}
	if v.Dev >= 0 {
		fmt.Fprintf(&b, ".dev%d", v.Dev)
	}
	return b.String()
}

// IsPrerelease reports whether the version has a pre or dev segment.
func (v Version) IsPrerelease() bool { return v.Pre != "" || v.Dev >= 0 }

// Compare returns -1, 0 or 1 ordering v against o per PEP 440:
// epoch first, then release (shorter segments padded with zeros),
// then dev < pre < final < post.
func (v Version) Compare(o Version) int {
	if v.Epoch != o.Epoch {
		return cmpInt(v.Epoch, o.Epoch)
	}

	n := max(len(v.Release), len(o.Release))
	for i := range n {
		if c := cmpInt(releaseAt(v.Release, i), releaseAt(o.Release, i)); c != 0 {
			return c
		}
	}

	if c := cmpInt(preRank(v), preRank(o)); c != 0 {
		return c
	}
	if c := cmpInt(v.PreNum, o.PreNum); c != 0 {
		return c
	}
	if c := cmpInt(v.Post, o.Post); c != 0 {
		return c
	}
	return cmpInt(devRank(v), devRank(o))
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// Equal reports whether v and o denote the same release.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// preRank orders pre-release labels: a < b < rc < final. A bare dev
// release (1.0.dev1) sorts before any pre-release of the same version.
func preRank(v Version) int {
	switch v.Pre {
	case "a":
		return 0
	case "b":
		return 1
	case "rc":
		return 2
	}
	if v.Post < 0 && v.Dev >= 0 {
		return -1
	}
	return 3 // final
}

// devRank orders dev releases before their target release.
func devRank(v Version) int {
	if v.Dev >= 0 {
		return v.Dev
	}
	return 1 << 30
}

func normalizePreLabel(label string) string {
	switch label {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default: // c, rc, pre, preview
		return "rc"
	}
}

func releaseAt(r []int, i int) int {
	if i < len(r) {
		return r[i]
	}
	return 0
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

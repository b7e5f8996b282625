package manifest

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// pinNames walks a pin tree collecting name==version pairs, for
// comparing structure across a write/reparse cycle.
func pinSpecs(pins []*Pin) []string {
	var out []string
	for _, p := range pins {
		out = append(out, p.Spec())
		out = append(out, pinSpecs(p.Transitive)...)
	}
	return out
}

func TestWriteRoundTrip(t *testing.T) {
	m1 := parseString(t, sampleManifest)

	var buf strings.Builder
	if err := m1.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	m2 := parseString(t, buf.String())
	if len(m2.Malformed) != 0 {
		t.Fatalf("rewritten manifest has malformed lines: %v\noutput:\n%s", m2.Malformed, buf.String())
	}

	if !reflect.DeepEqual(pinSpecs(m1.Pins), pinSpecs(m2.Pins)) {
		t.Errorf("pin structure changed across round trip:\n%v\n%v", pinSpecs(m1.Pins), pinSpecs(m2.Pins))
	}
	if !reflect.DeepEqual(m1.Header, m2.Header) {
		t.Errorf("header changed: %v vs %v", m1.Header, m2.Header)
	}

	// Comments must survive.
	p2, _ := m2.Lookup("requests")
	if p2.Comment != "CVE-2018-18074 fixed in 2.20.0" {
		t.Errorf("trailing comment lost: %q", p2.Comment)
	}
	pip, _ := m2.Lookup("pip")
	if len(pip.Notes) != 1 {
		t.Errorf("note comment lost: %v", pip.Notes)
	}
}

func TestWriteKeepsDetachedComments(t *testing.T) {
	const src = "Flask==1.0.2\n\n# upgrade checked on 2018-10-30\n\nrequests==2.20.0\n# reviewed by security team\n"
	m := parseString(t, src)

	var buf strings.Builder
	if err := m.Write(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// Mid-file and trailing blocks both survive the rewrite.
	if !strings.Contains(out, "# upgrade checked on 2018-10-30") {
		t.Errorf("detached comment lost:\n%s", out)
	}
	if !strings.Contains(out, "# reviewed by security team") {
		t.Errorf("trailing comment lost:\n%s", out)
	}

	// The blocks stay detached on reparse instead of attaching to a pin.
	m2 := parseString(t, out)
	if len(m2.Detached) != 2 {
		t.Fatalf("Detached = %v, want 2 blocks", m2.Detached)
	}
	if m2.Detached[0].After != 0 || m2.Detached[0].Lines[0] != "upgrade checked on 2018-10-30" {
		t.Errorf("first block = %+v", m2.Detached[0])
	}
	if m2.Detached[1].After != 1 || m2.Detached[1].Lines[0] != "reviewed by security team" {
		t.Errorf("second block = %+v", m2.Detached[1])
	}
	for _, p := range m2.Pins {
		if len(p.Notes) != 0 {
			t.Errorf("%s picked up detached comments as notes: %v", p.Name, p.Notes)
		}
	}
}

func TestWriteIndentsTransitive(t *testing.T) {
	m := parseString(t, "Flask==1.0.2\n  Jinja2==2.10.1\n    MarkupSafe==1.0\n")

	var buf strings.Builder
	if err := m.Write(&buf); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"Flask==1.0.2",
		"    Jinja2==2.10.1",
		"        MarkupSafe==1.0",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("output = %q, want %q", lines, want)
	}
}

func TestSetPinVersion(t *testing.T) {
	m := parseString(t, sampleManifest)

	if !m.SetPinVersion("flask", "1.1.4", "bumped from 1.0.2") {
		t.Fatal("SetPinVersion returned false for existing pin")
	}
	p, _ := m.Lookup("Flask")
	if p.Version != "1.1.4" {
		t.Errorf("version = %q, want 1.1.4", p.Version)
	}
	if len(p.Notes) != 1 || p.Notes[0] != "bumped from 1.0.2" {
		t.Errorf("notes = %v", p.Notes)
	}

	if m.SetPinVersion("django", "4.0", "") {
		t.Error("SetPinVersion should return false for unknown pin")
	}
}

func TestWriteFile(t *testing.T) {
	m := parseString(t, "Flask==1.0.2\n")
	path := filepath.Join(t.TempDir(), "requirements.txt")

	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m2, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(m2.Pins) != 1 || m2.Pins[0].Spec() != "Flask==1.0.2" {
		t.Errorf("reparsed pins = %v", pinSpecs(m2.Pins))
	}
}

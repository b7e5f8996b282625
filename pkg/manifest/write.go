package manifest

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const indentUnit = "    "

// Write serializes the manifest in canonical form: header comments,
// then each pin preceded by its notes, with transitive entries indented
// one unit per nesting level. Comments and pin order are preserved,
// detached comment blocks included; original indentation widths are
// normalized.
func (m *Manifest) Write(w io.Writer) error {
	bw := &errWriter{w: w}

	for _, h := range m.Header {
		bw.printf("# %s\n", h)
	}
	if len(m.Header) > 0 && len(m.Pins) > 0 {
		bw.printf("\n")
	}

	m.writeDetached(bw, -1)
	for i, p := range m.Pins {
		writePin(bw, p, 0)
		m.writeDetached(bw, i)
	}
	return bw.err
}

// writeDetached emits the comment blocks anchored after pin index i,
// separated by blank lines so they stay detached on the next parse.
func (m *Manifest) writeDetached(bw *errWriter, i int) {
	last := i == len(m.Pins)-1
	for _, blk := range m.Detached {
		if blk.After != i && !(i < 0 && blk.After < 0) {
			continue
		}
		bw.printf("\n")
		for _, line := range blk.Lines {
			bw.printf("# %s\n", line)
		}
		if !last {
			bw.printf("\n")
		}
	}
}

// WriteFile serializes the manifest to path, overwriting it.
func (m *Manifest) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePin(bw *errWriter, p *Pin, depth int) {
	prefix := strings.Repeat(indentUnit, depth)
	for _, note := range p.Notes {
		bw.printf("%s# %s\n", prefix, note)
	}
	if p.Comment != "" {
		bw.printf("%s%s  # %s\n", prefix, p.Spec(), p.Comment)
	} else {
		bw.printf("%s%s\n", prefix, p.Spec())
	}
	for _, t := range p.Transitive {
		writePin(bw, t, depth+1)
	}
}

// SetPinVersion updates the version of the named top-level pin and
// records note as a comment above it. Returns false if the manifest has
// no such pin.
func (m *Manifest) SetPinVersion(name, version, note string) bool {
	p, ok := m.Lookup(name)
	if !ok {
		return false
	}
	p.Version = version
	if note != "" {
		p.Notes = append(p.Notes, note)
	}
	return true
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

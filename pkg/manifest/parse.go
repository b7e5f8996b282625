package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// pin lines split on the first "==". Other comparison operators are not
// part of the format: this is a pin list, not a constraint file.

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse parses a manifest from r.
//
// Malformed pin lines do not abort the parse; they are recorded in
// [Manifest.Malformed] so that linting can report all problems at once.
// Only read failures return an error.
func Parse(r io.Reader) (*Manifest, error) {
	p := &parser{m: &Manifest{}}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		p.line(lineNo, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	p.flushPending()
	return p.m, nil
}

type parser struct {
	m *Manifest

	pending []string // comment block waiting to attach to the next pin
	sawPin  bool
	// stack of open pins by depth; stack[0] is the current top-level pin
	stack []*Pin
}

func (p *parser) line(n int, raw string) {
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		// A blank line ends the current comment block. Before the first
		// pin that block is the file header; afterwards it stands alone.
		p.flushPending()
	case strings.HasPrefix(trimmed, "#"):
		p.pending = append(p.pending, stripComment(trimmed))
	default:
		p.pin(n, raw, trimmed)
	}
}

func (p *parser) pin(n int, raw, trimmed string) {
	indent := len(raw) - len(strings.TrimLeft(raw, " \t"))

	pin, reason := parsePinLine(trimmed)
	if pin == nil {
		p.m.Malformed = append(p.m.Malformed, MalformedLine{Line: n, Text: trimmed, Reason: reason})
		p.pending = nil
		return
	}
	pin.Line = n
	pin.Notes = p.pending
	p.pending = nil
	p.sawPin = true

	if indent == 0 {
		pin.depth = 0
		p.m.Pins = append(p.m.Pins, pin)
		p.stack = []*Pin{pin}
		return
	}

	// Indented entry: attach to the nearest shallower open pin. An
	// indented line with no preceding top-level pin is malformed.
	if len(p.stack) == 0 {
		p.m.Malformed = append(p.m.Malformed, MalformedLine{
			Line: n, Text: trimmed, Reason: "indented entry without a preceding top-level pin",
		})
		return
	}

	parent := p.stack[len(p.stack)-1]
	for len(p.stack) > 1 && indent <= p.stack[len(p.stack)-1].depth {
		p.stack = p.stack[:len(p.stack)-1]
		parent = p.stack[len(p.stack)-1]
	}
	pin.depth = indent
	parent.Transitive = append(parent.Transitive, pin)
	p.stack = append(p.stack, pin)
}

// flushPending closes the pending comment block. Before the first pin the
// block is the file header; after it, a detached block anchored to the
// preceding top-level pin.
func (p *parser) flushPending() {
	if len(p.pending) == 0 {
		return
	}
	if p.sawPin {
		p.m.Detached = append(p.m.Detached, CommentBlock{
			After: len(p.m.Pins) - 1,
			Lines: p.pending,
		})
	} else {
		p.m.Header = append(p.m.Header, p.pending...)
	}
	p.pending = nil
}

// parsePinLine parses a single `name==version` line, with an optional
// trailing comment. Returns nil and a reason when the line does not
// match the pin shape.
func parsePinLine(line string) (*Pin, string) {
	var comment string
	if i := strings.Index(line, "#"); i >= 0 {
		comment = stripComment(line[i:])
		line = strings.TrimSpace(line[:i])
	}

	name, version, ok := strings.Cut(line, "==")
	if !ok {
		return nil, "expected name==version"
	}
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)
	if name == "" {
		return nil, "empty package name"
	}
	if version == "" {
		return nil, "empty version"
	}
	if strings.ContainsAny(name, "<>=!~ ") {
		return nil, "package name contains constraint operators"
	}

	return &Pin{Name: name, Version: version, Comment: comment}, ""
}

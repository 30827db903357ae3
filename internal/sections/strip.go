package sections

import "strings"

// State is a state of the strip machine.
type State int

// Strip states.
const (
	StateScanning State = iota
	StateInsideTOCBlock
	StateInsideReferencesBlock
	StateInsideCodeFence
)

func (s State) String() string {
	switch s {
	case StateInsideTOCBlock:
		return "insideTOCBlock"
	case StateInsideReferencesBlock:
		return "insideReferencesBlock"
	case StateInsideCodeFence:
		return "insideCodeFence"
	}
	return "scanning"
}

// StripOptions selects which generated sections are removed.
type StripOptions struct {
	// TOC removes a Table of Contents heading and everything up to the next heading.
	TOC bool
	// References removes a References heading and the list-like lines after it.
	References bool
}

// Stripper removes generated sections line by line. The references marker
// comment and anchor tag are always dropped.
//
// Known false positive: a plain line directly after a generated references
// list ends the block and is kept, but list-shaped hand content placed there
// is swallowed along with the generated entries.
type Stripper struct {
	opts    StripOptions
	state   State
	kept    []string
	removed bool
}

// NewStripper returns a Stripper in the scanning state.
func NewStripper(opts StripOptions) *Stripper {
	return &Stripper{opts: opts}
}

// State returns the current state.
func (s *Stripper) State() State {
	return s.state
}

// Feed consumes one line (without its line break).
func (s *Stripper) Feed(line string) {
	kind := Classify(line)
	switch s.state {
	case StateInsideCodeFence:
		s.keep(line)
		if kind == LineFence {
			s.state = StateScanning
		}
		return
	case StateInsideTOCBlock:
		if kind != LineHeading && kind != LineReferencesHeading {
			s.drop()
			return
		}
		s.state = StateScanning
	case StateInsideReferencesBlock:
		if kind.referenceLike() {
			s.drop()
			return
		}
		s.state = StateScanning
	}
	s.scan(line, kind)
}

func (s *Stripper) scan(line string, kind LineKind) {
	switch kind {
	case LineFence:
		s.state = StateInsideCodeFence
	case LineGenerated:
		s.drop()
		return
	case LineTOCHeading:
		if s.opts.TOC {
			s.state = StateInsideTOCBlock
			s.drop()
			return
		}
	case LineReferencesHeading:
		if s.opts.References {
			s.state = StateInsideReferencesBlock
			s.drop()
			return
		}
	}
	s.keep(line)
}

func (s *Stripper) keep(line string) { s.kept = append(s.kept, line) }

func (s *Stripper) drop() { s.removed = true }

// Result joins the kept lines. When anything was removed, trailing blank
// lines are collapsed to a single line break.
func (s *Stripper) Result(trailingNewline bool) string {
	out := strings.Join(s.kept, "\n")
	if !s.removed {
		return out
	}
	out = strings.TrimRight(out, "\n")
	if trailingNewline && out != "" {
		out += "\n"
	}
	return out
}

// Strip removes generated sections from text.
func Strip(text string, opts StripOptions) string {
	s := NewStripper(opts)
	for _, line := range strings.Split(text, "\n") {
		s.Feed(line)
	}
	return s.Result(strings.HasSuffix(text, "\n"))
}

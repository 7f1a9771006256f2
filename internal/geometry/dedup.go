package geometry

import (
	"math"
	"sort"
)

// Mode selects how the candidates of a page are resolved into lines
type Mode int

const (
	// ModeSummary merges candidates closer than the merge tolerance and rounds
	// positions to two decimals
	ModeSummary Mode = iota
	// ModeDetailed keeps every candidate, sorted by position
	ModeDetailed
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeSummary:
		return "summary"
	case ModeDetailed:
		return "detailed"
	default:
		return "unknown"
	}
}

// HorizontalLine is a resolved rule with its 1-based position in the page order
type HorizontalLine struct {
	LineNumber int `json:"line_number"`
	Candidate
}

// LineSet collects the candidates of one page and resolves them according to
// its mode
type LineSet struct {
	mode       Mode
	tolerance  float64
	candidates []Candidate
}

// NewLineSet creates an empty set
func NewLineSet(mode Mode, tolerance float64) *LineSet {
	return &LineSet{mode: mode, tolerance: tolerance}
}

// Add records candidates in discovery order
func (s *LineSet) Add(candidates ...Candidate) {
	s.candidates = append(s.candidates, candidates...)
}

// Len returns the number of raw candidates recorded
func (s *LineSet) Len() int {
	return len(s.candidates)
}

// Resolve returns the page's lines sorted ascending by y and numbered 1..N.
// In summary mode a candidate survives only when it is farther than the
// tolerance from every line already kept.
func (s *LineSet) Resolve() []HorizontalLine {
	sorted := make([]Candidate, len(s.candidates))
	copy(sorted, s.candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y < sorted[j].Y
	})

	lines := make([]HorizontalLine, 0, len(sorted))
	for _, cand := range sorted {
		if s.mode == ModeSummary {
			if withinAny(cand.Y, lines, s.tolerance) {
				continue
			}
		}
		lines = append(lines, HorizontalLine{Candidate: cand})
	}

	for i := range lines {
		lines[i].LineNumber = i + 1
	}
	if s.mode == ModeSummary {
		for i := range lines {
			lines[i].Y = Round2(lines[i].Y)
		}
	}
	return lines
}

// Positions returns the y-positions of the resolved lines
func (s *LineSet) Positions() []float64 {
	lines := s.Resolve()
	ys := make([]float64, len(lines))
	for i, l := range lines {
		ys[i] = l.Y
	}
	return ys
}

// Deduplicate sorts ys and drops every value within tolerance of a value
// already kept. Kept values are rounded to two decimals.
func Deduplicate(ys []float64, tolerance float64) []float64 {
	set := NewLineSet(ModeSummary, tolerance)
	for _, y := range ys {
		set.Add(Candidate{Y: y})
	}
	return set.Positions()
}

func withinAny(y float64, kept []HorizontalLine, tolerance float64) bool {
	for _, k := range kept {
		if math.Abs(y-k.Y) <= tolerance {
			return true
		}
	}
	return false
}

// Round2 rounds v to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

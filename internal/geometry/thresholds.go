package geometry

import "fmt"

// Default classification thresholds, in page-coordinate units
const (
	DefaultLineYTolerance = 2.0
	DefaultMinLineLength  = 10.0
	DefaultMaxRuleHeight  = 5.0
	DefaultMinRuleWidth   = 10.0
	DefaultMergeTolerance = 3.0

	// DefaultThickness is reported for lines without a known stroke width
	DefaultThickness = 1.0
)

// Thresholds holds the tunable constants of rule detection
type Thresholds struct {
	// LineYTolerance is the largest vertical drift of a segment still considered flat
	LineYTolerance float64 `json:"line_y_tolerance"`
	// MinLineLength is the shortest horizontal extent of a segment rule
	MinLineLength float64 `json:"min_line_length"`
	// MaxRuleHeight is the tallest rectangle that still counts as a thick rule
	MaxRuleHeight float64 `json:"max_rule_height"`
	// MinRuleWidth is the narrowest rectangle that counts as a rule
	MinRuleWidth float64 `json:"min_rule_width"`
	// MergeTolerance is the distance under which two rules collapse in summary mode
	MergeTolerance float64 `json:"merge_tolerance"`
}

// DefaultThresholds returns the hand-tuned defaults
func DefaultThresholds() Thresholds {
	return Thresholds{
		LineYTolerance: DefaultLineYTolerance,
		MinLineLength:  DefaultMinLineLength,
		MaxRuleHeight:  DefaultMaxRuleHeight,
		MinRuleWidth:   DefaultMinRuleWidth,
		MergeTolerance: DefaultMergeTolerance,
	}
}

// Validate checks that every threshold is usable. The merge tolerance may be
// zero, which keeps every distinct position in summary mode.
func (t Thresholds) Validate() error {
	values := []struct {
		name  string
		value float64
	}{
		{"line y tolerance", t.LineYTolerance},
		{"minimum line length", t.MinLineLength},
		{"maximum rule height", t.MaxRuleHeight},
		{"minimum rule width", t.MinRuleWidth},
	}
	for _, v := range values {
		if v.value <= 0 {
			return fmt.Errorf("%s must be positive, got %g", v.name, v.value)
		}
	}
	if t.MergeTolerance < 0 {
		return fmt.Errorf("merge tolerance must not be negative, got %g", t.MergeTolerance)
	}
	return nil
}

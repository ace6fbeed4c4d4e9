package score

import "time"

// Dimension identifies one quality dimension. The set is closed; the
// composite weights below must sum to 1.0 if it ever changes.
type Dimension string

const (
	DimensionTests         Dimension = "tests"
	DimensionAccessibility Dimension = "accessibility"
	DimensionPerformance   Dimension = "performance"
	DimensionSecurity      Dimension = "security"
	DimensionCodeQuality   Dimension = "codeQuality"
)

// Composite weights, fixed by design.
const (
	weightTests         = 0.25
	weightAccessibility = 0.20
	weightPerformance   = 0.20
	weightSecurity      = 0.25
	weightCodeQuality   = 0.10
)

// Severity ranks an issue
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Issue is one itemized quality finding
type Issue struct {
	Dimension    Dimension `json:"dimension" yaml:"dimension"`
	Severity     Severity  `json:"severity" yaml:"severity"`
	Message      string    `json:"message" yaml:"message"`
	File         string    `json:"file,omitempty" yaml:"file,omitempty"`
	Line         int       `json:"line,omitempty" yaml:"line,omitempty"`
	SuggestedFix string    `json:"suggested_fix,omitempty" yaml:"suggested_fix,omitempty"`
}

// Dimensions holds the per-dimension sub-scores, each in [0,100].
type Dimensions struct {
	Tests         int `json:"tests" yaml:"tests"`
	Accessibility int `json:"accessibility" yaml:"accessibility"`
	Performance   int `json:"performance" yaml:"performance"`
	Security      int `json:"security" yaml:"security"`
	CodeQuality   int `json:"code_quality" yaml:"code_quality"`
}

// Get returns the sub-score for a dimension.
func (d Dimensions) Get(dim Dimension) int {
	switch dim {
	case DimensionTests:
		return d.Tests
	case DimensionAccessibility:
		return d.Accessibility
	case DimensionPerformance:
		return d.Performance
	case DimensionSecurity:
		return d.Security
	case DimensionCodeQuality:
		return d.CodeQuality
	default:
		return 0
	}
}

// Score is the composite quality assessment of one execution batch
type Score struct {
	Overall         int       `json:"overall" yaml:"overall"`
	Dimensions      Dimensions `json:"dimensions" yaml:"dimensions"`
	Issues          []Issue   `json:"issues,omitempty" yaml:"issues,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	GeneratedAt     time.Time `json:"generated_at" yaml:"generated_at"`
}

// HasCriticalIssue reports whether any issue carries critical severity.
func (s *Score) HasCriticalIssue() bool {
	for _, issue := range s.Issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Toggles enables or disables individual scoring dimensions. A disabled
// dimension defaults to 100: it does not penalize but still counts in the
// weighted sum.
type Toggles struct {
	Tests         bool `yaml:"tests"`
	Accessibility bool `yaml:"accessibility"`
	Performance   bool `yaml:"performance"`
	Security      bool `yaml:"security"`
	CodeQuality   bool `yaml:"code_quality"`
}

// AllEnabled returns toggles with every dimension on.
func AllEnabled() Toggles {
	return Toggles{
		Tests:         true,
		Accessibility: true,
		Performance:   true,
		Security:      true,
		CodeQuality:   true,
	}
}

// Enabled reports whether the given dimension is on.
func (t Toggles) Enabled(dim Dimension) bool {
	switch dim {
	case DimensionTests:
		return t.Tests
	case DimensionAccessibility:
		return t.Accessibility
	case DimensionPerformance:
		return t.Performance
	case DimensionSecurity:
		return t.Security
	case DimensionCodeQuality:
		return t.CodeQuality
	default:
		return false
	}
}

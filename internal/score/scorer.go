package score

import (
	"math"
	"time"

	"github.com/forgeflow/forgeflow/internal/engine"
	forgeerrors "github.com/forgeflow/forgeflow/internal/errors"
	"github.com/forgeflow/forgeflow/internal/log"
)

const (
	dimensionCeiling = 100

	// Tests deductions when the batch carries no test artifacts or the
	// artifacts carry no assertions.
	deductNoTestArtifact = 50
	deductNoAssertion    = 30
)

// Scorer evaluates execution batches against the rule table. The same
// batch always yields the same Score: rules are pure functions of artifact
// path and content, and the clock is injected so even the timestamp is
// reproducible under test.
type Scorer struct {
	rules  []Rule
	logger *log.Logger
	now    func() time.Time
}

// Option configures a Scorer
type Option func(*Scorer)

// WithRules replaces the default rule table.
func WithRules(rules []Rule) Option {
	return func(s *Scorer) { s.rules = rules }
}

// WithClock injects the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// NewScorer returns a scorer backed by the default rule table.
func NewScorer(logger *log.Logger, opts ...Option) *Scorer {
	s := &Scorer{
		rules:  DefaultRules(),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type artifact struct {
	path    string
	content string
}

// Score evaluates a batch of execution results and produces the composite
// quality assessment. An empty batch is a scoring failure, not a zero
// score: there is nothing to assess.
func (s *Scorer) Score(results []engine.ExecutionResult, toggles Toggles) (*Score, error) {
	if len(results) == 0 {
		return nil, forgeerrors.NewScoringFailureError("no execution results to assess", nil)
	}

	artifacts := collectArtifacts(results)

	dims := Dimensions{
		Tests:         dimensionCeiling,
		Accessibility: dimensionCeiling,
		Performance:   dimensionCeiling,
		Security:      dimensionCeiling,
		CodeQuality:   dimensionCeiling,
	}
	var issues []Issue

	if toggles.Enabled(DimensionTests) {
		testScore, testIssues := scoreTests(artifacts)
		dims.Tests = testScore
		issues = append(issues, testIssues...)
	}

	// Rules run in table order over artifacts in batch order, so the
	// issue list is deterministic.
	deductions := map[Dimension]int{}
	for _, rule := range s.rules {
		if !toggles.Enabled(rule.Dimension) {
			continue
		}
		for _, a := range artifacts {
			for _, hit := range rule.Check(a.path, a.content) {
				deductions[rule.Dimension] += rule.Deduction
				issues = append(issues, Issue{
					Dimension:    rule.Dimension,
					Severity:     rule.Severity,
					Message:      rule.Message,
					File:         a.path,
					Line:         hit.Line,
					SuggestedFix: rule.SuggestedFix,
				})
			}
		}
	}

	dims.Accessibility = floorZero(dims.Accessibility - deductions[DimensionAccessibility])
	dims.Performance = floorZero(dims.Performance - deductions[DimensionPerformance])
	dims.Security = floorZero(dims.Security - deductions[DimensionSecurity])
	dims.CodeQuality = floorZero(dims.CodeQuality - deductions[DimensionCodeQuality])

	overall := composite(dims)

	result := &Score{
		Overall:         overall,
		Dimensions:      dims,
		Issues:          issues,
		Recommendations: recommend(dims, overall),
		GeneratedAt:     s.now(),
	}

	if s.logger != nil {
		s.logger.Debug("scored execution batch",
			"overall", overall,
			"issues", len(issues),
			"artifacts", len(artifacts),
		)
	}
	return result, nil
}

// collectArtifacts flattens the generated files of every result, in batch
// order. Failed tasks contribute whatever they did produce.
func collectArtifacts(results []engine.ExecutionResult) []artifact {
	var artifacts []artifact
	for _, r := range results {
		for _, f := range r.GeneratedFiles {
			artifacts = append(artifacts, artifact{path: f.Path, content: f.Content})
		}
	}
	return artifacts
}

// scoreTests applies the tests dimension: the batch needs at least one
// test-shaped artifact, and that artifact needs at least one assertion.
func scoreTests(artifacts []artifact) (int, []Issue) {
	testScore := dimensionCeiling
	var issues []Issue

	var testFiles []artifact
	for _, a := range artifacts {
		if testPathPattern.MatchString(a.path) {
			testFiles = append(testFiles, a)
		}
	}

	if len(testFiles) == 0 {
		testScore -= deductNoTestArtifact
		issues = append(issues, Issue{
			Dimension:    DimensionTests,
			Severity:     SeverityHigh,
			Message:      "batch contains no test artifacts",
			SuggestedFix: "add a test-generation task or write tests for the generated features",
		})
		return floorZero(testScore), issues
	}

	hasAssertion := false
	for _, tf := range testFiles {
		if assertionPattern.MatchString(tf.content) {
			hasAssertion = true
			break
		}
	}
	if !hasAssertion {
		testScore -= deductNoAssertion
		issues = append(issues, Issue{
			Dimension:    DimensionTests,
			Severity:     SeverityMedium,
			Message:      "test artifacts contain no assertions",
			File:         testFiles[0].path,
			SuggestedFix: "assert on observable behavior instead of just executing code",
		})
	}
	return floorZero(testScore), issues
}

// composite folds the sub-scores into the weighted overall score.
func composite(d Dimensions) int {
	weighted := float64(d.Tests)*weightTests +
		float64(d.Accessibility)*weightAccessibility +
		float64(d.Performance)*weightPerformance +
		float64(d.Security)*weightSecurity +
		float64(d.CodeQuality)*weightCodeQuality
	return int(math.Round(weighted))
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

package score

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow/forgeflow/internal/engine"
	forgeerrors "github.com/forgeflow/forgeflow/internal/errors"
)

var fixedClock = func() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func batch(files ...engine.GeneratedFile) []engine.ExecutionResult {
	return []engine.ExecutionResult{{
		TaskID:         "impl-content",
		Success:        true,
		GeneratedFiles: files,
	}}
}

func cleanBatch() []engine.ExecutionResult {
	return batch(
		engine.GeneratedFile{
			Path:    "src/app.tsx",
			Content: "export function App(): JSX.Element {\n  return (\n    <main>\n      <h1>Hello</h1>\n    </main>\n  )\n}\n",
		},
		engine.GeneratedFile{
			Path:    "src/app.test.tsx",
			Content: "test('renders', () => {\n  expect(App).toBeDefined()\n})\n",
		},
	)
}

func TestScore_EmptyBatchIsAFailure(t *testing.T) {
	s := NewScorer(nil, WithClock(fixedClock))

	_, err := s.Score(nil, AllEnabled())
	require.Error(t, err)

	var forgeErr *forgeerrors.ForgeError
	require.ErrorAs(t, err, &forgeErr)
	assert.Equal(t, forgeerrors.ErrCodeScoringFailure, forgeErr.Code)
}

func TestScore_CleanBatchScoresHigh(t *testing.T) {
	s := NewScorer(nil, WithClock(fixedClock))

	result, err := s.Score(cleanBatch(), AllEnabled())
	require.NoError(t, err)

	assert.Equal(t, 100, result.Overall)
	assert.Equal(t, 100, result.Dimensions.Tests)
	assert.Equal(t, 100, result.Dimensions.Security)
	assert.False(t, result.HasCriticalIssue())
}

func TestScore_Purity(t *testing.T) {
	s := NewScorer(nil, WithClock(fixedClock))
	input := batch(
		engine.GeneratedFile{Path: "src/feature.tsx", Content: "<img src=\"a.png\">\nconsole.log('x')\n"},
	)

	first, err := s.Score(input, AllEnabled())
	require.NoError(t, err)
	second, err := s.Score(input, AllEnabled())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScore_OverallStaysInRange(t *testing.T) {
	// Pathological artifact tripping every rule repeatedly.
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("<img src=\"x.png\">\n")
		b.WriteString("eval(userInput)\n")
		b.WriteString("const password = 'hunter2secret'\n")
		b.WriteString("el.innerHTML = markup\n")
		b.WriteString("console.log(12345)\n")
	}

	s := NewScorer(nil, WithClock(fixedClock))
	result, err := s.Score(batch(
		engine.GeneratedFile{Path: "src/awful.tsx", Content: b.String()},
	), AllEnabled())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Overall, 0)
	assert.LessOrEqual(t, result.Overall, 100)
	assert.Equal(t, 0, result.Dimensions.Security)
}

func TestScore_DisablingADimensionNeverLowersOverall(t *testing.T) {
	input := batch(
		engine.GeneratedFile{Path: "src/feature.tsx", Content: "<img src=\"a.png\">\neval(code)\n"},
	)
	s := NewScorer(nil, WithClock(fixedClock))

	full, err := s.Score(input, AllEnabled())
	require.NoError(t, err)

	toggles := AllEnabled()
	toggles.Security = false
	partial, err := s.Score(input, toggles)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, partial.Overall, full.Overall)
	assert.Equal(t, 100, partial.Dimensions.Security, "disabled dimension defaults to the ceiling")
}

func TestScore_DynamicEvalIsCritical(t *testing.T) {
	input := batch(
		engine.GeneratedFile{Path: "src/runner.ts", Content: "export function run(code: string): unknown {\n  return eval(code)\n}\n"},
		engine.GeneratedFile{Path: "src/runner.test.ts", Content: "test('runs', () => { expect(run('1')).toBe(1) })\n"},
	)

	s := NewScorer(nil, WithClock(fixedClock))
	result, err := s.Score(input, AllEnabled())
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Dimensions.Security, 80)
	assert.True(t, result.HasCriticalIssue())

	var found bool
	for _, issue := range result.Issues {
		if issue.Dimension == DimensionSecurity && issue.Severity == SeverityCritical {
			found = true
			assert.Equal(t, "src/runner.ts", issue.File)
		}
	}
	assert.True(t, found, "expected a critical security issue for dynamic evaluation")
}

func TestScore_MissingTestsDeductions(t *testing.T) {
	s := NewScorer(nil, WithClock(fixedClock))

	// No test artifacts at all.
	noTests, err := s.Score(batch(
		engine.GeneratedFile{Path: "src/app.tsx", Content: "export const App = () => <main/>\n"},
	), AllEnabled())
	require.NoError(t, err)
	assert.Equal(t, 50, noTests.Dimensions.Tests)

	// Test file present but assertion-free.
	hollow, err := s.Score(batch(
		engine.GeneratedFile{Path: "src/app.test.tsx", Content: "test('noop', () => { render() })\n"},
	), AllEnabled())
	require.NoError(t, err)
	assert.Equal(t, 70, hollow.Dimensions.Tests)
}

func TestScore_DeductionsAreAdditivePerHit(t *testing.T) {
	s := NewScorer(nil, WithClock(fixedClock))

	result, err := s.Score(batch(
		engine.GeneratedFile{Path: "index.html", Content: "<img src=\"a.png\">\n<img src=\"b.png\">\n<img src=\"c.png\">\n"},
	), AllEnabled())
	require.NoError(t, err)

	// Three alt-less images: 3 x 10 off accessibility, 3 x 8 off
	// performance for missing lazy-loading.
	assert.Equal(t, 70, result.Dimensions.Accessibility)
	assert.Equal(t, 76, result.Dimensions.Performance)
}

func TestScore_SubScoresFloorAtZero(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 15; i++ {
		b.WriteString("<img src=\"x.png\">\n")
	}

	s := NewScorer(nil, WithClock(fixedClock))
	result, err := s.Score(batch(
		engine.GeneratedFile{Path: "index.html", Content: b.String()},
	), AllEnabled())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Dimensions.Accessibility)
}

func TestScore_IssueOrderIsDeterministic(t *testing.T) {
	input := batch(
		engine.GeneratedFile{Path: "src/a.tsx", Content: "console.log('a')\n"},
		engine.GeneratedFile{Path: "src/b.tsx", Content: "console.log('b')\n"},
	)
	s := NewScorer(nil, WithClock(fixedClock))

	result, err := s.Score(input, AllEnabled())
	require.NoError(t, err)

	var files []string
	for _, issue := range result.Issues {
		if issue.Dimension == DimensionCodeQuality {
			files = append(files, issue.File)
		}
	}
	assert.Equal(t, []string{"src/a.tsx", "src/b.tsx"}, files)
}

func TestScore_TimestampComesFromTheClock(t *testing.T) {
	s := NewScorer(nil, WithClock(fixedClock))
	result, err := s.Score(cleanBatch(), AllEnabled())
	require.NoError(t, err)
	assert.Equal(t, fixedClock(), result.GeneratedAt)
}

func TestRecommend_Bands(t *testing.T) {
	strong := recommend(Dimensions{Tests: 100, Accessibility: 100, Performance: 100, Security: 100, CodeQuality: 100}, 100)
	require.NotEmpty(t, strong)
	assert.Contains(t, strong[len(strong)-1], "strong")

	weak := recommend(Dimensions{Tests: 20, Accessibility: 50, Performance: 50, Security: 40, CodeQuality: 30}, 38)
	assert.Contains(t, weak[0], "security", "security guidance leads")
	assert.Contains(t, weak[len(weak)-1], "retry")
}

func TestScore_CustomRuleTable(t *testing.T) {
	rule := Rule{
		Name:      "always-fires",
		Dimension: DimensionCodeQuality,
		Severity:  SeverityLow,
		Deduction: 1,
		Message:   "marker",
		Check: func(path, content string) []Hit {
			return []Hit{{Line: 1}}
		},
	}
	s := NewScorer(nil, WithClock(fixedClock), WithRules([]Rule{rule}))

	result, err := s.Score(batch(
		engine.GeneratedFile{Path: "src/x.ts", Content: "export {}\n"},
	), AllEnabled())
	require.NoError(t, err)

	assert.Equal(t, 99, result.Dimensions.CodeQuality)
	require.Len(t, result.Issues, 2) // custom marker + missing-test artifact
}

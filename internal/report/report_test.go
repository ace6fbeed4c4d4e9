package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgeflow/forgeflow/internal/auto"
	"github.com/forgeflow/forgeflow/internal/decision"
	"github.com/forgeflow/forgeflow/internal/domain"
	"github.com/forgeflow/forgeflow/internal/score"
)

func TestRender_NilSession(t *testing.T) {
	assert.Empty(t, Render(nil))
}

func TestRender_CompletedRun(t *testing.T) {
	session := &auto.AutomationContext{
		SessionID: domain.NewSessionID(),
		State:     auto.StateCompleted,
		Prompt:    "build a blog",
		OutputDir: "out",
		Scores: []*score.Score{{
			Overall: 93,
			Dimensions: score.Dimensions{
				Tests: 100, Accessibility: 90, Performance: 100, Security: 85, CodeQuality: 95,
			},
			Issues: []score.Issue{
				{Dimension: score.DimensionSecurity, Severity: score.SeverityHigh, Message: "unsanitized raw-markup injection"},
			},
			Recommendations: []string{"security scored 85; resolve the flagged findings before shipping"},
		}},
		Decisions: []auto.DecisionRecord{{
			Decision: decision.DecisionComplete,
			Reason:   "quality score 93 meets the threshold of 70",
			Overall:  93,
		}},
	}

	out := Render(session)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "93/100")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "Decision Trail")
	assert.Contains(t, out, "Artifacts written to out")
}

func TestRender_FailedRunOmitsArtifactLine(t *testing.T) {
	session := &auto.AutomationContext{
		SessionID: domain.NewSessionID(),
		State:     auto.StateFailed,
		Prompt:    "build a blog",
		OutputDir: "out",
	}

	out := Render(session)
	assert.Contains(t, out, "failed")
	assert.NotContains(t, out, "Artifacts written")
}

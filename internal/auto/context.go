package auto

import (
	"time"

	"github.com/forgeflow/forgeflow/internal/decision"
	"github.com/forgeflow/forgeflow/internal/domain"
	"github.com/forgeflow/forgeflow/internal/engine"
	"github.com/forgeflow/forgeflow/internal/plan"
	"github.com/forgeflow/forgeflow/internal/score"
)

// DecisionRecord is one entry in the append-only decision history
type DecisionRecord struct {
	Decision decision.Decision `json:"decision" yaml:"decision"`
	Reason   string            `json:"reason" yaml:"reason"`
	Overall  int               `json:"overall" yaml:"overall"`
	At       time.Time         `json:"at" yaml:"at"`
}

// AutomationContext is the full state of one session. It is created when
// Run is invoked and carries enough information after termination to
// explain the outcome: the plan, every result, every score, and the
// decision trail.
type AutomationContext struct {
	SessionID domain.SessionID `json:"session_id" yaml:"session_id"`
	State     State            `json:"state" yaml:"state"`

	Prompt          string   `json:"prompt" yaml:"prompt"`
	AdditionalInput []string `json:"additional_input,omitempty" yaml:"additional_input,omitempty"`
	OutputDir       string   `json:"output_dir" yaml:"output_dir"`

	Plan      *plan.Plan               `json:"plan,omitempty" yaml:"plan,omitempty"`
	Results   []engine.ExecutionResult `json:"results,omitempty" yaml:"results,omitempty"`
	Scores    []*score.Score           `json:"scores,omitempty" yaml:"scores,omitempty"`
	Decisions []DecisionRecord         `json:"decisions,omitempty" yaml:"decisions,omitempty"`

	RetryCount int    `json:"retry_count" yaml:"retry_count"`
	Config     Config `json:"config" yaml:"config"`

	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// LatestScore returns the most recent score, or nil before the first
// scoring phase.
func (c *AutomationContext) LatestScore() *score.Score {
	if len(c.Scores) == 0 {
		return nil
	}
	return c.Scores[len(c.Scores)-1]
}

// LatestDecision returns the most recent decision record, or nil.
func (c *AutomationContext) LatestDecision() *DecisionRecord {
	if len(c.Decisions) == 0 {
		return nil
	}
	return &c.Decisions[len(c.Decisions)-1]
}

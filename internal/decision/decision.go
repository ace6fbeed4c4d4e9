// Package decision turns a quality score into the orchestrator's next
// move. The policy is a fixed precedence chain, so the same inputs always
// produce the same decision.
package decision

import (
	"fmt"

	"github.com/forgeflow/forgeflow/internal/log"
	"github.com/forgeflow/forgeflow/internal/score"
)

// Decision is the orchestrator's next move
type Decision string

const (
	// DecisionComplete accepts the output and finishes the session
	DecisionComplete Decision = "complete"
	// DecisionRetry runs another execution pass
	DecisionRetry Decision = "retry"
	// DecisionRequestInput suspends the session pending human guidance
	DecisionRequestInput Decision = "request-input"
	// DecisionFail terminates the session unsuccessfully
	DecisionFail Decision = "fail"
)

// Inputs carries everything the policy consults
type Inputs struct {
	Score            *score.Score
	QualityThreshold int
	RetryCount       int
	MaxRetries       int
	AutoApprove      bool
}

// Result is a decision plus the single factor that produced it
type Result struct {
	Decision Decision `json:"decision" yaml:"decision"`
	Reason   string   `json:"reason" yaml:"reason"`
}

// Engine applies the decision policy
type Engine struct {
	logger *log.Logger
}

// NewEngine returns a decision engine
func NewEngine(logger *log.Logger) *Engine {
	return &Engine{logger: logger}
}

// Decide applies the precedence chain:
//
//  1. score meets the threshold        -> complete
//  2. retries remain                   -> retry
//  3. unattended approval is off       -> request-input
//  4. a critical issue is outstanding  -> fail
//  5. otherwise                        -> complete, flagged as best-effort
//
// A missing score is treated as an ambiguous signal: the engine never
// guesses, it asks.
func (e *Engine) Decide(in Inputs) Result {
	result := e.decide(in)
	if e.logger != nil {
		e.logger.Info("decision made",
			"decision", string(result.Decision),
			"reason", result.Reason,
			"retry_count", in.RetryCount,
		)
	}
	return result
}

func (e *Engine) decide(in Inputs) Result {
	if in.Score == nil {
		return Result{
			Decision: DecisionRequestInput,
			Reason:   "no quality score is available; human guidance needed to proceed",
		}
	}

	if in.Score.Overall >= in.QualityThreshold {
		return Result{
			Decision: DecisionComplete,
			Reason:   fmt.Sprintf("quality score %d meets the threshold of %d", in.Score.Overall, in.QualityThreshold),
		}
	}

	if in.RetryCount < in.MaxRetries {
		return Result{
			Decision: DecisionRetry,
			Reason: fmt.Sprintf("quality score %d is below the threshold of %d; retry %d of %d",
				in.Score.Overall, in.QualityThreshold, in.RetryCount+1, in.MaxRetries),
		}
	}

	if !in.AutoApprove {
		return Result{
			Decision: DecisionRequestInput,
			Reason: fmt.Sprintf("retries exhausted (%d of %d) with quality score %d below the threshold of %d",
				in.RetryCount, in.MaxRetries, in.Score.Overall, in.QualityThreshold),
		}
	}

	if in.Score.HasCriticalIssue() {
		return Result{
			Decision: DecisionFail,
			Reason:   "retries exhausted and a critical issue is outstanding",
		}
	}

	return Result{
		Decision: DecisionComplete,
		Reason: fmt.Sprintf("retries exhausted; accepting best-effort output at quality score %d with no critical issues",
			in.Score.Overall),
	}
}

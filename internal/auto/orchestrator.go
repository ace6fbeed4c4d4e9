package auto

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/forgeflow/forgeflow/internal/decision"
	"github.com/forgeflow/forgeflow/internal/detect"
	"github.com/forgeflow/forgeflow/internal/domain"
	"github.com/forgeflow/forgeflow/internal/engine"
	forgeerrors "github.com/forgeflow/forgeflow/internal/errors"
	"github.com/forgeflow/forgeflow/internal/log"
	"github.com/forgeflow/forgeflow/internal/plan"
	"github.com/forgeflow/forgeflow/internal/score"
)

// Orchestrator drives the control loop: planning, executing, scoring,
// deciding, strictly in sequence, until a terminal state. One orchestrator
// serves one session; a second Run on a terminal session is rejected.
type Orchestrator struct {
	executor *engine.Executor
	scorer   *score.Scorer
	decider  *decision.Engine
	logger   *log.Logger
	config   Config

	context *AutomationContext
	events  []Event
	seq     int

	now func() time.Time

	// approvalGate is swapped out under test; the default renders the
	// interactive plan gate.
	approvalGate func(*plan.Plan) (bool, error)
}

// NewOrchestrator wires the control loop from its collaborators.
func NewOrchestrator(executor *engine.Executor, scorer *score.Scorer, decider *decision.Engine, logger *log.Logger, config Config) *Orchestrator {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Orchestrator{
		executor:     executor,
		scorer:       scorer,
		decider:      decider,
		logger:       logger,
		config:       config,
		now:          time.Now,
		approvalGate: ShowPlanApproval,
	}
}

// Request carries everything a run needs
type Request struct {
	Prompt    string
	OutputDir string

	// RepoContext biases planning toward the existing project; nil
	// degrades to baseline planning.
	RepoContext *detect.Context

	// AdditionalInput carries the guidance collected after a previous run
	// ended awaiting-input.
	AdditionalInput []string
}

// Run executes the full control loop and resolves once the state machine
// reaches a terminal or awaiting-input state. The returned context always
// explains the outcome; the error is non-nil only when the run failed or
// the orchestrator was misused.
func (o *Orchestrator) Run(ctx context.Context, req Request) (result *AutomationContext, err error) {
	if o.context != nil {
		if o.context.State == StateAwaitingInput && len(req.AdditionalInput) > 0 {
			// Resumable: a fresh context is seeded below.
		} else if o.context.State.Terminal() {
			return o.context, forgeerrors.NewSessionTerminalError(string(o.context.State))
		} else {
			return o.context, forgeerrors.New(forgeerrors.ErrCodeOrchestratorFault, "run already in progress")
		}
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = o.config.OutputDir
	}

	// Each session owns its audit trail: events from a paused predecessor
	// never leak into the resumed session's log or archive.
	o.events = nil
	o.seq = 0

	o.context = &AutomationContext{
		SessionID:       domain.NewSessionID(),
		State:           StateIdle,
		Prompt:          req.Prompt,
		AdditionalInput: req.AdditionalInput,
		OutputDir:       outputDir,
		Config:          o.config,
		StartedAt:       o.now(),
		UpdatedAt:       o.now(),
	}
	o.emit(EventStateChange, "session created", map[string]string{
		"session": o.context.SessionID.String(),
	})

	// Any uncaught fault in any phase transitions directly to failed. The
	// audit trail keeps the verbatim panic value.
	defer func() {
		if r := recover(); r != nil {
			fault := forgeerrors.New(forgeerrors.ErrCodeOrchestratorFault, fmt.Sprintf("orchestrator fault: %v", r))
			o.fail(fault.Message)
			result = o.context
			err = fault
		}
	}()

	if err := o.plan(req); err != nil {
		o.fail(err.Error())
		return o.context, err
	}

	if o.config.RequireApproval && !o.config.AutoApprove {
		approved, gateErr := o.approvalGate(o.context.Plan)
		if gateErr != nil {
			wrapped := forgeerrors.Wrap(forgeerrors.ErrCodeOrchestratorFault, "approval gate", gateErr)
			o.fail(wrapped.Message)
			return o.context, wrapped
		}
		if !approved {
			o.fail("plan rejected at the approval gate")
			return o.context, forgeerrors.New(forgeerrors.ErrCodeOrchestratorFault, "plan rejected at the approval gate")
		}
		o.emit(EventInfo, "plan approved", nil)
	}

	for {
		if err := o.executePass(ctx); err != nil {
			o.fail(err.Error())
			return o.context, err
		}

		sc, err := o.scorePass()
		if err != nil {
			o.fail(err.Error())
			return o.context, err
		}

		record := o.decidePass(sc)
		switch record.Decision {
		case decision.DecisionRetry:
			o.context.RetryCount++
			o.emit(EventInfo, fmt.Sprintf("retry %d of %d", o.context.RetryCount, o.config.MaxRetries), nil)

		case decision.DecisionComplete:
			o.transition(StateCompleted, record.Reason)
			o.dumpContext()
			return o.context, nil

		case decision.DecisionRequestInput:
			o.transition(StateAwaitingInput, record.Reason)
			o.dumpContext()
			return o.context, nil

		default: // fail
			o.fail(record.Reason)
			return o.context, forgeerrors.New(forgeerrors.ErrCodeOrchestratorFault, record.Reason)
		}
	}
}

// Context returns the session context; retrievable after termination.
func (o *Orchestrator) Context() *AutomationContext {
	return o.context
}

// Events returns the append-only audit trail.
func (o *Orchestrator) Events() []Event {
	return o.events
}

// History returns the decision records in order.
func (o *Orchestrator) History() []DecisionRecord {
	if o.context == nil {
		return nil
	}
	return o.context.Decisions
}

// plan runs the planning phase once per session.
func (o *Orchestrator) plan(req Request) error {
	if err := o.transition(StatePlanning, "build request accepted"); err != nil {
		return err
	}

	prompt := req.Prompt
	if len(req.AdditionalInput) > 0 {
		prompt = prompt + "\n" + strings.Join(req.AdditionalInput, "\n")
	}

	p, err := plan.Build(prompt, req.RepoContext)
	if err != nil {
		return err
	}
	o.context.Plan = p

	o.emit(EventPlanCreated, fmt.Sprintf("plan with %d tasks", len(p.Tasks)), map[string]string{
		"plan":        p.ID,
		"complexity":  string(p.Complexity),
		"fingerprint": p.Fingerprint,
		"tasks":       fmt.Sprintf("%d", len(p.Tasks)),
	})
	return nil
}

// executePass attempts every ready pending task, in descending priority
// order, mutating task status in place. Tasks whose dependencies are not
// all completed stay pending and are skipped this pass.
func (o *Orchestrator) executePass(ctx context.Context) error {
	if err := o.transition(StateExecuting, "dispatching tasks"); err != nil {
		return err
	}

	order := make([]*plan.Task, 0, len(o.context.Plan.Tasks))
	for i := range o.context.Plan.Tasks {
		order = append(order, &o.context.Plan.Tasks[i])
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Priority > order[j].Priority
	})

	for _, task := range order {
		if task.Status != plan.StatusPending {
			continue
		}
		if err := ctx.Err(); err != nil {
			return forgeerrors.Wrap(forgeerrors.ErrCodeExecCancelled, "run cancelled", err)
		}
		if !plan.Ready(o.context.Plan, task) {
			o.emit(EventInfo, "task blocked, dependencies not completed", map[string]string{
				"task": task.ID.String(),
			})
			continue
		}

		task.Status = plan.StatusInProgress
		o.emit(EventTaskStarted, task.Description, map[string]string{
			"task": task.ID.String(),
			"type": string(task.Type),
		})

		result := o.executor.Execute(ctx, *task, engine.ExecuteOptions{
			Preferences: engine.Preferences{Complexity: o.context.Plan.Complexity},
		})
		o.context.Results = append(o.context.Results, result)

		if result.Success {
			task.Status = plan.StatusCompleted
			o.writeArtifacts(result)
		} else {
			task.Status = plan.StatusFailed
		}
		o.emit(EventTaskCompleted, task.Description, map[string]string{
			"task":    task.ID.String(),
			"success": fmt.Sprintf("%t", result.Success),
			"engine":  result.Metadata.Engine,
		})
		o.context.UpdatedAt = o.now()
	}
	return nil
}

// scorePass scores every result accumulated so far. A scoring failure is
// phase-fatal: a missing score breaks the decision contract.
func (o *Orchestrator) scorePass() (*score.Score, error) {
	if err := o.transition(StateScoring, "assessing artifacts"); err != nil {
		return nil, err
	}

	sc, err := o.scorer.Score(o.context.Results, o.config.Dimensions)
	if err != nil {
		return nil, err
	}
	o.context.Scores = append(o.context.Scores, sc)

	o.emit(EventScoreCalculated, fmt.Sprintf("overall quality %d", sc.Overall), map[string]string{
		"overall": fmt.Sprintf("%d", sc.Overall),
		"issues":  fmt.Sprintf("%d", len(sc.Issues)),
	})
	return sc, nil
}

// decidePass applies the decision policy and appends the record.
func (o *Orchestrator) decidePass(sc *score.Score) DecisionRecord {
	// transition into deciding cannot fail from scoring
	_ = o.transition(StateDeciding, "applying decision policy")

	result := o.decider.Decide(decision.Inputs{
		Score:            sc,
		QualityThreshold: o.config.QualityThreshold,
		RetryCount:       o.context.RetryCount,
		MaxRetries:       o.config.MaxRetries,
		AutoApprove:      o.config.AutoApprove,
	})

	record := DecisionRecord{
		Decision: result.Decision,
		Reason:   result.Reason,
		Overall:  sc.Overall,
		At:       o.now(),
	}
	o.context.Decisions = append(o.context.Decisions, record)

	o.emit(EventDecisionMade, result.Reason, map[string]string{
		"decision": string(result.Decision),
	})
	return record
}

// transition moves the state machine, emitting the state-change event.
func (o *Orchestrator) transition(to State, why string) error {
	from := o.context.State
	if !CanTransition(from, to) {
		return forgeerrors.New(forgeerrors.ErrCodeOrchestratorFault,
			fmt.Sprintf("illegal transition %s -> %s", from, to))
	}
	o.context.State = to
	o.context.UpdatedAt = o.now()
	o.emit(EventStateChange, why, map[string]string{
		"from": string(from),
		"to":   string(to),
	})
	return nil
}

// fail forces the failed state from anywhere and records the reason.
func (o *Orchestrator) fail(reason string) {
	from := o.context.State
	o.context.State = StateFailed
	o.context.UpdatedAt = o.now()
	o.emit(EventError, reason, map[string]string{
		"from": string(from),
		"to":   string(StateFailed),
	})
	o.logger.Error("run failed", "session", o.context.SessionID.String(), "reason", reason)
	o.dumpContext()
}

// emit appends one event to the audit trail.
func (o *Orchestrator) emit(eventType EventType, message string, data map[string]string) {
	o.seq++
	o.events = append(o.events, Event{
		Seq:       o.seq,
		Type:      eventType,
		State:     o.context.State,
		Message:   message,
		Data:      data,
		Timestamp: o.now(),
	})
	if o.config.Verbose {
		o.logger.Info(message, "event", string(eventType), "seq", o.seq)
	}
}

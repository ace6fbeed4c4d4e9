package auto

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow/forgeflow/internal/decision"
	"github.com/forgeflow/forgeflow/internal/engine"
	forgeerrors "github.com/forgeflow/forgeflow/internal/errors"
	"github.com/forgeflow/forgeflow/internal/plan"
	"github.com/forgeflow/forgeflow/internal/score"
)

var testClock = func() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

// lowQualityClient emits artifacts that trip the security rules and carry
// no tests, keeping the composite score below any sane threshold.
type lowQualityClient struct{}

func (lowQualityClient) Invoke(context.Context, engine.InvokeRequest) (*engine.InvokeResponse, error) {
	return &engine.InvokeResponse{
		Files: []engine.GeneratedFile{{
			Path:    "src/generated.ts",
			Content: "eval(a)\neval(b)\neval(c)\neval(d)\neval(e)\neval(f)\n",
		}},
	}, nil
}

// failingClient reports a backend failure for every invocation.
type failingClient struct{}

func (failingClient) Invoke(context.Context, engine.InvokeRequest) (*engine.InvokeResponse, error) {
	return &engine.InvokeResponse{Errors: []string{"generation refused"}}, nil
}

func registryOf(client engine.Client) *engine.Registry {
	r := engine.NewRegistry()
	r.Register(engine.Config{
		Name:       "test",
		TaskTypes:  plan.AllTaskTypes(),
		CostWeight: 1.0,
		Priority:   1,
		Client:     client,
	})
	return r
}

func newTestOrchestrator(t *testing.T, registry *engine.Registry, config Config) *Orchestrator {
	t.Helper()
	if config.OutputDir == "" {
		config.OutputDir = t.TempDir()
	}
	o := NewOrchestrator(
		engine.NewExecutor(registry, nil),
		score.NewScorer(nil, score.WithClock(testClock)),
		decision.NewEngine(nil),
		nil,
		config,
	)
	o.now = testClock
	return o
}

func quietConfig() Config {
	config := DefaultConfig()
	config.Verbose = false
	return config
}

func TestRun_CompletesOnHighQualityOutput(t *testing.T) {
	registry := engine.NewRegistry()
	engine.RegisterBuiltins(registry)
	o := newTestOrchestrator(t, registry, quietConfig())

	result, err := o.Run(context.Background(), Request{Prompt: "build a blog with authentication"})
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, 0, result.RetryCount)
	require.Len(t, result.Decisions, 1)
	assert.Equal(t, decision.DecisionComplete, result.Decisions[0].Decision)

	for _, task := range result.Plan.Tasks {
		assert.Equal(t, plan.StatusCompleted, task.Status, "task %s", task.ID)
	}
}

func TestRun_ExhaustsRetriesThenAwaitsInput(t *testing.T) {
	o := newTestOrchestrator(t, registryOf(lowQualityClient{}), quietConfig())

	result, err := o.Run(context.Background(), Request{Prompt: "build a blog"})
	require.NoError(t, err, "awaiting-input is a deliberate pause, not an error")

	assert.Equal(t, StateAwaitingInput, result.State)
	assert.Equal(t, 3, result.RetryCount)

	require.Len(t, result.Decisions, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, decision.DecisionRetry, result.Decisions[i].Decision)
	}
	assert.Equal(t, decision.DecisionRequestInput, result.Decisions[3].Decision)
}

func TestRun_UnattendedCriticalIssueFails(t *testing.T) {
	config := quietConfig()
	config.AutoApprove = true
	o := newTestOrchestrator(t, registryOf(lowQualityClient{}), config)

	result, err := o.Run(context.Background(), Request{Prompt: "build a blog"})
	require.Error(t, err)

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, decision.DecisionFail, result.LatestDecision().Decision)
}

func TestRun_RetryCountIsMonotonic(t *testing.T) {
	o := newTestOrchestrator(t, registryOf(lowQualityClient{}), quietConfig())

	result, err := o.Run(context.Background(), Request{Prompt: "anything"})
	require.NoError(t, err)

	retries := 0
	for _, record := range result.Decisions {
		if record.Decision == decision.DecisionRetry {
			retries++
		}
	}
	assert.Equal(t, retries, result.RetryCount, "retry count moves only on retry decisions")
}

func TestRun_FailedRootBlocksDependents(t *testing.T) {
	config := quietConfig()
	// Raise the bar so the near-empty batch cannot pass the gate.
	config.QualityThreshold = 90
	o := newTestOrchestrator(t, registryOf(failingClient{}), config)

	result, err := o.Run(context.Background(), Request{Prompt: "build a blog"})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingInput, result.State)

	root := result.Plan.Root()
	require.NotNil(t, root)
	assert.Equal(t, plan.StatusFailed, root.Status)

	// Dependents never execute; they stay pending across every retry.
	for i := range result.Plan.Tasks {
		task := result.Plan.Tasks[i]
		if task.ID == root.ID {
			continue
		}
		assert.Equal(t, plan.StatusPending, task.Status, "task %s", task.ID)
	}

	var blocked int
	for _, event := range o.Events() {
		if event.Type == EventInfo && event.Data["task"] != "" {
			blocked++
		}
	}
	assert.Greater(t, blocked, 0, "blocked tasks appear on the audit trail")
}

func TestRun_CancellationFailsTheRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(t, registryOf(lowQualityClient{}), quietConfig())
	result, err := o.Run(ctx, Request{Prompt: "build a blog"})
	require.Error(t, err)

	assert.Equal(t, StateFailed, result.State)
	var forgeErr *forgeerrors.ForgeError
	require.ErrorAs(t, err, &forgeErr)
	assert.Equal(t, forgeerrors.ErrCodeExecCancelled, forgeErr.Code)
}

func TestRun_SecondRunOnTerminalSessionIsRejected(t *testing.T) {
	registry := engine.NewRegistry()
	engine.RegisterBuiltins(registry)
	o := newTestOrchestrator(t, registry, quietConfig())

	_, err := o.Run(context.Background(), Request{Prompt: "build a blog"})
	require.NoError(t, err)

	_, err = o.Run(context.Background(), Request{Prompt: "build a blog"})
	require.Error(t, err)

	var forgeErr *forgeerrors.ForgeError
	require.ErrorAs(t, err, &forgeErr)
	assert.Equal(t, forgeerrors.ErrCodeSessionTerminal, forgeErr.Code)
}

func TestRun_AwaitingInputIsResumable(t *testing.T) {
	o := newTestOrchestrator(t, registryOf(lowQualityClient{}), quietConfig())

	first, err := o.Run(context.Background(), Request{Prompt: "build a blog"})
	require.NoError(t, err)
	require.Equal(t, StateAwaitingInput, first.State)

	// Swap in a capable backend and resume with guidance.
	registry := engine.NewRegistry()
	engine.RegisterBuiltins(registry)
	o.executor = engine.NewExecutor(registry, nil)

	second, err := o.Run(context.Background(), Request{
		Prompt:          "build a blog",
		AdditionalInput: []string{"skip the comment section, focus on posts"},
	})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, second.State)
	assert.NotEqual(t, first.SessionID, second.SessionID, "a resume is a new session")

	// The resumed session owns its audit trail outright.
	events := o.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, 1, events[0].Seq, "event log restarts with the session")
	assert.Equal(t, second.SessionID.String(), events[0].Data["session"])
}

func TestRun_ApprovalGateRejectionFails(t *testing.T) {
	config := quietConfig()
	config.RequireApproval = true

	registry := engine.NewRegistry()
	engine.RegisterBuiltins(registry)
	o := newTestOrchestrator(t, registry, config)
	o.approvalGate = func(*plan.Plan) (bool, error) { return false, nil }

	result, err := o.Run(context.Background(), Request{Prompt: "build a blog"})
	require.Error(t, err)
	assert.Equal(t, StateFailed, result.State)
}

func TestRun_ApprovalGateAcceptanceProceeds(t *testing.T) {
	config := quietConfig()
	config.RequireApproval = true

	registry := engine.NewRegistry()
	engine.RegisterBuiltins(registry)
	o := newTestOrchestrator(t, registry, config)

	var gotPlan *plan.Plan
	o.approvalGate = func(p *plan.Plan) (bool, error) {
		gotPlan = p
		return true, nil
	}

	result, err := o.Run(context.Background(), Request{Prompt: "build a blog"})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	assert.NotNil(t, gotPlan)
}

func TestRun_PanicBecomesOrchestratorFault(t *testing.T) {
	registry := engine.NewRegistry()
	engine.RegisterBuiltins(registry)
	o := newTestOrchestrator(t, registry, quietConfig())
	o.decider = nil // nil collaborator blows up in the deciding phase

	var result *AutomationContext
	var err error
	require.NotPanics(t, func() {
		result, err = o.Run(context.Background(), Request{Prompt: "build a blog"})
	})
	require.Error(t, err)

	var forgeErr *forgeerrors.ForgeError
	require.ErrorAs(t, err, &forgeErr)
	assert.Equal(t, forgeerrors.ErrCodeOrchestratorFault, forgeErr.Code)
	assert.Equal(t, StateFailed, result.State)
}

func TestRun_EventLogIsAppendOnlyAndSequenced(t *testing.T) {
	registry := engine.NewRegistry()
	engine.RegisterBuiltins(registry)
	o := newTestOrchestrator(t, registry, quietConfig())

	_, err := o.Run(context.Background(), Request{Prompt: "build a blog with authentication"})
	require.NoError(t, err)

	events := o.Events()
	require.NotEmpty(t, events)
	for i, event := range events {
		assert.Equal(t, i+1, event.Seq)
	}

	var types []EventType
	for _, event := range events {
		types = append(types, event.Type)
	}
	assert.Contains(t, types, EventPlanCreated)
	assert.Contains(t, types, EventTaskStarted)
	assert.Contains(t, types, EventTaskCompleted)
	assert.Contains(t, types, EventScoreCalculated)
	assert.Contains(t, types, EventDecisionMade)
}

func TestRun_WritesArtifactsAndSessionDump(t *testing.T) {
	outputDir := t.TempDir()
	config := quietConfig()
	config.OutputDir = outputDir

	registry := engine.NewRegistry()
	engine.RegisterBuiltins(registry)
	o := newTestOrchestrator(t, registry, config)

	_, err := o.Run(context.Background(), Request{Prompt: "build a blog"})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(outputDir, "session.yaml"))
	assert.NoError(t, statErr, "session dump written on termination")

	_, statErr = os.Stat(filepath.Join(outputDir, "index.html"))
	assert.NoError(t, statErr, "scaffold artifact written to the output dir")
}

// escapingClient emits a file whose path climbs out of the output directory.
type escapingClient struct{}

func (escapingClient) Invoke(context.Context, engine.InvokeRequest) (*engine.InvokeResponse, error) {
	return &engine.InvokeResponse{
		Files: []engine.GeneratedFile{
			{Path: "src/app.ts", Content: "export const ok = true\n"},
			{Path: "../outside.txt", Content: "should never land\n"},
		},
	}, nil
}

func TestRun_ArtifactPathsStayInsideOutputDir(t *testing.T) {
	outputDir := t.TempDir()
	config := quietConfig()
	config.OutputDir = outputDir

	o := newTestOrchestrator(t, registryOf(escapingClient{}), config)

	_, err := o.Run(context.Background(), Request{Prompt: "build a blog"})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(outputDir), "outside.txt"))
	assert.True(t, os.IsNotExist(statErr), "escaping artifact must not be written")

	_, statErr = os.Stat(filepath.Join(outputDir, "src", "app.ts"))
	assert.NoError(t, statErr, "in-tree artifacts still land")

	var rejected bool
	for _, event := range o.Events() {
		if event.Type == EventError && event.Data["path"] == "../outside.txt" {
			rejected = true
		}
	}
	assert.True(t, rejected, "rejection appears on the audit trail")
}

func TestStateMachine_TerminalStatesHaveNoTransitions(t *testing.T) {
	all := []State{
		StateIdle, StatePlanning, StateExecuting, StateScoring,
		StateDeciding, StateCompleted, StateAwaitingInput, StateFailed,
	}
	for _, terminal := range []State{StateCompleted, StateFailed, StateAwaitingInput} {
		for _, next := range all {
			assert.False(t, CanTransition(terminal, next), "%s -> %s", terminal, next)
		}
	}
}

func TestStateMachine_HappyPathTransitions(t *testing.T) {
	assert.True(t, CanTransition(StateIdle, StatePlanning))
	assert.True(t, CanTransition(StatePlanning, StateExecuting))
	assert.True(t, CanTransition(StateExecuting, StateScoring))
	assert.True(t, CanTransition(StateScoring, StateDeciding))
	assert.True(t, CanTransition(StateDeciding, StateExecuting), "retry loops back to executing")
	assert.True(t, CanTransition(StateDeciding, StateCompleted))
	assert.True(t, CanTransition(StateDeciding, StateAwaitingInput))

	assert.False(t, CanTransition(StateIdle, StateExecuting), "planning cannot be skipped")
	assert.False(t, CanTransition(StateExecuting, StateDeciding), "scoring cannot be skipped")
}

func TestConfig_Defaults(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 70, config.QualityThreshold)
	assert.False(t, config.AutoApprove)
	assert.True(t, config.Dimensions.Security)
}

func TestConfig_Validate(t *testing.T) {
	config := DefaultConfig()
	config.QualityThreshold = 130
	assert.Error(t, config.Validate())

	config = DefaultConfig()
	config.MaxRetries = -1
	assert.Error(t, config.Validate())

	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forgeflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retries: 5\nquality_threshold: 85\n"), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, 85, config.QualityThreshold)
	assert.True(t, config.Dimensions.Tests, "unset fields keep their defaults")
}

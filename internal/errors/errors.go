package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Engine errors (ENGINE-001 to ENGINE-099)
	ErrCodeUnsupportedTask ErrorCode = "ENGINE-001"
	ErrCodeEngineConfig    ErrorCode = "ENGINE-002"
	ErrCodeEngineNotFound  ErrorCode = "ENGINE-003"

	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanInvalid     ErrorCode = "PLAN-001"
	ErrCodePlanCyclicDep   ErrorCode = "PLAN-002"
	ErrCodePlanTaskMissing ErrorCode = "PLAN-003"

	// Execution errors (EXEC-001 to EXEC-099)
	ErrCodeExecutionFailure ErrorCode = "EXEC-001"
	ErrCodeExecTimeout      ErrorCode = "EXEC-002"
	ErrCodeExecCancelled    ErrorCode = "EXEC-003"

	// Scoring errors (SCORE-001 to SCORE-099)
	ErrCodeScoringFailure ErrorCode = "SCORE-001"

	// Decision errors (DECIDE-001 to DECIDE-099)
	ErrCodeDecisionAmbiguous ErrorCode = "DECIDE-001"

	// Orchestrator errors (ORCH-001 to ORCH-099)
	ErrCodeOrchestratorFault ErrorCode = "ORCH-001"
	ErrCodeSessionTerminal   ErrorCode = "ORCH-002"
	ErrCodeAwaitingInput     ErrorCode = "ORCH-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileWriteFailed ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeArchiveFailed   ErrorCode = "IO-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
)

// ForgeError represents an enhanced error with code, suggestions, and documentation
type ForgeError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *ForgeError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ForgeError) Unwrap() error {
	return e.Cause
}

// New creates a new ForgeError
func New(code ErrorCode, message string) *ForgeError {
	return &ForgeError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ForgeError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ForgeError {
	return &ForgeError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ForgeError) WithSuggestion(suggestion string) *ForgeError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ForgeError) WithSuggestions(suggestions ...string) *ForgeError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors for frequently used errors

// NewUnsupportedTaskError indicates no registered engine advertises the task type
func NewUnsupportedTaskError(taskType string) *ForgeError {
	return New(ErrCodeUnsupportedTask, fmt.Sprintf("no engine supports task type: %s", taskType)).
		WithSuggestion("Register an engine advertising this task type").
		WithSuggestion("Run 'forgeflow engines' to list registered engines")
}

// NewPlanCyclicDepError indicates the task graph contains a cycle
func NewPlanCyclicDepError(taskID string, dep string) *ForgeError {
	return New(ErrCodePlanCyclicDep, fmt.Sprintf("task %s has a forward or circular dependency on %s", taskID, dep)).
		WithSuggestion("Regenerate the plan; task dependencies must form a DAG")
}

// NewPlanTaskMissingError indicates a dependency refers to an unknown task
func NewPlanTaskMissingError(taskID string, dep string) *ForgeError {
	return New(ErrCodePlanTaskMissing, fmt.Sprintf("task %s depends on non-existent task %s", taskID, dep))
}

// NewScoringFailureError indicates the scorer could not compute a Score
func NewScoringFailureError(details string, cause error) *ForgeError {
	return Wrap(ErrCodeScoringFailure, fmt.Sprintf("scoring failed: %s", details), cause).
		WithSuggestion("A missing score breaks the decision contract; the run transitions to failed")
}

// NewSessionTerminalError indicates an operation on an already-terminal session
func NewSessionTerminalError(state string) *ForgeError {
	return New(ErrCodeSessionTerminal, fmt.Sprintf("session already reached terminal state: %s", state)).
		WithSuggestion("Start a new run; terminal states have no outgoing transitions")
}

// NewAwaitingInputError signals the deliberate awaiting-input pause to the CLI
func NewAwaitingInputError() *ForgeError {
	return New(ErrCodeAwaitingInput, "run paused awaiting additional input").
		WithSuggestion("Re-run with refined guidance to resume the session")
}

package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/forgeflow/forgeflow/internal/errors"
	"github.com/forgeflow/forgeflow/internal/log"
	"github.com/forgeflow/forgeflow/internal/plan"
)

// Executor dispatches tasks to generation backends via the registry and
// normalizes every outcome into an ExecutionResult. It never lets a
// backend fault escape past this boundary: the orchestrator must be able
// to continue to scoring even under partial failure.
type Executor struct {
	registry *Registry
	logger   *log.Logger
}

// NewExecutor creates a task executor over the given registry
func NewExecutor(registry *Registry, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Executor{registry: registry, logger: logger}
}

// ExecuteOptions carries per-run execution settings
type ExecuteOptions struct {
	Preferences  Preferences
	StyleContext map[string]string
}

// Execute runs one task against its selected backend. It always returns a
// result; backend errors, reported failures, and panics all become a
// non-success ExecutionResult with a structured error.
func (e *Executor) Execute(ctx context.Context, task plan.Task, opts ExecuteOptions) (result ExecutionResult) {
	start := time.Now()
	result = ExecutionResult{TaskID: task.ID}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("backend panicked", "task", task.ID.String(), "panic", fmt.Sprint(r))
			result = ExecutionResult{
				TaskID:  task.ID,
				Success: false,
				Errors: []ExecutionError{{
					Kind:    ErrorKindRuntime,
					Message: fmt.Sprintf("backend panic: %v", r),
				}},
				Metadata: ResultMetadata{Duration: time.Since(start)},
			}
		}
	}()

	cfg, err := e.registry.Select(task.Type, opts.Preferences)
	if err != nil {
		result.Errors = append(result.Errors, ExecutionError{
			Kind:    ErrorKindSelection,
			Message: err.Error(),
		})
		result.Metadata.Duration = time.Since(start)
		return result
	}
	result.Metadata.Engine = cfg.Name
	result.Metadata.CostWeight = cfg.CostWeight

	e.logger.Debug("dispatching task",
		"task", task.ID.String(),
		"type", string(task.Type),
		"engine", cfg.Name,
	)

	resp, err := cfg.Client.Invoke(ctx, InvokeRequest{
		TaskType:     task.Type,
		Description:  task.Description,
		StyleContext: opts.StyleContext,
	})
	result.Metadata.Duration = time.Since(start)

	if err != nil {
		result.Errors = append(result.Errors, ExecutionError{
			Kind:    ErrorKindRuntime,
			Message: errors.Wrap(errors.ErrCodeExecutionFailure, "invoke backend", err).Error(),
		})
		return result
	}
	if resp == nil {
		result.Errors = append(result.Errors, ExecutionError{
			Kind:    ErrorKindRuntime,
			Message: "backend returned no response",
		})
		return result
	}

	result.GeneratedFiles = resp.Files
	result.ModifiedFiles = resp.Modified
	result.Warnings = resp.Warnings
	for _, msg := range resp.Errors {
		result.Errors = append(result.Errors, ExecutionError{
			Kind:    ErrorKindBackend,
			Message: msg,
		})
	}

	result.Success = len(result.Errors) == 0
	if len(result.GeneratedFiles) > 0 {
		result.Metadata.ContentHash = hashFiles(result.GeneratedFiles)
	}

	return result
}

// hashFiles digests all generated content so the audit trail can tie a
// score back to the exact artifacts it judged.
func hashFiles(files []GeneratedFile) string {
	var b strings.Builder
	for _, f := range files {
		b.WriteString(f.Path)
		b.WriteString("\x00")
		b.WriteString(f.Content)
		b.WriteString("\x00")
	}
	return plan.HashContent(b.String())
}

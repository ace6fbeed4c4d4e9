package engine

import (
	"context"
	"time"

	"github.com/forgeflow/forgeflow/internal/domain"
	"github.com/forgeflow/forgeflow/internal/plan"
)

// Client is the universal interface a generation backend must implement.
// Backends must not panic: failures are reported through the returned
// error or the response's Errors list, and the executor normalizes both.
type Client interface {
	// Invoke performs one generation call for a task
	Invoke(ctx context.Context, req InvokeRequest) (*InvokeResponse, error)
}

// InvokeRequest carries one task to a generation backend
type InvokeRequest struct {
	TaskType    plan.TaskType
	Description string

	// StyleContext is an optional free-form payload (stack, conventions,
	// prior artifacts) the backend may use to shape its output
	StyleContext map[string]string
}

// GeneratedFile is one artifact produced by a backend
type GeneratedFile struct {
	Path    string `json:"path" yaml:"path"`
	Content string `json:"content" yaml:"content"`
}

// InvokeResponse is a backend's normalized reply
type InvokeResponse struct {
	Files    []GeneratedFile
	Modified []string
	Errors   []string
	Warnings []string
	Metadata map[string]string
}

// ErrorKind classifies an execution error
type ErrorKind string

const (
	// ErrorKindRuntime covers backend faults, panics, and transport errors
	ErrorKindRuntime ErrorKind = "runtime"
	// ErrorKindSelection covers engine-selection failures (unsupported task)
	ErrorKindSelection ErrorKind = "selection"
	// ErrorKindBackend covers failures the backend itself reported
	ErrorKindBackend ErrorKind = "backend"
)

// ExecutionError is a structured per-task error
type ExecutionError struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
}

// ResultMetadata records which engine served the task and what it cost
type ResultMetadata struct {
	Engine      string        `json:"engine" yaml:"engine"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	CostWeight  float64       `json:"cost_weight" yaml:"cost_weight"`
	ContentHash string        `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
}

// ExecutionResult is the normalized outcome of dispatching one task
type ExecutionResult struct {
	TaskID         domain.TaskID    `json:"task_id" yaml:"task_id"`
	Success        bool             `json:"success" yaml:"success"`
	GeneratedFiles []GeneratedFile  `json:"generated_files,omitempty" yaml:"generated_files,omitempty"`
	ModifiedFiles  []string         `json:"modified_files,omitempty" yaml:"modified_files,omitempty"`
	Errors         []ExecutionError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings       []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Metadata       ResultMetadata   `json:"metadata" yaml:"metadata"`
}

// Budget expresses a cost preference for engine selection
type Budget string

const (
	BudgetNormal Budget = ""
	BudgetLow    Budget = "low"
)

// Preferences bias engine selection for one task
type Preferences struct {
	Complexity    plan.Complexity
	PreferSpeed   bool
	PreferQuality bool
	Budget        Budget
}

// Config describes one registered engine: its capabilities and the client
// used to invoke it. CostWeight doubles as a quality proxy.
type Config struct {
	Name       string
	TaskTypes  []plan.TaskType
	Fast       bool
	CostWeight float64
	Priority   int
	Client     Client
}

// Supports reports whether the engine advertises the given task type.
func (c Config) Supports(taskType plan.TaskType) bool {
	for _, t := range c.TaskTypes {
		if t == taskType {
			return true
		}
	}
	return false
}

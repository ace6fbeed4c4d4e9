package plan

import (
	"time"

	"github.com/forgeflow/forgeflow/internal/domain"
)

// TaskType classifies a unit of generation work. The set is closed;
// engines advertise the types they can serve.
type TaskType string

const (
	TaskTypePlan      TaskType = "plan"
	TaskTypeScaffold  TaskType = "scaffold"
	TaskTypeImplement TaskType = "implement"
	TaskTypeRefactor  TaskType = "refactor"
	TaskTypeTestGen   TaskType = "test-gen"
	TaskTypeDocs      TaskType = "docs"
	TaskTypeQuickFix  TaskType = "quick-fix"
	TaskTypeValidate  TaskType = "validate"
	TaskTypeReasoning TaskType = "reasoning"
)

// AllTaskTypes lists every valid task type, in declaration order.
func AllTaskTypes() []TaskType {
	return []TaskType{
		TaskTypePlan, TaskTypeScaffold, TaskTypeImplement, TaskTypeRefactor,
		TaskTypeTestGen, TaskTypeDocs, TaskTypeQuickFix, TaskTypeValidate,
		TaskTypeReasoning,
	}
}

// Valid reports whether the task type is a member of the closed set.
func (t TaskType) Valid() bool {
	for _, known := range AllTaskTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// TaskStatus tracks a task through its lifecycle. Transitions only move
// forward: pending → in-progress → {completed, failed}.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// CanTransition reports whether moving from the current status to next is
// a legal forward transition.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// Terminal reports whether the status has no outgoing transitions.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task represents a single unit of generation work in the plan
type Task struct {
	ID          domain.TaskID   `json:"id" yaml:"id"`
	Type        TaskType        `json:"type" yaml:"type"`
	Description string          `json:"description" yaml:"description"`
	DependsOn   []domain.TaskID `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Status      TaskStatus      `json:"status" yaml:"status"`
	Priority    int             `json:"priority" yaml:"priority"`
}

// Field is one attribute of a data model, in declaration order.
type Field struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// DataModel describes a domain entity the generated application should persist.
type DataModel struct {
	Name   string  `json:"name" yaml:"name"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Architecture sketches the generated project: tech stack, directory
// layout (directory → file stems), and domain entities.
type Architecture struct {
	Stack       []string            `json:"stack" yaml:"stack"`
	Directories map[string][]string `json:"directories" yaml:"directories"`
	DataModels  []DataModel         `json:"data_models,omitempty" yaml:"data_models,omitempty"`
}

// Complexity is a coarse estimate of plan size.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Plan is the decomposition of a build request: objectives, an
// architecture sketch, and a dependency-ordered task DAG. Immutable after
// creation except for Task status mutation by the orchestrator.
type Plan struct {
	ID           string       `json:"id" yaml:"id"`
	Prompt       string       `json:"prompt" yaml:"prompt"`
	Objectives   []string     `json:"objectives" yaml:"objectives"`
	Architecture Architecture `json:"architecture" yaml:"architecture"`
	Tasks        []Task       `json:"tasks" yaml:"tasks"`
	Complexity   Complexity   `json:"complexity" yaml:"complexity"`
	Fingerprint  string       `json:"fingerprint" yaml:"fingerprint"`
	CreatedAt    time.Time    `json:"created_at" yaml:"created_at"`
}

// Task returns a pointer to the task with the given id, or nil.
func (p *Plan) Task(id domain.TaskID) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// Root returns the single zero-dependency task of the plan.
func (p *Plan) Root() *Task {
	for i := range p.Tasks {
		if len(p.Tasks[i].DependsOn) == 0 {
			return &p.Tasks[i]
		}
	}
	return nil
}

package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgeflow/forgeflow/internal/detect"
	"github.com/forgeflow/forgeflow/internal/domain"
)

// Task priorities. Execution attempts tasks in descending priority order,
// so the scaffold root always runs first and docs always run last.
const (
	priorityScaffold  = 100
	priorityImplement = 50
	priorityTestGen   = 25
	priorityDocs      = 10
)

// Build converts a free-text goal (plus optional existing-project context)
// into a Plan. It never fails on empty or unstructured input: the result
// always carries at least one generic objective, the two standing
// objectives, and a valid single-root task DAG.
func Build(prompt string, repoCtx *detect.Context) (*Plan, error) {
	matched := classify(prompt, repoCtx)

	objectives := []string{genericObjective(prompt)}
	for _, rule := range matched {
		objectives = append(objectives, rule.objective)
	}
	objectives = append(objectives, objectiveAccessibility, objectiveTestCoverage)

	arch := buildArchitecture(matched)
	tasks := decompose(matched)

	p := &Plan{
		ID:           "plan-" + uuid.NewString(),
		Prompt:       prompt,
		Objectives:   objectives,
		Architecture: arch,
		Tasks:        tasks,
		Complexity:   estimateComplexity(len(objectives), len(tasks)),
		CreatedAt:    time.Now().UTC(),
	}
	p.Fingerprint = Fingerprint(p)

	if err := Validate(p); err != nil {
		return nil, fmt.Errorf("built plan failed validation: %w", err)
	}

	return p, nil
}

// classify runs the fixed keyword rule table against the prompt plus any
// detected repository features. Each rule matches at most once.
func classify(prompt string, repoCtx *detect.Context) []objectiveRule {
	text := strings.ToLower(prompt)
	if repoCtx != nil {
		text += " " + strings.ToLower(strings.Join(repoCtx.Features, " "))
	}

	var matched []objectiveRule
	for _, rule := range objectiveRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, rule)
				break
			}
		}
	}
	return matched
}

func genericObjective(prompt string) string {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "Deliver a minimal working application"
	}
	return fmt.Sprintf("Deliver a working application for: %s", trimmed)
}

// buildArchitecture starts from the fixed baseline and applies the
// additions gated on each matched objective kind.
func buildArchitecture(matched []objectiveRule) Architecture {
	arch := Architecture{
		Stack:       append([]string{}, baselineStack...),
		Directories: baselineDirectories(),
	}

	for _, rule := range matched {
		add, ok := architectureAdditions[rule.kind]
		if !ok {
			continue
		}
		arch.Stack = append(arch.Stack, add.stack...)
		for dir, stems := range add.directories {
			arch.Directories[dir] = append(arch.Directories[dir], stems...)
		}
		arch.DataModels = append(arch.DataModels, add.dataModels...)
	}

	return arch
}

// decompose builds the task DAG: one scaffold root, one implementation
// task per matched feature objective, one test-generation task depending
// on every implementation task (on the root when there are none, since the
// test-coverage objective always stands), and one documentation task
// depending on everything else.
func decompose(matched []objectiveRule) []Task {
	root := Task{
		ID:          domain.TaskID("scaffold"),
		Type:        TaskTypeScaffold,
		Description: "Scaffold the project structure and baseline stack",
		Status:      StatusPending,
		Priority:    priorityScaffold,
	}
	tasks := []Task{root}

	var implIDs []domain.TaskID
	for i, rule := range matched {
		id := domain.TaskID(fmt.Sprintf("impl-%s", rule.kind))
		tasks = append(tasks, Task{
			ID:          id,
			Type:        TaskTypeImplement,
			Description: rule.objective,
			DependsOn:   []domain.TaskID{root.ID},
			Status:      StatusPending,
			Priority:    priorityImplement - i,
		})
		implIDs = append(implIDs, id)
	}

	testDeps := implIDs
	if len(testDeps) == 0 {
		testDeps = []domain.TaskID{root.ID}
	}
	tasks = append(tasks, Task{
		ID:          domain.TaskID("test-gen"),
		Type:        TaskTypeTestGen,
		Description: "Generate automated tests covering implemented features",
		DependsOn:   append([]domain.TaskID{}, testDeps...),
		Status:      StatusPending,
		Priority:    priorityTestGen,
	})

	var docDeps []domain.TaskID
	for _, t := range tasks {
		docDeps = append(docDeps, t.ID)
	}
	tasks = append(tasks, Task{
		ID:          domain.TaskID("docs"),
		Type:        TaskTypeDocs,
		Description: "Write project documentation and usage instructions",
		DependsOn:   docDeps,
		Status:      StatusPending,
		Priority:    priorityDocs,
	})

	return tasks
}

// estimateComplexity is monotonic in both objective and task counts.
func estimateComplexity(objectives, tasks int) Complexity {
	switch {
	case objectives <= 3 && tasks <= 5:
		return ComplexityLow
	case objectives <= 6 && tasks <= 10:
		return ComplexityMedium
	default:
		return ComplexityHigh
	}
}

package plan

import (
	"fmt"

	"github.com/forgeflow/forgeflow/internal/domain"
	"github.com/forgeflow/forgeflow/internal/errors"
)

// Validate checks the structural invariants of a plan: unique task ids,
// dependencies referring to tasks in the same plan, an acyclic dependency
// graph, and exactly one zero-dependency root.
func Validate(p *Plan) error {
	if p == nil {
		return errors.New(errors.ErrCodePlanInvalid, "plan is nil")
	}
	if len(p.Tasks) == 0 {
		return errors.New(errors.ErrCodePlanInvalid, "plan has no tasks")
	}

	ids := make(map[domain.TaskID]bool, len(p.Tasks))
	for _, task := range p.Tasks {
		if err := task.ID.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodePlanInvalid, "invalid task id", err)
		}
		if !task.Type.Valid() {
			return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("task %s has unknown type %q", task.ID, task.Type))
		}
		if ids[task.ID] {
			return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("duplicate task id %s", task.ID))
		}
		ids[task.ID] = true
	}

	roots := 0
	for _, task := range p.Tasks {
		if len(task.DependsOn) == 0 {
			roots++
		}
		for _, dep := range task.DependsOn {
			if !ids[dep] {
				return errors.NewPlanTaskMissingError(task.ID.String(), dep.String())
			}
			if dep == task.ID {
				return errors.NewPlanCyclicDepError(task.ID.String(), dep.String())
			}
		}
	}
	if roots != 1 {
		return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("plan must have exactly one root task, found %d", roots))
	}

	return detectCycles(p.Tasks)
}

// detectCycles runs a depth-first search over the dependency edges.
func detectCycles(tasks []Task) error {
	deps := make(map[domain.TaskID][]domain.TaskID, len(tasks))
	for _, task := range tasks {
		deps[task.ID] = task.DependsOn
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[domain.TaskID]int, len(tasks))

	var visit func(id domain.TaskID) error
	visit = func(id domain.TaskID) error {
		switch state[id] {
		case visiting:
			return errors.NewPlanCyclicDepError(id.String(), id.String())
		case done:
			return nil
		}
		state[id] = visiting
		for _, dep := range deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for _, task := range tasks {
		if err := visit(task.ID); err != nil {
			return err
		}
	}
	return nil
}

// Ready reports whether every dependency of the task is completed in the
// given plan. A task may enter in-progress only once this holds.
func Ready(p *Plan, task *Task) bool {
	for _, dep := range task.DependsOn {
		depTask := p.Task(dep)
		if depTask == nil || depTask.Status != StatusCompleted {
			return false
		}
	}
	return true
}

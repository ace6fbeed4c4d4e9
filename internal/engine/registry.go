package engine

import (
	"sort"
	"sync"

	"github.com/forgeflow/forgeflow/internal/errors"
	"github.com/forgeflow/forgeflow/internal/plan"
)

// Registry holds the engine capability table. It is explicitly constructed
// and injected rather than process-global, so tests can substitute
// fixtures without cross-test interference.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Config
	seq     map[string]int // registration order, later wins ties
	nextSeq int
}

// NewRegistry creates an empty engine registry
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Config),
		seq:     make(map[string]int),
	}
}

// Register adds an engine or overwrites an existing one by name. It is
// idempotent: re-registering the same name replaces the entry and bumps
// its recency.
func (r *Registry) Register(cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.engines[cfg.Name] = cfg
	r.seq[cfg.Name] = r.nextSeq
	r.nextSeq++
}

// Get retrieves an engine by name
func (r *Registry) Get(name string) (Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.engines[name]
	if !exists {
		return Config{}, errors.New(errors.ErrCodeEngineNotFound, "engine not registered: "+name)
	}
	return cfg, nil
}

// List returns all registered engine names sorted by registration order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return r.seq[names[i]] < r.seq[names[j]]
	})
	return names
}

// Select picks the best-fit engine for a task type under the given
// preferences:
//
//  1. Filter to engines advertising the task type; none is UnsupportedTask.
//  2. preferSpeed narrows to fast engines only when that subset is non-empty.
//  3. preferQuality orders by descending cost weight.
//  4. budget=low orders by ascending cost weight, taking precedence over 3.
//  5. Ties break by descending priority, then most-recently-registered.
//
// Pure over the registry contents: it never mutates state.
func (r *Registry) Select(taskType plan.TaskType, prefs Preferences) (Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []Config
	for _, cfg := range r.engines {
		if cfg.Supports(taskType) {
			candidates = append(candidates, cfg)
		}
	}
	if len(candidates) == 0 {
		return Config{}, errors.NewUnsupportedTaskError(string(taskType))
	}

	if prefs.PreferSpeed {
		var fast []Config
		for _, cfg := range candidates {
			if cfg.Fast {
				fast = append(fast, cfg)
			}
		}
		if len(fast) > 0 {
			candidates = fast
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		switch {
		case prefs.Budget == BudgetLow:
			if a.CostWeight != b.CostWeight {
				return a.CostWeight < b.CostWeight
			}
		case prefs.PreferQuality:
			if a.CostWeight != b.CostWeight {
				return a.CostWeight > b.CostWeight
			}
		}

		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return r.seq[a.Name] > r.seq[b.Name]
	})

	return candidates[0], nil
}

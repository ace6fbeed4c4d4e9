package domain

import (
	"fmt"
	"regexp"
)

// TaskID names one task inside a plan. The plan builder mints these as
// kebab-case slugs (scaffold, impl-content, test-gen) and dependency edges
// reference them, so an id must stay stable and machine-comparable.
type TaskID string

const taskIDMaxLen = 100

// One hyphen between lowercase alphanumeric runs, first run starting with
// a letter. This shape rules out doubled and trailing hyphens in one pass.
var taskIDSlug = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// NewTaskID validates value and wraps it as a TaskID.
func NewTaskID(value string) (TaskID, error) {
	id := TaskID(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate reports whether the id is a well-formed plan slug.
func (t TaskID) Validate() error {
	switch s := string(t); {
	case s == "":
		return fmt.Errorf("task ID cannot be empty")
	case len(s) > taskIDMaxLen:
		return fmt.Errorf("task ID %q exceeds maximum length of %d characters", s, taskIDMaxLen)
	case !taskIDSlug.MatchString(s):
		return fmt.Errorf("task ID %q is not a lowercase kebab-case slug", s)
	}
	return nil
}

func (t TaskID) String() string {
	return string(t)
}

// Equals compares two task ids.
func (t TaskID) Equals(other TaskID) bool {
	return t == other
}

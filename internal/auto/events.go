package auto

import "time"

// EventType categorizes an audit-trail event
type EventType string

const (
	EventStateChange     EventType = "state-change"
	EventPlanCreated     EventType = "plan-created"
	EventTaskStarted     EventType = "task-started"
	EventTaskCompleted   EventType = "task-completed"
	EventScoreCalculated EventType = "score-calculated"
	EventDecisionMade    EventType = "decision-made"
	EventError           EventType = "error"
	EventInfo            EventType = "info"
)

// Event is one entry in the append-only audit trail. Seq is monotonic
// within a session; the log is the sole audit trail and stays retrievable
// after termination.
type Event struct {
	Seq       int               `json:"seq" yaml:"seq"`
	Type      EventType         `json:"type" yaml:"type"`
	State     State             `json:"state" yaml:"state"`
	Message   string            `json:"message" yaml:"message"`
	Data      map[string]string `json:"data,omitempty" yaml:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
}

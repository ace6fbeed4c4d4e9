package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// SessionID identifies one end-to-end orchestrator run.
type SessionID string

// NewSessionID generates a fresh random session identifier.
func NewSessionID() SessionID {
	return SessionID("session-" + uuid.NewString())
}

// ParseSessionID validates an externally supplied session identifier.
func ParseSessionID(value string) (SessionID, error) {
	if value == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(value), nil
}

// String returns the string representation
func (s SessionID) String() string {
	return string(s)
}

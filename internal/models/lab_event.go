package models

import "time"

// Lab event types.
const (
	EventSessionStart   = "SESSION_START"
	EventSectionChange  = "SECTION_CHANGE"
	EventCircuitChange  = "CIRCUIT_CHANGE"
	EventShortTriggered = "SHORT_TRIGGERED"
	EventFuseBlown      = "FUSE_BLOWN"
	EventFuseReset      = "FUSE_RESET"
	EventQuizToggle     = "QUIZ_TOGGLE"
	EventNarration      = "NARRATION"
	EventSessionEnd     = "SESSION_END"
)

// LabEvent is a single activity log entry.
type LabEvent struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // SESSION_START | SECTION_CHANGE | CIRCUIT_CHANGE | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// EventTypes lists every type in the order a session usually produces them.
var EventTypes = []string{
	EventSessionStart,
	EventSectionChange,
	EventCircuitChange,
	EventShortTriggered,
	EventFuseBlown,
	EventFuseReset,
	EventQuizToggle,
	EventNarration,
	EventSessionEnd,
}

// IsEventType reports whether s is a known event type.
func IsEventType(s string) bool {
	for _, t := range EventTypes {
		if t == s {
			return true
		}
	}
	return false
}

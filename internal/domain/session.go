package domain

import "time"

// Session is one bounded period of coding activity. It is created active,
// accumulates run and error counters, and becomes immutable once completed.
type Session struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`

	// Duration in whole minutes, set only when the session ends.
	Duration int `json:"duration"`

	CodeRuns int `json:"codeRuns"`
	Errors   int `json:"errors"`
	XPEarned int `json:"xpEarned"`
	XPLost   int `json:"xpLost"`

	Status string `json:"status"`

	ExecutionHistory []ExecutionEntry `json:"executionHistory,omitempty"`
	ErrorHistory     []ErrorEntry     `json:"errorHistory,omitempty"`
}

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

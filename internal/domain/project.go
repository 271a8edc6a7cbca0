package domain

import "time"

// Project is a saved snapshot of the three editor panes. Projects are never
// updated in place: re-saving creates a new record with a new id.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	HTML        string   `json:"html"`
	CSS         string   `json:"css"`
	JS          string   `json:"js"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`

	// SessionID references the session the project was saved from, if any.
	SessionID string `json:"sessionId,omitempty"`

	Statistics ProjectStatistics `json:"statistics"`
}

// ProjectStatistics holds per-blob non-blank line counts.
type ProjectStatistics struct {
	HTMLLines  int `json:"htmlLines"`
	CSSLines   int `json:"cssLines"`
	JSLines    int `json:"jsLines"`
	TotalLines int `json:"totalLines"`
}

package domain

import (
	"context"
	"time"
)

// SchemaVersion is stamped into every persisted user document and the
// master index so future migrations can detect old records.
const SchemaVersion = "2.0.0"

// WelcomeBonusXP is granted once when an account is created.
const WelcomeBonusXP = 50

// User is the aggregate root for a single account: identity, progression
// state, and every collection the progression engine appends to. It is
// persisted as one JSON document per user.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`

	XP     int `json:"xp"`
	Level  int `json:"level"`
	Streak int `json:"streak"`

	Statistics Statistics `json:"statistics"`

	Achievements []Achievement `json:"achievements"`

	// Projects is ordered most-recent-first.
	Projects []Project `json:"projects"`

	// Sessions is ordered by creation time.
	Sessions []Session `json:"sessions"`

	XPHistory        []XPEntry        `json:"xpHistory"`
	ErrorHistory     []ErrorEntry     `json:"errorHistory"`
	ExecutionHistory []ExecutionEntry `json:"executionHistory"`

	Settings Settings `json:"settings"`
	Metadata Metadata `json:"metadata"`
}

// Statistics holds lifetime counters derived from user activity.
type Statistics struct {
	TotalSessions      int     `json:"totalSessions"`
	TotalCodeRuns      int     `json:"totalCodeRuns"`
	TotalProjects      int     `json:"totalProjects"`
	TotalErrors        int     `json:"totalErrors"`
	TotalXPEarned      int     `json:"totalXpEarned"`
	TotalXPLost        int     `json:"totalXpLost"`
	HTMLLines          int     `json:"htmlLines"`
	CSSLines           int     `json:"cssLines"`
	JSLines            int     `json:"jsLines"`
	TotalLines         int     `json:"totalLines"`
	AverageSessionMins float64 `json:"averageSessionDuration"`
	PerfectSessions    int     `json:"perfectSessions"`
	ProductiveSessions int     `json:"productiveSessions"`
}

// Achievement is a one-time milestone. IDs are unique within a user; the
// achievement engine checks membership before granting.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlockedAt"`
	XPBonus     int       `json:"xpBonus"`
}

// XPEntry is one append-only record in the XP history log.
type XPEntry struct {
	ID        string    `json:"id"`
	Change    int       `json:"change"`
	Reason    string    `json:"reason"`
	BeforeXP  int       `json:"oldXp"`
	AfterXP   int       `json:"newXp"`
	LeveledUp bool      `json:"leveledUp"`
	NewLevel  int       `json:"newLevel"`
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorEntry records one XP-costing error event.
type ErrorEntry struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Line      int       `json:"line,omitempty"`
	File      string    `json:"file,omitempty"`
	XPLost    int       `json:"xpLost"`
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Fixed     bool      `json:"fixed"`
}

// LineCount breaks a run's code down per language.
type LineCount struct {
	HTML  int `json:"html"`
	CSS   int `json:"css"`
	JS    int `json:"js"`
	Total int `json:"total"`
}

// ExecutionEntry records one code run, successful or not.
type ExecutionEntry struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"sessionId,omitempty"`
	Success         bool      `json:"success"`
	ErrorCount      int       `json:"errorCount"`
	WarningCount    int       `json:"warningCount"`
	LineCount       LineCount `json:"lineCount"`
	ExecutionTimeMs float64   `json:"executionTimeMs"`
	Timestamp       time.Time `json:"timestamp"`
}

// Settings holds user preferences. The progression engine never reads them;
// they ride along in the document.
type Settings struct {
	Theme         string `json:"theme"`
	AutoSave      bool   `json:"autoSave"`
	Notifications bool   `json:"notifications"`
	SoundEnabled  bool   `json:"soundEnabled"`
	Difficulty    string `json:"difficulty"`
	Language      string `json:"language"`
}

// Metadata carries document bookkeeping timestamps.
type Metadata struct {
	CreatedAt    time.Time `json:"createdAt"`
	LastLogin    time.Time `json:"lastLoginDate"`
	LastActivity time.Time `json:"lastActivity"`
	Version      string    `json:"version"`
}

// NewUser builds a fresh account with the welcome bonus applied: 50 XP,
// level 1, the welcome achievement, and a seed XP history entry.
func NewUser(id, username, email, passwordHash string, now time.Time) *User {
	return &User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		XP:           WelcomeBonusXP,
		Level:        1,
		Statistics: Statistics{
			TotalXPEarned: WelcomeBonusXP,
		},
		Achievements: []Achievement{
			{
				ID:          "welcome",
				Name:        "Welcome to Coding!",
				Description: "Created your account",
				UnlockedAt:  now,
				XPBonus:     WelcomeBonusXP,
			},
		},
		XPHistory: []XPEntry{
			{
				ID:        id + "-welcome",
				Change:    WelcomeBonusXP,
				Reason:    "Welcome bonus",
				BeforeXP:  0,
				AfterXP:   WelcomeBonusXP,
				NewLevel:  1,
				Timestamp: now,
			},
		},
		Settings: Settings{
			Theme:         "dark",
			AutoSave:      true,
			Notifications: true,
			SoundEnabled:  true,
			Difficulty:    "beginner",
			Language:      "en",
		},
		Metadata: Metadata{
			CreatedAt:    now,
			LastLogin:    now,
			LastActivity: now,
			Version:      SchemaVersion,
		},
	}
}

// HasAchievement reports whether the achievement id has been unlocked.
func (u *User) HasAchievement(id string) bool {
	for i := range u.Achievements {
		if u.Achievements[i].ID == id {
			return true
		}
	}
	return false
}

// ActiveSession returns the user's active session, or nil.
func (u *User) ActiveSession() *Session {
	for i := range u.Sessions {
		if u.Sessions[i].Status == SessionStatusActive {
			return &u.Sessions[i]
		}
	}
	return nil
}

// SessionByID returns the session with the given id, or nil.
func (u *User) SessionByID(id string) *Session {
	for i := range u.Sessions {
		if u.Sessions[i].ID == id {
			return &u.Sessions[i]
		}
	}
	return nil
}

// CompletedSessions counts sessions that have been finalized.
func (u *User) CompletedSessions() int {
	n := 0
	for i := range u.Sessions {
		if u.Sessions[i].Status == SessionStatusCompleted {
			n++
		}
	}
	return n
}

// UserRepository defines persistence operations for user documents.
//
// Update runs fn against a freshly loaded copy of the user while holding
// that user's lock for the whole read-modify-write cycle, then persists the
// result. If fn returns an error, nothing is written and the error is
// returned unchanged.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) error
	Update(ctx context.Context, id string, fn func(*User) error) (*User, error)
	Index(ctx context.Context) (*MasterIndex, error)
	RebuildIndex(ctx context.Context) (*MasterIndex, error)
}

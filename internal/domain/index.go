package domain

import "time"

// MasterIndex is the singleton registry summarizing all users. It is a
// projection of the user documents, never authoritative for user state, and
// must be rebuildable from them. Entries keep registration order.
type MasterIndex struct {
	Users      []IndexEntry    `json:"users"`
	Metadata   IndexMetadata   `json:"metadata"`
	Statistics IndexStatistics `json:"statistics"`
}

// IndexEntry is the per-user projection used for lookup-by-name and
// leaderboard queries.
type IndexEntry struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Level        int       `json:"level"`
	XP           int       `json:"xp"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// IndexMetadata tracks the registry document itself.
type IndexMetadata struct {
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"lastUpdated"`
	TotalUsers  int       `json:"totalUsers"`
	Version     string    `json:"version"`
}

// IndexStatistics aggregates across all users; recomputed on every refresh.
type IndexStatistics struct {
	TotalXPAwarded int `json:"totalXpAwarded"`
	TotalSessions  int `json:"totalSessions"`
	TotalProjects  int `json:"totalProjects"`
	TotalErrors    int `json:"totalErrors"`
}

// NewMasterIndex returns an empty registry.
func NewMasterIndex(now time.Time) *MasterIndex {
	return &MasterIndex{
		Users: []IndexEntry{},
		Metadata: IndexMetadata{
			Created:     now,
			LastUpdated: now,
			Version:     SchemaVersion,
		},
	}
}

// EntryFor projects the index entry for a user.
func EntryFor(u *User) IndexEntry {
	return IndexEntry{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Level:        u.Level,
		XP:           u.XP,
		CreatedAt:    u.Metadata.CreatedAt,
		LastActivity: u.Metadata.LastActivity,
	}
}

// FindByUsername returns the entry for the given username, or nil.
func (m *MasterIndex) FindByUsername(username string) *IndexEntry {
	for i := range m.Users {
		if m.Users[i].Username == username {
			return &m.Users[i]
		}
	}
	return nil
}

// Upsert replaces the entry with the same id, or appends a new one at the
// end, preserving registration order.
func (m *MasterIndex) Upsert(entry IndexEntry) {
	for i := range m.Users {
		if m.Users[i].ID == entry.ID {
			m.Users[i] = entry
			return
		}
	}
	m.Users = append(m.Users, entry)
}

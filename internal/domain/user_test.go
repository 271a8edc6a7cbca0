package domain_test

import (
	"testing"
	"time"

	"github.com/msomdec/code-journal/internal/domain"
)

func TestNewUser_WelcomeBonus(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	u := domain.NewUser("u1", "alice", "alice@example.com", "hash", now)

	if u.XP != domain.WelcomeBonusXP {
		t.Fatalf("expected %d XP, got %d", domain.WelcomeBonusXP, u.XP)
	}
	if u.Level != 1 {
		t.Fatalf("expected level 1, got %d", u.Level)
	}
	if !u.HasAchievement("welcome") {
		t.Fatal("expected welcome achievement")
	}
	if len(u.XPHistory) != 1 {
		t.Fatalf("expected one seed XP entry, got %d", len(u.XPHistory))
	}
	if u.XPHistory[0].AfterXP != domain.WelcomeBonusXP {
		t.Fatalf("seed entry afterXp: expected %d, got %d", domain.WelcomeBonusXP, u.XPHistory[0].AfterXP)
	}
	if u.Metadata.Version != domain.SchemaVersion {
		t.Fatalf("expected schema version %s, got %s", domain.SchemaVersion, u.Metadata.Version)
	}
}

func TestUser_SessionLookups(t *testing.T) {
	now := time.Now().UTC()
	done := now.Add(-time.Hour)
	u := domain.NewUser("u1", "alice", "alice@example.com", "hash", now)
	u.Sessions = []domain.Session{
		{ID: "s1", Status: domain.SessionStatusCompleted, EndTime: &done},
		{ID: "s2", Status: domain.SessionStatusActive},
	}

	if got := u.ActiveSession(); got == nil || got.ID != "s2" {
		t.Fatalf("expected active session s2, got %+v", got)
	}
	if got := u.SessionByID("s1"); got == nil || got.ID != "s1" {
		t.Fatalf("expected session s1, got %+v", got)
	}
	if got := u.SessionByID("missing"); got != nil {
		t.Fatalf("expected nil for unknown id, got %+v", got)
	}
	if n := u.CompletedSessions(); n != 1 {
		t.Fatalf("expected 1 completed session, got %d", n)
	}
}

func TestMasterIndex_UpsertPreservesOrder(t *testing.T) {
	index := domain.NewMasterIndex(time.Now().UTC())
	index.Upsert(domain.IndexEntry{ID: "u1", Username: "alice", XP: 50})
	index.Upsert(domain.IndexEntry{ID: "u2", Username: "bob", XP: 50})
	index.Upsert(domain.IndexEntry{ID: "u1", Username: "alice", XP: 120})

	if len(index.Users) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(index.Users))
	}
	if index.Users[0].ID != "u1" || index.Users[0].XP != 120 {
		t.Fatalf("expected u1 updated in place, got %+v", index.Users[0])
	}
	if index.Users[1].ID != "u2" {
		t.Fatalf("expected u2 second, got %+v", index.Users[1])
	}
}

func TestMasterIndex_FindByUsername(t *testing.T) {
	index := domain.NewMasterIndex(time.Now().UTC())
	index.Upsert(domain.IndexEntry{ID: "u1", Username: "alice"})

	if e := index.FindByUsername("alice"); e == nil || e.ID != "u1" {
		t.Fatalf("expected entry for alice, got %+v", e)
	}
	if e := index.FindByUsername("nobody"); e != nil {
		t.Fatalf("expected nil for unknown username, got %+v", e)
	}
}

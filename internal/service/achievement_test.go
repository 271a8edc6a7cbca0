package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/code-journal/internal/service"
)

func TestEvaluateAchievements_FirstProject(t *testing.T) {
	u := freshUser(t)
	u.Statistics.TotalProjects = 1
	now := time.Now().UTC()

	unlocked := service.EvaluateAchievements(u, now)

	if len(unlocked) != 1 || unlocked[0].ID != "first_project" {
		t.Fatalf("expected first_project unlocked, got %+v", unlocked)
	}
	if !u.HasAchievement("first_project") {
		t.Fatal("expected first_project recorded on user")
	}
	// 50 welcome + 50 bonus crosses level 2 and adds its own 20.
	if u.XP != 120 {
		t.Fatalf("expected 120 XP, got %d", u.XP)
	}
}

func TestEvaluateAchievements_Idempotent(t *testing.T) {
	u := freshUser(t)
	u.Statistics.TotalProjects = 1
	now := time.Now().UTC()

	service.EvaluateAchievements(u, now)
	xpAfterFirst := u.XP
	countAfterFirst := len(u.Achievements)

	unlocked := service.EvaluateAchievements(u, now)

	if len(unlocked) != 0 {
		t.Fatalf("expected nothing new, got %+v", unlocked)
	}
	if u.XP != xpAfterFirst || len(u.Achievements) != countAfterFirst {
		t.Fatalf("re-evaluation changed state: XP %d -> %d, achievements %d -> %d",
			xpAfterFirst, u.XP, countAfterFirst, len(u.Achievements))
	}
}

func TestEvaluateAchievements_LanguageFirsts(t *testing.T) {
	u := freshUser(t)
	u.Statistics.HTMLLines = 10
	u.Statistics.JSLines = 5
	now := time.Now().UTC()

	service.EvaluateAchievements(u, now)

	if !u.HasAchievement("first_html") {
		t.Fatal("expected first_html")
	}
	if !u.HasAchievement("first_js") {
		t.Fatal("expected first_js")
	}
	if u.HasAchievement("first_css") {
		t.Fatal("first_css must not unlock without CSS lines")
	}
}

func TestEvaluateAchievements_LevelMilestones(t *testing.T) {
	u := freshUser(t)
	u.XP = 520
	u.Level = 6
	now := time.Now().UTC()

	service.EvaluateAchievements(u, now)

	if !u.HasAchievement("level_5_milestone") {
		t.Fatal("expected level_5_milestone at level 6")
	}
	if u.HasAchievement("level_10_milestone") {
		t.Fatal("level_10_milestone must not unlock at level 6")
	}
}

func TestEvaluateAchievements_TenProjects(t *testing.T) {
	u := freshUser(t)
	u.Statistics.TotalProjects = 10
	now := time.Now().UTC()

	service.EvaluateAchievements(u, now)

	if !u.HasAchievement("first_project") || !u.HasAchievement("project_10") {
		t.Fatal("expected both project milestones at 10 projects")
	}
}

package service

import (
	"time"

	"github.com/msomdec/code-journal/internal/domain"
)

// Milestone is one achievement predicate. Predicates are independent and
// re-checked on every evaluation; the achievement-id membership check makes
// granting idempotent.
type Milestone struct {
	ID          string
	Name        string
	Description string
	XPBonus     int
	Satisfied   func(*domain.User) bool
}

// milestones is evaluated in order. Order does not affect which milestones
// unlock, only the order of their history entries.
var milestones = []Milestone{
	{
		ID:          "first_project",
		Name:        "First Project!",
		Description: "Created your first project",
		XPBonus:     50,
		Satisfied:   func(u *domain.User) bool { return u.Statistics.TotalProjects >= 1 },
	},
	{
		ID:          "project_10",
		Name:        "Ten Projects!",
		Description: "Saved ten projects",
		XPBonus:     100,
		Satisfied:   func(u *domain.User) bool { return u.Statistics.TotalProjects >= 10 },
	},
	{
		ID:          "level_5_milestone",
		Name:        "Rising Coder",
		Description: "Reached level 5",
		XPBonus:     50,
		Satisfied:   func(u *domain.User) bool { return u.Level >= 5 },
	},
	{
		ID:          "level_10_milestone",
		Name:        "Dedicated Coder",
		Description: "Reached level 10",
		XPBonus:     100,
		Satisfied:   func(u *domain.User) bool { return u.Level >= 10 },
	},
	{
		ID:          "first_html",
		Name:        "First HTML",
		Description: "Wrote your first lines of HTML",
		XPBonus:     50,
		Satisfied:   func(u *domain.User) bool { return u.Statistics.HTMLLines > 0 },
	},
	{
		ID:          "first_css",
		Name:        "First CSS",
		Description: "Wrote your first lines of CSS",
		XPBonus:     50,
		Satisfied:   func(u *domain.User) bool { return u.Statistics.CSSLines > 0 },
	},
	{
		ID:          "first_js",
		Name:        "First JavaScript",
		Description: "Wrote your first lines of JavaScript",
		XPBonus:     50,
		Satisfied:   func(u *domain.User) bool { return u.Statistics.JSLines > 0 },
	},
}

// EvaluateAchievements checks every milestone against the user's current
// state and grants each newly satisfied one: the achievement record is
// appended and its bonus XP awarded. Running it again on the same state
// grants nothing. Returns the achievements unlocked by this call.
func EvaluateAchievements(u *domain.User, now time.Time) []domain.Achievement {
	var unlocked []domain.Achievement
	for _, m := range milestones {
		if u.HasAchievement(m.ID) || !m.Satisfied(u) {
			continue
		}
		a := domain.Achievement{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			UnlockedAt:  now,
			XPBonus:     m.XPBonus,
		}
		u.Achievements = append(u.Achievements, a)
		// Bonus amounts are fixed positives, so the award cannot fail.
		AwardXP(u, m.XPBonus, m.Name, "", now)
		unlocked = append(unlocked, a)
	}
	return unlocked
}

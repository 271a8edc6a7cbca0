package handler

import (
	"time"

	"github.com/msomdec/code-journal/internal/domain"
	"github.com/msomdec/code-journal/internal/service"
)

// UserDTO is the JSON representation of a user, minus credentials and the
// full history logs.
type UserDTO struct {
	ID           string            `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	XP           int               `json:"xp"`
	Level        int               `json:"level"`
	Statistics   domain.Statistics `json:"statistics"`
	Achievements []AchievementDTO  `json:"achievements"`
	CreatedAt    string            `json:"createdAt"`
	LastActivity string            `json:"lastActivity"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		XP:           u.XP,
		Level:        u.Level,
		Statistics:   u.Statistics,
		Achievements: toAchievementDTOs(u.Achievements),
		CreatedAt:    u.Metadata.CreatedAt.Format(time.RFC3339),
		LastActivity: u.Metadata.LastActivity.Format(time.RFC3339),
	}
}

// AchievementDTO is the JSON representation of an unlocked achievement.
type AchievementDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UnlockedAt  string `json:"unlockedAt"`
	XPBonus     int    `json:"xpBonus"`
}

func toAchievementDTO(a domain.Achievement) AchievementDTO {
	return AchievementDTO{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		UnlockedAt:  a.UnlockedAt.Format(time.RFC3339),
		XPBonus:     a.XPBonus,
	}
}

func toAchievementDTOs(achievements []domain.Achievement) []AchievementDTO {
	dtos := make([]AchievementDTO, len(achievements))
	for i, a := range achievements {
		dtos[i] = toAchievementDTO(a)
	}
	return dtos
}

// SessionDTO is the JSON representation of a session.
type SessionDTO struct {
	ID        string  `json:"id"`
	StartTime string  `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Duration  int     `json:"duration"`
	CodeRuns  int     `json:"codeRuns"`
	Errors    int     `json:"errors"`
	XPEarned  int     `json:"xpEarned"`
	XPLost    int     `json:"xpLost"`
	Status    string  `json:"status"`
}

func toSessionDTO(s *domain.Session) SessionDTO {
	dto := SessionDTO{
		ID:        s.ID,
		StartTime: s.StartTime.Format(time.RFC3339),
		Duration:  s.Duration,
		CodeRuns:  s.CodeRuns,
		Errors:    s.Errors,
		XPEarned:  s.XPEarned,
		XPLost:    s.XPLost,
		Status:    s.Status,
	}
	if s.EndTime != nil {
		t := s.EndTime.Format(time.RFC3339)
		dto.EndTime = &t
	}
	return dto
}

// ProjectDTO is the JSON representation of a saved project.
type ProjectDTO struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	HTML        string                   `json:"html"`
	CSS         string                   `json:"css"`
	JS          string                   `json:"js"`
	Description string                   `json:"description,omitempty"`
	Tags        []string                 `json:"tags,omitempty"`
	SessionID   string                   `json:"sessionId,omitempty"`
	Statistics  domain.ProjectStatistics `json:"statistics"`
	CreatedAt   string                   `json:"createdAt"`
}

func toProjectDTO(p *domain.Project) ProjectDTO {
	return ProjectDTO{
		ID:          p.ID,
		Name:        p.Name,
		HTML:        p.HTML,
		CSS:         p.CSS,
		JS:          p.JS,
		Description: p.Description,
		Tags:        p.Tags,
		SessionID:   p.SessionID,
		Statistics:  p.Statistics,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func toProjectDTOs(projects []domain.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = toProjectDTO(&projects[i])
	}
	return dtos
}

// LeaderboardEntryDTO is one ranked leaderboard row.
type LeaderboardEntryDTO struct {
	Rank         int    `json:"rank"`
	Username     string `json:"username"`
	Level        int    `json:"level"`
	XP           int    `json:"xp"`
	LastActivity string `json:"lastActivity"`
}

func toLeaderboardDTOs(entries []service.LeaderboardEntry) []LeaderboardEntryDTO {
	dtos := make([]LeaderboardEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = LeaderboardEntryDTO{
			Rank:         e.Rank,
			Username:     e.Username,
			Level:        e.Level,
			XP:           e.XP,
			LastActivity: e.LastActivity.Format(time.RFC3339),
		}
	}
	return dtos
}

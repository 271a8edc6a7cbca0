package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/msomdec/code-journal/internal/domain"
)

// StatsService provides read-only aggregate views over persisted state. No
// method here mutates anything.
type StatsService struct {
	users domain.UserRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(users domain.UserRepository) *StatsService {
	return &StatsService{users: users}
}

// StatsSummary aggregates a user's session and progression state.
type StatsSummary struct {
	ActiveSessions    int
	CompletedSessions int
	TotalSessionMins  int
	AvgSessionMins    float64
	XPPerSession      float64
	ErrorRate         float64
	ProjectsThisWeek  int
}

// UserStats is the full read-only stats view.
type UserStats struct {
	User            *domain.User
	Summary         StatsSummary
	RecentXP        []domain.XPEntry
	RecentErrors    []domain.ErrorEntry
	LastProject     *domain.Project
	LastAchievement *domain.Achievement
}

// recentSliceLen bounds the history slices included in a stats view.
const recentSliceLen = 10

// Stats computes the aggregate view for a user.
func (s *StatsService) Stats(ctx context.Context, userID string) (*UserStats, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var summary StatsSummary
	for i := range user.Sessions {
		switch user.Sessions[i].Status {
		case domain.SessionStatusActive:
			summary.ActiveSessions++
		case domain.SessionStatusCompleted:
			summary.CompletedSessions++
			summary.TotalSessionMins += user.Sessions[i].Duration
		}
	}
	if summary.CompletedSessions > 0 {
		summary.AvgSessionMins = float64(summary.TotalSessionMins) / float64(summary.CompletedSessions)
		summary.XPPerSession = float64(user.XP) / float64(summary.CompletedSessions)
	}
	if user.Statistics.TotalCodeRuns > 0 {
		summary.ErrorRate = float64(user.Statistics.TotalErrors) / float64(user.Statistics.TotalCodeRuns)
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	for i := range user.Projects {
		if user.Projects[i].CreatedAt.After(weekAgo) {
			summary.ProjectsThisWeek++
		}
	}

	stats := &UserStats{
		User:         user,
		Summary:      summary,
		RecentXP:     head(user.XPHistory, recentSliceLen),
		RecentErrors: head(user.ErrorHistory, recentSliceLen),
	}
	if len(user.Projects) > 0 {
		stats.LastProject = &user.Projects[0]
	}
	if len(user.Achievements) > 0 {
		stats.LastAchievement = &user.Achievements[len(user.Achievements)-1]
	}
	return stats, nil
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank         int
	Username     string
	Level        int
	XP           int
	LastActivity time.Time
}

// Leaderboard returns the top limit users by XP descending. Ties keep
// registration order (the index preserves it, and the sort is stable).
// Ranks start at 1.
func (s *StatsService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidInput)
	}

	index, err := s.users.Index(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.IndexEntry, len(index.Users))
	copy(entries, index.Users)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].XP > entries[j].XP
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}

	board := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		board[i] = LeaderboardEntry{
			Rank:         i + 1,
			Username:     e.Username,
			Level:        e.Level,
			XP:           e.XP,
			LastActivity: e.LastActivity,
		}
	}
	return board, nil
}

// HistoryItem is one row of the merged history view.
type HistoryItem struct {
	Kind      string // "execution" or "error"
	Timestamp time.Time
	Execution *domain.ExecutionEntry
	Error     *domain.ErrorEntry
}

// History returns the user's history filtered by kind: "executions",
// "errors", or "all" (merged, newest first).
func (s *StatsService) History(ctx context.Context, userID, kind string, limit int) ([]HistoryItem, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var items []HistoryItem
	switch kind {
	case "executions":
		for i := range user.ExecutionHistory {
			e := &user.ExecutionHistory[i]
			items = append(items, HistoryItem{Kind: "execution", Timestamp: e.Timestamp, Execution: e})
		}
	case "errors":
		for i := range user.ErrorHistory {
			e := &user.ErrorHistory[i]
			items = append(items, HistoryItem{Kind: "error", Timestamp: e.Timestamp, Error: e})
		}
	case "all", "":
		for i := range user.ExecutionHistory {
			e := &user.ExecutionHistory[i]
			items = append(items, HistoryItem{Kind: "execution", Timestamp: e.Timestamp, Execution: e})
		}
		for i := range user.ErrorHistory {
			e := &user.ErrorHistory[i]
			items = append(items, HistoryItem{Kind: "error", Timestamp: e.Timestamp, Error: e})
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Timestamp.After(items[j].Timestamp)
		})
	default:
		return nil, fmt.Errorf("%w: unknown history kind %q", domain.ErrInvalidInput, kind)
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// SessionDetail is a session enriched with derived statistics.
type SessionDetail struct {
	Session            domain.Session
	TotalExecutions    int
	TotalErrors        int
	SuccessRate        float64
	AvgExecutionTimeMs float64
}

// Session returns the detail view for one session.
func (s *StatsService) Session(ctx context.Context, userID, sessionID string) (*SessionDetail, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess := user.SessionByID(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}

	detail := &SessionDetail{
		Session:         *sess,
		TotalExecutions: len(sess.ExecutionHistory),
		TotalErrors:     len(sess.ErrorHistory),
	}
	if sess.CodeRuns > 0 {
		detail.SuccessRate = float64(sess.CodeRuns-sess.Errors) / float64(sess.CodeRuns) * 100
	}
	if len(sess.ExecutionHistory) > 0 {
		var total float64
		for i := range sess.ExecutionHistory {
			total += sess.ExecutionHistory[i].ExecutionTimeMs
		}
		detail.AvgExecutionTimeMs = total / float64(len(sess.ExecutionHistory))
	}
	return detail, nil
}

// DailyActivity is one day's execution/error counts.
type DailyActivity struct {
	Date        string
	Executions  int
	Errors      int
	SuccessRate float64
}

// Analytics is the timeframe-filtered activity view.
type Analytics struct {
	Timeframe       string
	TotalExecutions int
	TotalErrors     int
	TotalSessions   int
	SuccessRate     float64
	AvgExecTimeMs   float64
	Lines           domain.LineCount
	ErrorsByKind    map[string]int
	DailyActivity   []DailyActivity
}

// Analytics computes the activity view for one of the supported timeframes:
// "7days", "30days", "90days", or "all".
func (s *StatsService) Analytics(ctx context.Context, userID, timeframe string) (*Analytics, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var cutoff time.Time
	switch timeframe {
	case "7days":
		cutoff = now.AddDate(0, 0, -7)
	case "30days", "":
		timeframe = "30days"
		cutoff = now.AddDate(0, 0, -30)
	case "90days":
		cutoff = now.AddDate(0, 0, -90)
	case "all":
		// zero cutoff includes everything
	default:
		return nil, fmt.Errorf("%w: unknown timeframe %q", domain.ErrInvalidInput, timeframe)
	}

	a := &Analytics{
		Timeframe:    timeframe,
		ErrorsByKind: make(map[string]int),
	}

	days := make(map[string]*DailyActivity)
	var failed int
	var totalExecTime float64

	for i := range user.ExecutionHistory {
		e := &user.ExecutionHistory[i]
		if e.Timestamp.Before(cutoff) {
			continue
		}
		a.TotalExecutions++
		totalExecTime += e.ExecutionTimeMs
		a.Lines.HTML += e.LineCount.HTML
		a.Lines.CSS += e.LineCount.CSS
		a.Lines.JS += e.LineCount.JS
		a.Lines.Total += e.LineCount.Total

		date := e.Timestamp.Format("2006-01-02")
		day, ok := days[date]
		if !ok {
			day = &DailyActivity{Date: date}
			days[date] = day
		}
		day.Executions++
		if !e.Success {
			failed++
			day.Errors++
		}
	}

	for i := range user.ErrorHistory {
		e := &user.ErrorHistory[i]
		if e.Timestamp.Before(cutoff) {
			continue
		}
		a.TotalErrors++
		a.ErrorsByKind[e.Category]++
	}

	for i := range user.Sessions {
		if !user.Sessions[i].StartTime.Before(cutoff) {
			a.TotalSessions++
		}
	}

	if a.TotalExecutions > 0 {
		a.SuccessRate = float64(a.TotalExecutions-failed) / float64(a.TotalExecutions) * 100
		a.AvgExecTimeMs = totalExecTime / float64(a.TotalExecutions)
	}

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		day := days[date]
		if day.Executions > 0 {
			day.SuccessRate = float64(day.Executions-day.Errors) / float64(day.Executions) * 100
		}
		a.DailyActivity = append(a.DailyActivity, *day)
	}

	return a, nil
}

// Export returns the full user document for download.
func (s *StatsService) Export(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func head[T any](list []T, n int) []T {
	if len(list) > n {
		return list[:n]
	}
	return list
}

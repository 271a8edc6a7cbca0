package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/msomdec/code-journal/internal/domain"
	"github.com/msomdec/code-journal/internal/service"
)

// StatsHandler serves the read-only aggregate views.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// HandleStats returns the aggregate stats view for the authenticated user.
// GET /api/stats
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	stats, err := h.stats.Stats(r.Context(), user.ID)
	if err != nil {
		slog.Error("compute stats", "error", err, "user", user.ID)
		writeError(w, http.StatusInternalServerError, "Could not compute stats.")
		return
	}

	resp := map[string]any{
		"success": true,
		"user":    toUserDTO(stats.User),
		"summary": map[string]any{
			"activeSessions":    stats.Summary.ActiveSessions,
			"completedSessions": stats.Summary.CompletedSessions,
			"totalSessionMins":  stats.Summary.TotalSessionMins,
			"avgSessionMins":    stats.Summary.AvgSessionMins,
			"xpPerSession":      stats.Summary.XPPerSession,
			"errorRate":         stats.Summary.ErrorRate,
			"projectsThisWeek":  stats.Summary.ProjectsThisWeek,
		},
		"recentXp":     stats.RecentXP,
		"recentErrors": stats.RecentErrors,
	}
	if stats.LastProject != nil {
		resp["lastProject"] = toProjectDTO(stats.LastProject)
	}
	if stats.LastAchievement != nil {
		resp["lastAchievement"] = toAchievementDTO(*stats.LastAchievement)
	}
	writeJSON(w, http.StatusOK, resp)
}

// defaultLeaderboardSize bounds the leaderboard when no limit is given.
const defaultLeaderboardSize = 10

// HandleLeaderboard returns the top users by XP.
// GET /api/leaderboard?limit=N
func (h *StatsHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	board, err := h.stats.Leaderboard(r.Context(), limit)
	if err != nil {
		slog.Error("build leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not build leaderboard.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"leaderboard": toLeaderboardDTOs(board),
	})
}

// HandleHistory returns execution and error history.
// GET /api/history?type=executions|errors|all&limit=N
func (h *StatsHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	kind := r.URL.Query().Get("type")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := h.stats.History(r.Context(), user.ID, kind, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("load history", "error", err, "user", user.ID)
		writeError(w, http.StatusInternalServerError, "Could not load history.")
		return
	}

	history := make([]map[string]any, 0, len(items))
	for _, item := range items {
		row := map[string]any{
			"kind":      item.Kind,
			"timestamp": item.Timestamp.Format(time.RFC3339),
		}
		if item.Execution != nil {
			row["execution"] = item.Execution
		}
		if item.Error != nil {
			row["error"] = item.Error
		}
		history = append(history, row)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": history,
		"count":   len(history),
	})
}

// HandleSession returns the detail view for one session.
// GET /api/sessions/{id}
func (h *StatsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	sessionID := r.PathValue("id")

	detail, err := h.stats.Session(r.Context(), user.ID, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found.")
			return
		}
		slog.Error("load session", "error", err, "user", user.ID)
		writeError(w, http.StatusInternalServerError, "Could not load session.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"session":            toSessionDTO(&detail.Session),
		"totalExecutions":    detail.TotalExecutions,
		"totalErrors":        detail.TotalErrors,
		"successRate":        detail.SuccessRate,
		"avgExecutionTimeMs": detail.AvgExecutionTimeMs,
	})
}

// HandleAnalytics returns the timeframe-filtered activity view.
// GET /api/analytics?timeframe=7days|30days|90days|all
func (h *StatsHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	timeframe := r.URL.Query().Get("timeframe")

	a, err := h.stats.Analytics(r.Context(), user.ID, timeframe)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("compute analytics", "error", err, "user", user.ID)
		writeError(w, http.StatusInternalServerError, "Could not compute analytics.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"timeframe":       a.Timeframe,
		"totalExecutions": a.TotalExecutions,
		"totalErrors":     a.TotalErrors,
		"totalSessions":   a.TotalSessions,
		"successRate":     a.SuccessRate,
		"avgExecTimeMs":   a.AvgExecTimeMs,
		"lines":           a.Lines,
		"errorsByKind":    a.ErrorsByKind,
		"dailyActivity":   a.DailyActivity,
	})
}

// HandleExport returns the full user document as a download.
// GET /api/export
func (h *StatsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	doc, err := h.stats.Export(r.Context(), user.ID)
	if err != nil {
		slog.Error("export user", "error", err, "user", user.ID)
		writeError(w, http.StatusInternalServerError, "Could not export data.")
		return
	}

	filename := fmt.Sprintf("%s-export-%s.json", doc.Username, time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, doc)
}

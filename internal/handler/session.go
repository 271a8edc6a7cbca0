package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/code-journal/internal/domain"
	"github.com/msomdec/code-journal/internal/service"
)

// SessionHandler handles the session lifecycle endpoints.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// HandleStart starts a new coding session.
// POST /api/sessions
// Response: {"success":true,"sessionId":"...","user":{...}}
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	updated, sessionID, err := h.sessions.Start(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionActive) {
			writeError(w, http.StatusConflict, "A session is already active.")
			return
		}
		slog.Error("start session", "error", err, "user", user.ID)
		writeError(w, http.StatusInternalServerError, "Could not start session.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"sessionId": sessionID,
		"user":      toUserDTO(updated),
	})
}

type runRequest struct {
	Lines struct {
		HTML  int `json:"html"`
		CSS   int `json:"css"`
		JS    int `json:"js"`
		Total int `json:"total"`
	} `json:"lineCount"`
	WarningCount    int     `json:"warningCount"`
	ExecutionTimeMs float64 `json:"executionTimeMs"`
	Errors          []struct {
		Message  string `json:"message"`
		Category string `json:"category"`
		Line     int    `json:"line"`
		File     string `json:"file"`
	} `json:"errors"`
}

func (req *runRequest) outcome() service.RunOutcome {
	out := service.RunOutcome{
		Lines: domain.LineCount{
			HTML:  req.Lines.HTML,
			CSS:   req.Lines.CSS,
			JS:    req.Lines.JS,
			Total: req.Lines.Total,
		},
		WarningCount:    req.WarningCount,
		ExecutionTimeMs: req.ExecutionTimeMs,
	}
	for _, e := range req.Errors {
		out.Errors = append(out.Errors, service.ErrorDetail{
			Message:  e.Message,
			Category: e.Category,
			Line:     e.Line,
			File:     e.File,
		})
	}
	return out
}

// HandleRun records a successful code run against a session.
// POST /api/sessions/{id}/runs
// Response: {"success":true,"user":{...},"xpGained":15,"leveledUp":bool}
func (h *SessionHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	sessionID := r.PathValue("id")

	var req runRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	outcome := req.outcome()
	// This endpoint records successes; errors go to /errors.
	outcome.Errors = nil

	updated, result, err := h.sessions.RecordRun(r.Context(), user.ID, sessionID, outcome)
	if err != nil {
		h.writeSessionError(w, err, user.ID, "record run")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"user":         toUserDTO(updated),
		"executionId":  result.ExecutionID,
		"xpGained":     result.XPChange,
		"leveledUp":    result.XP.LeveledUp,
		"levelUpBonus": result.XP.LevelUpBonus,
	})
}

// HandleError records a failed code run: every reported error costs XP.
// POST /api/sessions/{id}/errors
// Response: {"success":true,"user":{...},"xpLost":N}
func (h *SessionHandler) HandleError(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	sessionID := r.PathValue("id")

	var req runRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if len(req.Errors) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "At least one error is required.")
		return
	}

	updated, result, err := h.sessions.RecordRun(r.Context(), user.ID, sessionID, req.outcome())
	if err != nil {
		h.writeSessionError(w, err, user.ID, "record error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"user":        toUserDTO(updated),
		"executionId": result.ExecutionID,
		"xpLost":      -result.XPChange,
		"errorCount":  len(req.Errors),
	})
}

// HandleEnd finalizes a session.
// POST /api/sessions/{id}/end
// Response: {"success":true,"session":{...},"user":{...},"bonusXp":N}
func (h *SessionHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	sessionID := r.PathValue("id")

	updated, summary, err := h.sessions.End(r.Context(), user.ID, sessionID)
	if err != nil {
		h.writeSessionError(w, err, user.ID, "end session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session":    toSessionDTO(&summary.Session),
		"user":       toUserDTO(updated),
		"perfect":    summary.Perfect,
		"productive": summary.Productive,
		"bonusXp":    summary.BonusXP,
	})
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error, userID, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Session not found.")
	case errors.Is(err, domain.ErrSessionCompleted):
		writeError(w, http.StatusConflict, "Session is already completed.")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error(op, "error", err, "user", userID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

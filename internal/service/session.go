package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/code-journal/internal/domain"
)

// XP amounts for session lifecycle events.
const (
	SessionStartXP      = 10
	CodeRunXP           = 15
	ErrorPenaltyXP      = 5 // per error
	PerfectSessionXP    = 20
	ProductiveSessionXP = 15

	// ProductiveRunThreshold is the code-run count that marks a session
	// productive.
	ProductiveRunThreshold = 5
)

// SessionService manages the coding-session lifecycle: start, run and error
// recording, and finalization. All state lives in the user document; every
// operation is a locked read-modify-write through the repository.
type SessionService struct {
	users domain.UserRepository
}

// NewSessionService creates a new SessionService.
func NewSessionService(users domain.UserRepository) *SessionService {
	return &SessionService{users: users}
}

// Start opens a new active session. A user can have at most one active
// session; starting a second is rejected with ErrSessionActive. Grants the
// session-start XP bonus.
func (s *SessionService) Start(ctx context.Context, userID string) (*domain.User, string, error) {
	sessionID := uuid.NewString()
	user, err := s.users.Update(ctx, userID, func(u *domain.User) error {
		if active := u.ActiveSession(); active != nil {
			return fmt.Errorf("%w: session %s", domain.ErrSessionActive, active.ID)
		}

		now := time.Now().UTC()
		u.Sessions = append(u.Sessions, domain.Session{
			ID:        sessionID,
			StartTime: now,
			Status:    domain.SessionStatusActive,
			XPEarned:  SessionStartXP,
		})
		u.Statistics.TotalSessions++

		_, err := AwardXP(u, SessionStartXP, "Session started", sessionID, now)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return user, sessionID, nil
}

// RunOutcome describes one code run. An empty Errors slice is a successful
// run; a non-empty one is a failed run that costs XP per error.
type RunOutcome struct {
	Lines           domain.LineCount
	WarningCount    int
	ExecutionTimeMs float64
	Errors          []ErrorDetail
}

// RunResult reports what a recorded run changed.
type RunResult struct {
	ExecutionID string
	XPChange    int
	XP          XPResult
}

// RecordRun records one code run against an active session. The run always
// increments the session's codeRuns; a successful run awards the per-run
// XP, a failed run removes XP scaled by the error count and increments the
// session's error counter.
func (s *SessionService) RecordRun(ctx context.Context, userID, sessionID string, outcome RunOutcome) (*domain.User, RunResult, error) {
	var result RunResult
	user, err := s.users.Update(ctx, userID, func(u *domain.User) error {
		sess, err := activeSession(u, sessionID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		failed := len(outcome.Errors) > 0

		entry := domain.ExecutionEntry{
			ID:              uuid.NewString(),
			SessionID:       sessionID,
			Success:         !failed,
			ErrorCount:      len(outcome.Errors),
			WarningCount:    outcome.WarningCount,
			LineCount:       outcome.Lines,
			ExecutionTimeMs: outcome.ExecutionTimeMs,
			Timestamp:       now,
		}
		result.ExecutionID = entry.ID

		sess.CodeRuns++
		sess.ExecutionHistory = domain.PrependBounded(sess.ExecutionHistory, entry, domain.MaxSessionExecutions)
		u.ExecutionHistory = domain.PrependBounded(u.ExecutionHistory, entry, domain.MaxExecutionHistory)

		u.Statistics.TotalCodeRuns++
		u.Statistics.HTMLLines += outcome.Lines.HTML
		u.Statistics.CSSLines += outcome.Lines.CSS
		u.Statistics.JSLines += outcome.Lines.JS
		u.Statistics.TotalLines += outcome.Lines.Total

		if !failed {
			res, err := AwardXP(u, CodeRunXP, "Code executed successfully", sessionID, now)
			if err != nil {
				return err
			}
			sess.XPEarned += CodeRunXP
			result.XP = res
			result.XPChange = CodeRunXP
			EvaluateAchievements(u, now)
			return nil
		}

		penalty := ErrorPenaltyXP * len(outcome.Errors)
		reason := fmt.Sprintf("%d error(s) detected", len(outcome.Errors))
		res, err := RemoveXP(u, penalty, reason, sessionID, outcome.Errors, now)
		if err != nil {
			return err
		}

		sess.Errors += len(outcome.Errors)
		sess.XPLost += penalty
		for _, d := range outcome.Errors {
			sess.ErrorHistory = domain.PrependBounded(sess.ErrorHistory, domain.ErrorEntry{
				ID:        uuid.NewString(),
				Message:   d.Message,
				Category:  d.Category,
				Line:      d.Line,
				File:      d.File,
				XPLost:    ErrorPenaltyXP,
				SessionID: sessionID,
				Timestamp: now,
			}, domain.MaxSessionErrors)
		}

		result.XP = res
		result.XPChange = -penalty
		return nil
	})
	if err != nil {
		return nil, RunResult{}, err
	}
	return user, result, nil
}

// SessionSummary reports the outcome of a finished session.
type SessionSummary struct {
	Session    domain.Session
	Perfect    bool
	Productive bool
	BonusXP    int
}

// End finalizes an active session: computes the duration in whole minutes,
// updates the running average session duration, evaluates the session-level
// achievements (perfect: no errors with at least one run; productive: five
// or more runs), and marks the session completed. A completed session is
// immutable afterwards.
func (s *SessionService) End(ctx context.Context, userID, sessionID string) (*domain.User, *SessionSummary, error) {
	var summary SessionSummary
	user, err := s.users.Update(ctx, userID, func(u *domain.User) error {
		sess, err := activeSession(u, sessionID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		duration := int(now.Sub(sess.StartTime).Minutes())

		summary.Perfect = sess.Errors == 0 && sess.CodeRuns > 0
		summary.Productive = sess.CodeRuns >= ProductiveRunThreshold

		if summary.Perfect {
			u.Statistics.PerfectSessions++
			u.Achievements = append(u.Achievements, domain.Achievement{
				ID:          "perfect_" + sessionID,
				Name:        "Perfect Session!",
				Description: "Completed a session with no errors",
				UnlockedAt:  now,
				XPBonus:     PerfectSessionXP,
			})
			if _, err := AwardXP(u, PerfectSessionXP, "Perfect session bonus", sessionID, now); err != nil {
				return err
			}
			sess.XPEarned += PerfectSessionXP
			summary.BonusXP += PerfectSessionXP
		}

		if summary.Productive {
			u.Statistics.ProductiveSessions++
			u.Achievements = append(u.Achievements, domain.Achievement{
				ID:          "productive_" + sessionID,
				Name:        "Productive Session!",
				Description: "Ran code five or more times in one session",
				UnlockedAt:  now,
				XPBonus:     ProductiveSessionXP,
			})
			if _, err := AwardXP(u, ProductiveSessionXP, "Productive session bonus", sessionID, now); err != nil {
				return err
			}
			sess.XPEarned += ProductiveSessionXP
			summary.BonusXP += ProductiveSessionXP
		}

		sess.EndTime = &now
		sess.Duration = duration
		sess.Status = domain.SessionStatusCompleted

		// Incremental mean over completed sessions.
		n := u.CompletedSessions()
		u.Statistics.AverageSessionMins = (u.Statistics.AverageSessionMins*float64(n-1) + float64(duration)) / float64(n)

		summary.Session = *sess
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return user, &summary, nil
}

// Get returns a session by id, including completed ones.
func (s *SessionService) Get(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess := user.SessionByID(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return sess, nil
}

// activeSession resolves a session that may still be mutated.
func activeSession(u *domain.User, sessionID string) (*domain.Session, error) {
	sess := u.SessionByID(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	if sess.Status == domain.SessionStatusCompleted {
		return nil, fmt.Errorf("%w: session %s", domain.ErrSessionCompleted, sessionID)
	}
	return sess, nil
}

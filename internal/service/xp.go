package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/code-journal/internal/domain"
)

// XPPerLevel is the flat level threshold: level = xp/100 + 1.
const XPPerLevel = 100

// LevelUpBonusPerLevel scales the one-time bonus granted on level-up.
const LevelUpBonusPerLevel = 10

// LevelForXP derives the level tier from cumulative XP. It is the single
// source of truth for the xp/level invariant; no other code sets Level.
func LevelForXP(xp int) int {
	return xp/XPPerLevel + 1
}

// XPResult reports the outcome of an XP mutation.
type XPResult struct {
	LeveledUp    bool
	NewLevel     int
	LevelUpBonus int
}

// AwardXP adds amount to the user's XP in memory, recomputes the level, and
// on a level-up grants a one-time newLevel*10 bonus plus a level_N
// achievement. The bonus re-derives the level exactly once and can never
// trigger a second bonus in the same call. Non-positive amounts are
// rejected with ErrInvalidAmount.
func AwardXP(u *domain.User, amount int, reason, sessionID string, now time.Time) (XPResult, error) {
	if amount <= 0 {
		return XPResult{}, fmt.Errorf("%w: award of %d", domain.ErrInvalidAmount, amount)
	}

	before := u.XP
	oldLevel := u.Level

	u.XP += amount
	u.Statistics.TotalXPEarned += amount
	u.Level = LevelForXP(u.XP)

	res := XPResult{NewLevel: u.Level}

	if u.Level > oldLevel {
		res.LeveledUp = true
		newLevel := u.Level

		// The level_N achievement doubles as the bonus dedup guard: a user
		// who dropped below a threshold and re-crossed it gets no second
		// bonus for the same level.
		achievementID := fmt.Sprintf("level_%d", newLevel)
		if !u.HasAchievement(achievementID) {
			bonus := newLevel * LevelUpBonusPerLevel
			u.Achievements = append(u.Achievements, domain.Achievement{
				ID:          achievementID,
				Name:        fmt.Sprintf("Level %d Achieved!", newLevel),
				Description: fmt.Sprintf("Reached level %d", newLevel),
				UnlockedAt:  now,
				XPBonus:     bonus,
			})
			u.XP += bonus
			u.Statistics.TotalXPEarned += bonus
			u.Level = LevelForXP(u.XP)
			res.LevelUpBonus = bonus
			res.NewLevel = u.Level
		}
	}

	entry := domain.XPEntry{
		ID:        uuid.NewString(),
		Change:    amount,
		Reason:    reason,
		BeforeXP:  before,
		AfterXP:   u.XP,
		LeveledUp: res.LeveledUp,
		NewLevel:  u.Level,
		SessionID: sessionID,
		Timestamp: now,
	}
	u.XPHistory = domain.PrependBounded(u.XPHistory, entry, domain.MaxXPHistory)

	return res, nil
}

// ErrorDetail describes one error that cost the user XP.
type ErrorDetail struct {
	Message  string
	Category string
	Line     int
	File     string
}

// RemoveXP subtracts amount from the user's XP, clamped at zero, recomputes
// the level, and appends a negative XP history entry plus one error history
// entry per detail (or a single generic one when no details are given).
// Removal never grants level-up bonuses.
func RemoveXP(u *domain.User, amount int, reason, sessionID string, details []ErrorDetail, now time.Time) (XPResult, error) {
	if amount <= 0 {
		return XPResult{}, fmt.Errorf("%w: removal of %d", domain.ErrInvalidAmount, amount)
	}

	before := u.XP
	u.XP = max(0, u.XP-amount)
	u.Statistics.TotalXPLost += amount
	u.Level = LevelForXP(u.XP)

	errorCount := max(1, len(details))
	u.Statistics.TotalErrors += errorCount

	entry := domain.XPEntry{
		ID:        uuid.NewString(),
		Change:    -amount,
		Reason:    reason,
		BeforeXP:  before,
		AfterXP:   u.XP,
		NewLevel:  u.Level,
		SessionID: sessionID,
		Timestamp: now,
	}
	u.XPHistory = domain.PrependBounded(u.XPHistory, entry, domain.MaxXPHistory)

	if len(details) == 0 {
		details = []ErrorDetail{{Message: reason, Category: "generic"}}
	}
	perError := amount / len(details)
	for _, d := range details {
		u.ErrorHistory = domain.PrependBounded(u.ErrorHistory, domain.ErrorEntry{
			ID:        uuid.NewString(),
			Message:   d.Message,
			Category:  d.Category,
			Line:      d.Line,
			File:      d.File,
			XPLost:    perError,
			SessionID: sessionID,
			Timestamp: now,
		}, domain.MaxErrorHistory)
	}

	return XPResult{NewLevel: u.Level}, nil
}

// XPService exposes the engine as storage-backed operations: each call is a
// locked read-modify-write cycle against the user's persisted document.
type XPService struct {
	users domain.UserRepository
}

// NewXPService creates a new XPService.
func NewXPService(users domain.UserRepository) *XPService {
	return &XPService{users: users}
}

// Award applies AwardXP to the stored user.
func (s *XPService) Award(ctx context.Context, userID string, amount int, reason, sessionID string) (*domain.User, XPResult, error) {
	var res XPResult
	user, err := s.users.Update(ctx, userID, func(u *domain.User) error {
		var err error
		res, err = AwardXP(u, amount, reason, sessionID, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, XPResult{}, err
	}
	return user, res, nil
}

// Remove applies RemoveXP to the stored user.
func (s *XPService) Remove(ctx context.Context, userID string, amount int, reason, sessionID string, details []ErrorDetail) (*domain.User, XPResult, error) {
	var res XPResult
	user, err := s.users.Update(ctx, userID, func(u *domain.User) error {
		var err error
		res, err = RemoveXP(u, amount, reason, sessionID, details, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, XPResult{}, err
	}
	return user, res, nil
}

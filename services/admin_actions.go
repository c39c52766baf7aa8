package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/logger"
	"agentgift-service/models"
	"agentgift-service/security"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type adjustParams struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Amount int64  `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

type XPAdjustment struct {
	UserID        string   `json:"user_id"`
	PreviousXP    int64    `json:"previous_xp"`
	NewXP         int64    `json:"new_xp"`
	DeltaApplied  int64    `json:"delta_applied"`
	Level         int      `json:"level"`
	BadgesAwarded []string `json:"badges_awarded,omitempty"`
}

type CreditAdjustment struct {
	UserID          string `json:"user_id"`
	PreviousCredits int64  `json:"previous_credits"`
	NewCredits      int64  `json:"new_credits"`
	DeltaApplied    int64  `json:"delta_applied"`
}

func (d *AdminDispatcher) adjustUserXP(ctx context.Context, adminID string, raw json.RawMessage) (any, error) {
	var p adjustParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	reason := p.Reason
	if reason == "" {
		reason = models.ReasonAdminAdjustment
	}
	return d.applyXP(ctx, adminID, p.UserID, p.Amount, reason)
}

func (d *AdminDispatcher) applyXP(ctx context.Context, adminID, userID string, amount int64, reason string) (*XPAdjustment, error) {
	change, err := d.Store.ApplyXPDelta(ctx, models.XPLog{
		UserID:  userID,
		Amount:  amount,
		Reason:  reason,
		AdminID: &adminID,
	})
	if err != nil {
		return nil, err
	}

	out := &XPAdjustment{
		UserID:       change.UserID,
		PreviousXP:   change.Previous,
		NewXP:        change.New,
		DeltaApplied: change.DeltaApplied,
		Level:        LevelForXP(change.New),
	}

	if change.DeltaApplied > 0 {
		if profile, err := d.Store.GetUser(ctx, userID); err == nil {
			out.BadgesAwarded, err = d.Badges.AutoAwardBadges(ctx, profile)
			if err != nil {
				logger.Warn("Badge auto-award failed", "user_id", userID, "error", err)
			}
		}
	}
	return out, nil
}

func (d *AdminDispatcher) adjustUserCredits(ctx context.Context, adminID string, raw json.RawMessage) (any, error) {
	var p adjustParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	reason := p.Reason
	if reason == "" {
		reason = models.ReasonAdminAdjustment
	}

	change, err := d.Store.ApplyCreditDelta(ctx, models.CreditTransaction{
		UserID:  p.UserID,
		Amount:  p.Amount,
		Reason:  reason,
		AdminID: &adminID,
	})
	if err != nil {
		return nil, err
	}
	return &CreditAdjustment{
		UserID:          change.UserID,
		PreviousCredits: change.Previous,
		NewCredits:      change.New,
		DeltaApplied:    change.DeltaApplied,
	}, nil
}

type badgeParams struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	BadgeID string `json:"badge_id" validate:"required,max=64"`
	Reason  string `json:"reason" validate:"max=500"`
}

func (d *AdminDispatcher) assignBadge(ctx context.Context, _ string, raw json.RawMessage) (any, error) {
	var p badgeParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if _, err := d.Store.GetUser(ctx, p.UserID); err != nil {
		return nil, err
	}

	reason := p.Reason
	if reason == "" {
		reason = "assigned by admin"
	}
	assigned, alreadyHad, err := d.Badges.Assign(ctx, p.UserID, slug.Make(p.BadgeID), reason, true)
	if err != nil {
		return nil, err
	}
	return payload{"assigned": assigned, "already_had": alreadyHad}, nil
}

func (d *AdminDispatcher) revokeBadge(ctx context.Context, _ string, raw json.RawMessage) (any, error) {
	var p badgeParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	revoked, err := d.Store.RevokeBadge(ctx, p.UserID, slug.Make(p.BadgeID))
	if err != nil {
		return nil, err
	}
	return payload{"revoked": revoked}, nil
}

type banParams struct {
	UserID        string  `json:"user_id" validate:"required,uuid"`
	FeatureID     string  `json:"feature_id" validate:"required"`
	Reason        string  `json:"reason" validate:"max=500"`
	DurationHours float64 `json:"duration_hours" validate:"gte=0,lte=87600"`
}

func (d *AdminDispatcher) banUserFromFeature(ctx context.Context, adminID string, raw json.RawMessage) (any, error) {
	var p banParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if _, ok := models.FeatureMinTier[p.FeatureID]; !ok {
		return nil, apperrors.New(apperrors.ErrCodeValidation, fmt.Sprintf("unknown feature %q", p.FeatureID))
	}
	if _, err := d.Store.GetUser(ctx, p.UserID); err != nil {
		return nil, err
	}

	ban := &models.FeatureBan{
		UserID:    p.UserID,
		FeatureID: p.FeatureID,
		Reason:    security.SanitizeText(p.Reason, 500),
		BannedBy:  adminID,
	}
	if p.DurationHours > 0 {
		expires := d.Now().Add(time.Duration(p.DurationHours * float64(time.Hour)))
		ban.ExpiresAt = &expires
	}
	if err := d.Store.CreateFeatureBan(ctx, ban); err != nil {
		return nil, err
	}
	return ban, nil
}

type unbanParams struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	FeatureID string `json:"feature_id" validate:"required"`
}

func (d *AdminDispatcher) unbanUserFromFeature(ctx context.Context, _ string, raw json.RawMessage) (any, error) {
	var p unbanParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	lifted, err := d.Store.LiftFeatureBans(ctx, p.UserID, p.FeatureID)
	if err != nil {
		return nil, err
	}
	return payload{"lifted": lifted}, nil
}

type announcementParams struct {
	Title        string `json:"title" validate:"required,max=200"`
	Message      string `json:"message" validate:"required,max=5000"`
	AudienceTier string `json:"audience_tier" validate:"omitempty,oneof=free plus pro agent"`
}

func (d *AdminDispatcher) triggerAnnouncement(ctx context.Context, adminID string, raw json.RawMessage) (any, error) {
	var p announcementParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	title := security.SanitizeText(p.Title, 200)
	message := security.SanitizeText(p.Message, 5000)
	if title == "" || message == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "title and message must contain text")
	}

	a := &models.Announcement{
		Slug:         slug.Make(title),
		Title:        title,
		Message:      message,
		AudienceTier: models.Tier(p.AudienceTier),
		CreatedBy:    adminID,
	}
	if err := d.Store.CreateAnnouncement(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

type emotionalLogParams struct {
	UserID  string `json:"user_id" validate:"omitempty,uuid"`
	Emotion string `json:"emotion" validate:"max=32"`
	Limit   int    `json:"limit" validate:"gte=0"`
}

func (d *AdminDispatcher) getEmotionalLogs(ctx context.Context, _ string, raw json.RawMessage) (any, error) {
	var p emotionalLogParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	limit := p.Limit
	switch {
	case limit == 0:
		limit = 20
	case limit > 200:
		limit = 200
	}

	sigs, err := d.Store.ListSignatures(ctx, models.EmotionFilter{
		UserID:  p.UserID,
		Emotion: strings.ToLower(strings.TrimSpace(p.Emotion)),
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	if sigs == nil {
		sigs = []models.EmotionalSignature{}
	}
	return sigs, nil
}

type userParams struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type UserBreakdown struct {
	Profile            *models.UserProfile        `json:"profile"`
	Progress           LevelProgress              `json:"progress"`
	XPLogs             []models.XPLog             `json:"xp_logs"`
	CreditTransactions []models.CreditTransaction `json:"credit_transactions"`
	Badges             []models.BadgeEarnedLog    `json:"badges"`
	ActiveBans         []models.FeatureBan        `json:"active_bans"`
}

func (d *AdminDispatcher) getUserBreakdown(ctx context.Context, _ string, raw json.RawMessage) (any, error) {
	var p userParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return d.userBreakdown(ctx, p.UserID)
}

func (d *AdminDispatcher) userBreakdown(ctx context.Context, userID string) (*UserBreakdown, error) {
	profile, err := d.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &UserBreakdown{Profile: profile, Progress: ProgressForXP(profile.XP)}

	if out.XPLogs, err = d.Store.RecentXPLogs(ctx, userID, 20); err != nil {
		return nil, err
	}
	if out.CreditTransactions, err = d.Store.RecentCreditTransactions(ctx, userID, 20); err != nil {
		return nil, err
	}
	if out.Badges, err = d.Store.ListBadges(ctx, userID); err != nil {
		return nil, err
	}
	if out.ActiveBans, err = d.Store.ActiveBans(ctx, userID, d.Now()); err != nil {
		return nil, err
	}
	return out, nil
}

type HealthExportResult struct {
	Snapshot *models.HealthSnapshot `json:"snapshot"`
	Report   *HealthReport          `json:"report,omitempty"`
}

func (d *AdminDispatcher) exportGiftverseHealth(ctx context.Context, _ string, _ json.RawMessage) (any, error) {
	snap, err := d.Store.HealthSnapshot(ctx, d.Now())
	if err != nil {
		return nil, err
	}
	out := &HealthExportResult{Snapshot: snap}
	if d.Exporter != nil {
		if out.Report, err = d.Exporter.Export(ctx, snap); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type impersonationParams struct {
	TargetUserID string `json:"target_user_id" validate:"required,uuid"`
}

type ImpersonationGrant struct {
	Session *models.ImpersonationSession `json:"session"`
	Token   string                       `json:"token"`
}

func (d *AdminDispatcher) startImpersonation(ctx context.Context, adminID string, raw json.RawMessage) (any, error) {
	var p impersonationParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if d.Tokens == nil {
		return nil, apperrors.New(apperrors.ErrCodeInternalError, "impersonation tokens are not configured")
	}

	target, err := d.Store.GetUser(ctx, p.TargetUserID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin {
		return nil, apperrors.New(apperrors.ErrCodeForbidden, "cannot impersonate another admin")
	}

	now := d.Now()
	session := &models.ImpersonationSession{
		ID:           uuid.NewString(),
		AdminID:      adminID,
		TargetUserID: target.ID,
		StartedAt:    now,
		ExpiresAt:    now.Add(d.ImpersonationTTL),
	}
	token, err := d.Tokens.IssueImpersonation(session.ID, adminID, target.ID, session.ExpiresAt)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to sign impersonation token")
	}
	if err := d.Store.CreateImpersonation(ctx, session); err != nil {
		return nil, err
	}
	return &ImpersonationGrant{Session: session, Token: token}, nil
}

type endImpersonationParams struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

func (d *AdminDispatcher) endImpersonation(ctx context.Context, _ string, raw json.RawMessage) (any, error) {
	var p endImpersonationParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	session, err := d.Store.GetImpersonation(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	if session.EndedAt != nil {
		return nil, apperrors.New(apperrors.ErrCodeConflict, "impersonation session already ended")
	}

	now := d.Now()
	if err := d.Store.EndImpersonation(ctx, session.ID, now); err != nil {
		return nil, err
	}
	session.EndedAt = &now
	return session, nil
}

func (d *AdminDispatcher) grant5XPBonus(ctx context.Context, adminID string, raw json.RawMessage) (any, error) {
	var p userParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return d.applyXP(ctx, adminID, p.UserID, 5, models.ReasonBonus5XP)
}

// payload is a small ad-hoc JSON object.
type payload map[string]any

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

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Admin action names. camelCase spellings are accepted as aliases.
const (
	ActionAdjustUserXP          = "adjust_user_xp"
	ActionAdjustUserCredits     = "adjust_user_credits"
	ActionAssignBadge           = "assign_badge"
	ActionRevokeBadge           = "revoke_badge"
	ActionBanUserFromFeature    = "ban_user_from_feature"
	ActionUnbanUserFromFeature  = "unban_user_from_feature"
	ActionTriggerAnnouncement   = "trigger_announcement"
	ActionSimulateEdgeCase      = "simulate_edge_case"
	ActionGetEmotionalLogs      = "get_emotional_logs"
	ActionGetUserBreakdown      = "get_user_breakdown"
	ActionExportGiftverseHealth = "export_giftverse_health"
	ActionStartImpersonation    = "start_impersonation"
	ActionEndImpersonation      = "end_impersonation"
	ActionGrant5XPBonus         = "grant_5xp_bonus"
)

var actionAliases = map[string]string{
	"adjustuserxp":          ActionAdjustUserXP,
	"adjustusercredits":     ActionAdjustUserCredits,
	"assignbadge":           ActionAssignBadge,
	"revokebadge":           ActionRevokeBadge,
	"banuserfromfeature":    ActionBanUserFromFeature,
	"unbanuserfromfeature":  ActionUnbanUserFromFeature,
	"triggerannouncement":   ActionTriggerAnnouncement,
	"simulateedgecase":      ActionSimulateEdgeCase,
	"getemotionallogs":      ActionGetEmotionalLogs,
	"getuserbreakdown":      ActionGetUserBreakdown,
	"exportgiftversehealth": ActionExportGiftverseHealth,
	"startimpersonation":    ActionStartImpersonation,
	"endimpersonation":      ActionEndImpersonation,
	"grant5xpbonus":         ActionGrant5XPBonus,
}

type DispatchRequest struct {
	Action     string          `json:"action"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	AdminID    string          `json:"admin_id"`
}

type DispatchResult struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

// ActionDispatcher is what the voice router needs from the admin dispatcher.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error)
}

type ImpersonationIssuer interface {
	IssueImpersonation(sessionID, adminID, targetUserID string, expiresAt time.Time) (string, error)
}

// HealthReportExporter turns a snapshot into a stored report. Optional.
type HealthReportExporter interface {
	Export(ctx context.Context, snap *models.HealthSnapshot) (*HealthReport, error)
}

type ActionObserver interface {
	ObserveAdminAction(action, status string, elapsed time.Duration)
}

type actionHandler func(ctx context.Context, adminID string, params json.RawMessage) (any, error)

// AdminDispatcher routes POST /api/admin/actions to one handler per action and writes the
// audit log for every call that passes the admin check.
type AdminDispatcher struct {
	Store            AdminStore
	Badges           *BadgeService
	Tokens           ImpersonationIssuer
	Exporter         HealthReportExporter
	Observer         ActionObserver
	ImpersonationTTL time.Duration
	Now              func() time.Time

	handlers map[string]actionHandler
}

func NewAdminDispatcher(store AdminStore, tokens ImpersonationIssuer, exporter HealthReportExporter, impersonationTTL time.Duration) *AdminDispatcher {
	d := &AdminDispatcher{
		Store:            store,
		Badges:           NewBadgeService(store),
		Tokens:           tokens,
		Exporter:         exporter,
		ImpersonationTTL: impersonationTTL,
		Now:              func() time.Time { return time.Now().UTC() },
	}
	d.handlers = map[string]actionHandler{
		ActionAdjustUserXP:          d.adjustUserXP,
		ActionAdjustUserCredits:     d.adjustUserCredits,
		ActionAssignBadge:           d.assignBadge,
		ActionRevokeBadge:           d.revokeBadge,
		ActionBanUserFromFeature:    d.banUserFromFeature,
		ActionUnbanUserFromFeature:  d.unbanUserFromFeature,
		ActionTriggerAnnouncement:   d.triggerAnnouncement,
		ActionSimulateEdgeCase:      d.simulateEdgeCase,
		ActionGetEmotionalLogs:      d.getEmotionalLogs,
		ActionGetUserBreakdown:      d.getUserBreakdown,
		ActionExportGiftverseHealth: d.exportGiftverseHealth,
		ActionStartImpersonation:    d.startImpersonation,
		ActionEndImpersonation:      d.endImpersonation,
		ActionGrant5XPBonus:         d.grant5XPBonus,
	}
	return d
}

// Actions lists the canonical action names.
func (d *AdminDispatcher) Actions() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	return names
}

func (d *AdminDispatcher) resolve(action string) (string, actionHandler, bool) {
	if h, ok := d.handlers[action]; ok {
		return action, h, true
	}
	if name, ok := actionAliases[strings.ToLower(action)]; ok {
		return name, d.handlers[name], true
	}
	return action, nil, false
}

func (d *AdminDispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	req.Action = strings.TrimSpace(req.Action)
	req.AdminID = strings.TrimSpace(req.AdminID)
	if req.Action == "" || req.AdminID == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "action and admin_id are required")
	}

	if _, err := uuid.Parse(req.AdminID); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeForbidden, "admin access required")
	}
	isAdmin, err := d.Store.IsAdmin(ctx, req.AdminID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		logger.Warn("Admin action rejected", "admin_id", req.AdminID, "action", req.Action)
		return nil, apperrors.New(apperrors.ErrCodeForbidden, "admin access required")
	}

	start := time.Now()
	name, handler, ok := d.resolve(req.Action)

	var data any
	if !ok {
		err = apperrors.New(apperrors.ErrCodeValidation, fmt.Sprintf("unknown action %q", req.Action))
	} else {
		data, err = handler(ctx, req.AdminID, req.Parameters)
	}

	d.audit(ctx, name, req, data, err, time.Since(start))

	if err != nil {
		return nil, err
	}
	return &DispatchResult{Action: name, Data: data}, nil
}

// audit never fails the request; a failed insert is only logged.
func (d *AdminDispatcher) audit(ctx context.Context, action string, req DispatchRequest, data any, actionErr error, elapsed time.Duration) {
	status := models.ActionStatusSuccess
	errMsg := ""
	if actionErr != nil {
		status = models.ActionStatusError
		errMsg = actionErr.Error()
	}

	entry := &models.AdminActionLog{
		AdminID:      req.AdminID,
		ActionType:   action,
		Request:      jsonColumn(req.Parameters),
		Status:       status,
		ErrorMessage: errMsg,
		DurationMs:   elapsed.Milliseconds(),
	}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			entry.Response = datatypes.JSON(b)
		}
	}

	if err := d.Store.RecordAdminAction(context.WithoutCancel(ctx), entry); err != nil {
		logger.Error("Failed to write admin action log", "action", action, "admin_id", req.AdminID, "error", err)
	}
	if d.Observer != nil {
		d.Observer.ObserveAdminAction(action, status, elapsed)
	}

	if actionErr != nil {
		logger.Warn("Admin action failed", "action", action, "admin_id", req.AdminID, "error", actionErr)
	} else {
		logger.Info("Admin action", "action", action, "admin_id", req.AdminID, "duration_ms", entry.DurationMs)
	}
}

func jsonColumn(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || !json.Valid(raw) {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

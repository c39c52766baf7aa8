package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/models"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for repositories.Store.
type fakeStore struct {
	mu sync.Mutex

	users        map[string]*models.UserProfile
	xpLogs       []models.XPLog
	credits      []models.CreditTransaction
	usages       []models.FeatureUsage
	badges       []models.BadgeEarnedLog
	bans         []models.FeatureBan
	sessions     map[string]*models.ImpersonationSession
	announce     []models.Announcement
	signatures   []models.EmotionalSignature
	audit        []models.AdminActionLog
	settings     map[string]models.RewardSetting
	nominations  map[string]*models.Nomination
	reveals      map[string]*models.RevealSession
	auditErr     error
	snapshot     *models.HealthSnapshot
	anomalyCalls int
	// settingColumns is the last column set passed to UpdateRewardSetting.
	settingColumns map[string]any
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		users:       make(map[string]*models.UserProfile),
		sessions:    make(map[string]*models.ImpersonationSession),
		settings:    make(map[string]models.RewardSetting),
		nominations: make(map[string]*models.Nomination),
		reveals:     make(map[string]*models.RevealSession),
	}
	for _, r := range models.DefaultRewardSettings {
		s.settings[r.FeatureID] = r
	}
	return s
}

func (s *fakeStore) addUser(u models.UserProfile) *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Tier == "" {
		u.Tier = models.TierFree
	}
	s.users[u.ID] = &u
	return &u
}

// uuidColumn fails the way a Postgres uuid cast does.
func uuidColumn(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Wrap(fmt.Errorf("invalid input syntax for type uuid: %q", id), apperrors.ErrCodeInternalError, "failed to load user")
	}
	return nil
}

func (s *fakeStore) GetUser(_ context.Context, userID string) (*models.UserProfile, error) {
	if err := uuidColumn(userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) IsAdmin(_ context.Context, userID string) (bool, error) {
	if err := uuidColumn(userID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	return ok && u.IsAdmin, nil
}

func (s *fakeStore) SearchUsers(_ context.Context, query string, limit int) ([]models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.UserProfile
	q := strings.ToLower(query)
	for _, u := range s.users {
		if q == "" || strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) ApplyXPDelta(_ context.Context, entry models.XPLog) (*models.BalanceChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[entry.UserID]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "user not found")
	}
	prev := u.XP
	u.XP = models.ClampBalance(prev, entry.Amount)
	entry.ID = uuid.NewString()
	entry.Amount = u.XP - prev
	entry.CreatedAt = time.Now()
	s.xpLogs = append(s.xpLogs, entry)
	return &models.BalanceChange{UserID: u.ID, Previous: prev, New: u.XP, DeltaApplied: entry.Amount}, nil
}

func (s *fakeStore) ApplyCreditDelta(_ context.Context, entry models.CreditTransaction) (*models.BalanceChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[entry.UserID]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "user not found")
	}
	prev := u.Credits
	u.Credits = models.ClampBalance(prev, entry.Amount)
	entry.ID = uuid.NewString()
	entry.Amount = u.Credits - prev
	entry.CreatedAt = time.Now()
	s.credits = append(s.credits, entry)
	return &models.BalanceChange{UserID: u.ID, Previous: prev, New: u.Credits, DeltaApplied: entry.Amount}, nil
}

func (s *fakeStore) SpendOnFeature(_ context.Context, userID string, setting models.RewardSetting) (*models.UserProfile, *models.FeatureUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil, apperrors.New(apperrors.ErrCodeNotFound, "user not found")
	}
	if u.Credits < setting.BaseCreditCost {
		return nil, nil, apperrors.New(apperrors.ErrCodeInsufficientFunds, "insufficient credits")
	}
	xp := setting.EffectiveXP()
	u.Credits -= setting.BaseCreditCost
	u.XP += xp
	usage := models.FeatureUsage{ID: uuid.NewString(), UserID: userID, FeatureID: setting.FeatureID, XPAwarded: xp, CreditsSpent: setting.BaseCreditCost, CreatedAt: time.Now()}
	s.usages = append(s.usages, usage)
	cp := *u
	return &cp, &usage, nil
}

func (s *fakeStore) RecentXPLogs(_ context.Context, userID string, limit int) ([]models.XPLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.XPLog
	for i := len(s.xpLogs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.xpLogs[i].UserID == userID {
			out = append(out, s.xpLogs[i])
		}
	}
	return out, nil
}

func (s *fakeStore) RecentCreditTransactions(_ context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CreditTransaction
	for i := len(s.credits) - 1; i >= 0 && len(out) < limit; i-- {
		if s.credits[i].UserID == userID {
			out = append(out, s.credits[i])
		}
	}
	return out, nil
}

func (s *fakeStore) CreditTransactionsSince(_ context.Context, since time.Time) ([]models.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CreditTransaction
	for _, t := range s.credits {
		if !t.CreatedAt.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) CountFeatureUses(_ context.Context, featureID string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.usages {
		if u.FeatureID == featureID && !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) LastFeatureUse(_ context.Context, userID, featureID string) (*models.FeatureUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.usages) - 1; i >= 0; i-- {
		if s.usages[i].UserID == userID && s.usages[i].FeatureID == featureID {
			u := s.usages[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) HasBadge(_ context.Context, userID, badgeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.badges {
		if b.UserID == userID && b.BadgeID == badgeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) AwardBadge(ctx context.Context, badge *models.BadgeEarnedLog) (bool, error) {
	if has, _ := s.HasBadge(ctx, badge.UserID, badge.BadgeID); has {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	badge.ID = uuid.NewString()
	badge.CreatedAt = time.Now()
	s.badges = append(s.badges, *badge)
	return true, nil
}

func (s *fakeStore) RevokeBadge(_ context.Context, userID, badgeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.badges {
		if b.UserID == userID && b.BadgeID == badgeID {
			s.badges = append(s.badges[:i], s.badges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListBadges(_ context.Context, userID string) ([]models.BadgeEarnedLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BadgeEarnedLog
	for _, b := range s.badges {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateFeatureBan(_ context.Context, ban *models.FeatureBan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ban.ID = uuid.NewString()
	ban.CreatedAt = time.Now()
	s.bans = append(s.bans, *ban)
	return nil
}

func (s *fakeStore) LiftFeatureBans(_ context.Context, userID, featureID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []models.FeatureBan
	var n int64
	for _, b := range s.bans {
		if b.UserID == userID && b.FeatureID == featureID {
			n++
			continue
		}
		kept = append(kept, b)
	}
	s.bans = kept
	return n, nil
}

func (s *fakeStore) ActiveBans(_ context.Context, userID string, now time.Time) ([]models.FeatureBan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FeatureBan
	for _, b := range s.bans {
		if b.UserID == userID && b.Active(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteExpiredBans(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []models.FeatureBan
	var n int64
	for _, b := range s.bans {
		if !b.Active(now) {
			n++
			continue
		}
		kept = append(kept, b)
	}
	s.bans = kept
	return n, nil
}

func (s *fakeStore) CreateImpersonation(_ context.Context, session *models.ImpersonationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *fakeStore) GetImpersonation(_ context.Context, id string) (*models.ImpersonationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "impersonation session not found")
	}
	cp := *sess
	return &cp, nil
}

func (s *fakeStore) EndImpersonation(_ context.Context, id string, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.EndedAt = &endedAt
	}
	return nil
}

func (s *fakeStore) CreateAnnouncement(_ context.Context, a *models.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.NewString()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.announce = append(s.announce, *a)
	return nil
}

func (s *fakeStore) ListAnnouncements(_ context.Context, since time.Time, limit int) ([]models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := append([]models.Announcement(nil), s.announce...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	var out []models.Announcement
	for _, a := range rows {
		if a.CreatedAt.After(since) && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) ListAnnouncementsForTier(_ context.Context, tier models.Tier, since time.Time, limit int) ([]models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := map[models.Tier]bool{"": true}
	for _, t := range tier.VisibleTiers() {
		visible[t] = true
	}
	var rows []models.Announcement
	for _, a := range s.announce {
		if a.CreatedAt.After(since) && visible[a.AudienceTier] {
			rows = append(rows, a)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *fakeStore) CreateSignature(_ context.Context, sig *models.EmotionalSignature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig.ID = uuid.NewString()
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now().UTC()
	}
	s.signatures = append(s.signatures, *sig)
	return nil
}

func (s *fakeStore) ListSignatures(_ context.Context, f models.EmotionFilter) ([]models.EmotionalSignature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.EmotionalSignature
	for i := len(s.signatures) - 1; i >= 0 && len(out) < f.Limit; i-- {
		sig := s.signatures[i]
		if (f.UserID == "" || sig.UserID == f.UserID) && (f.Emotion == "" || sig.Emotion == f.Emotion) {
			out = append(out, sig)
		}
	}
	return out, nil
}

func (s *fakeStore) UndeliveredSignatures(_ context.Context, maxAttempts, limit int) ([]models.EmotionalSignature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.EmotionalSignature
	for _, sig := range s.signatures {
		if sig.WebhookDeliveredAt == nil && sig.WebhookAttempts < maxAttempts && len(out) < limit {
			out = append(out, sig)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkSignatureDelivered(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.signatures {
		if s.signatures[i].ID == id {
			s.signatures[i].WebhookDeliveredAt = &at
			s.signatures[i].WebhookAttempts++
		}
	}
	return nil
}

func (s *fakeStore) IncrementSignatureAttempts(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.signatures {
		if s.signatures[i].ID == id {
			s.signatures[i].WebhookAttempts++
		}
	}
	return nil
}

func (s *fakeStore) DetectAnomalies(_ context.Context, since time.Time, minCount int64, minConfidence float64) ([]models.EmotionalAnomaly, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anomalyCalls++
	byUser := make(map[string]*models.EmotionalAnomaly)
	for _, sig := range s.signatures {
		if sig.CreatedAt.Before(since) || sig.Confidence < minConfidence || !models.IsNegativeEmotion(sig.Emotion) {
			continue
		}
		a, ok := byUser[sig.UserID]
		if !ok {
			a = &models.EmotionalAnomaly{UserID: sig.UserID}
			byUser[sig.UserID] = a
		}
		a.AvgConfidence = (a.AvgConfidence*float64(a.Signatures) + sig.Confidence) / float64(a.Signatures+1)
		a.Signatures++
		if sig.CreatedAt.After(a.LastSeen) {
			a.LastSeen = sig.CreatedAt
		}
	}
	var out []models.EmotionalAnomaly
	for _, a := range byUser {
		if a.Signatures >= minCount {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) RecordAdminAction(_ context.Context, entry *models.AdminActionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auditErr != nil {
		return s.auditErr
	}
	s.audit = append(s.audit, *entry)
	return nil
}

func (s *fakeStore) HealthSnapshot(_ context.Context, now time.Time) (*models.HealthSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil {
		return s.snapshot, nil
	}
	snap := &models.HealthSnapshot{GeneratedAt: now, UsersByTier: make(map[models.Tier]int64)}
	for _, u := range s.users {
		snap.TotalUsers++
		snap.UsersByTier[u.Tier]++
	}
	return snap, nil
}

func (s *fakeStore) ListRewardSettings(_ context.Context) ([]models.RewardSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RewardSetting
	for _, r := range s.settings {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeatureID < out[j].FeatureID })
	return out, nil
}

func (s *fakeStore) GetRewardSetting(_ context.Context, featureID string) (*models.RewardSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.settings[featureID]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "reward setting not found")
	}
	return &r, nil
}

func (s *fakeStore) UpdateRewardSetting(_ context.Context, featureID string, columns map[string]any) (*models.RewardSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.settings[featureID]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "reward setting not found")
	}
	s.settingColumns = columns
	for col, v := range columns {
		switch col {
		case "base_xp_reward":
			r.BaseXPReward = v.(int64)
		case "base_credit_cost":
			r.BaseCreditCost = v.(int64)
		case "multiplier":
			r.Multiplier = v.(float64)
		case "cooldown_minutes":
			r.CooldownMinutes = v.(int)
		case "is_active":
			r.IsActive = v.(bool)
		case "updated_by":
			r.UpdatedBy = v.(string)
		default:
			return nil, fmt.Errorf("unknown column %q", col)
		}
	}
	s.settings[featureID] = r
	return &r, nil
}

func (s *fakeStore) SearchXPLogs(_ context.Context, q models.SearchQuery) ([]models.XPLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.XPLog
	for _, r := range s.xpLogs {
		if matches(q, r.UserID, r.CreatedAt, r.Reason) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) SearchCreditTransactions(_ context.Context, q models.SearchQuery) ([]models.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CreditTransaction
	for _, r := range s.credits {
		if matches(q, r.UserID, r.CreatedAt, r.Reason) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) SearchBadgeLogs(_ context.Context, q models.SearchQuery) ([]models.BadgeEarnedLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BadgeEarnedLog
	for _, r := range s.badges {
		if matches(q, r.UserID, r.CreatedAt, r.Reason, r.BadgeID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) SearchSignatures(_ context.Context, q models.SearchQuery) ([]models.EmotionalSignature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.EmotionalSignature
	for _, r := range s.signatures {
		if q.Emotion != "" && r.Emotion != q.Emotion {
			continue
		}
		if matches(q, r.UserID, r.CreatedAt, r.Context, r.Emotion) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(q models.SearchQuery, userID string, at time.Time, fields ...string) bool {
	if q.UserID != "" && userID != q.UserID {
		return false
	}
	if q.DateFrom != nil && at.Before(*q.DateFrom) {
		return false
	}
	if q.DateTo != nil && at.After(*q.DateTo) {
		return false
	}
	if q.Text == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), strings.ToLower(q.Text)) {
			return true
		}
	}
	return false
}

func (s *fakeStore) CreateNomination(_ context.Context, n *models.Nomination) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uuid.NewString()
	cp := *n
	s.nominations[n.ID] = &cp
	return nil
}

func (s *fakeStore) ListNominations(_ context.Context, status models.NominationStatus, limit int) ([]models.Nomination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Nomination
	for _, n := range s.nominations {
		if status == "" || n.Status == status {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *fakeStore) ReviewNomination(_ context.Context, id string, status models.NominationStatus, reviewer string, at time.Time) (*models.Nomination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nominations[id]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "nomination not found")
	}
	if n.Status != models.NominationPending {
		return nil, apperrors.New(apperrors.ErrCodeConflict, fmt.Sprintf("nomination already %s", n.Status))
	}
	n.Status = status
	n.ReviewedBy = &reviewer
	n.ReviewedAt = &at
	cp := *n
	return &cp, nil
}

func (s *fakeStore) CreateRevealSession(_ context.Context, rs *models.RevealSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reveals[rs.SessionKey]; ok {
		return apperrors.New(apperrors.ErrCodeAlreadyExists, "reveal session already exists")
	}
	rs.ID = uuid.NewString()
	cp := *rs
	s.reveals[rs.SessionKey] = &cp
	return nil
}

func (s *fakeStore) MarkRevealed(_ context.Context, key string, at time.Time) (*models.RevealSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.reveals[key]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "reveal session not found")
	}
	if rs.RevealedAt != nil {
		return nil, apperrors.New(apperrors.ErrCodeConflict, "session already revealed")
	}
	rs.RevealedAt = &at
	cp := *rs
	return &cp, nil
}

var (
	_ AdminStore          = (*fakeStore)(nil)
	_ EconomyStore        = (*fakeStore)(nil)
	_ RewardSettingsStore = (*fakeStore)(nil)
	_ SearchStore         = (*fakeStore)(nil)
	_ NominationStore     = (*fakeStore)(nil)
	_ RevealStore         = (*fakeStore)(nil)
)

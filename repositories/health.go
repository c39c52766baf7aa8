package repositories

import (
	"context"
	"time"

	"agentgift-service/models"
)

// HealthSnapshot computes the Giftverse health counters in Go instead of a database-side function.
func (s *Store) HealthSnapshot(ctx context.Context, now time.Time) (*models.HealthSnapshot, error) {
	db := s.DB.WithContext(ctx)
	weekAgo := now.Add(-7 * 24 * time.Hour)
	dayAgo := now.Add(-24 * time.Hour)

	snap := &models.HealthSnapshot{
		GeneratedAt: now,
		UsersByTier: make(map[models.Tier]int64),
	}

	var tiers []struct {
		Tier  models.Tier
		Count int64
	}
	if err := db.Model(&models.UserProfile{}).Select("tier, COUNT(*) AS count").Group("tier").Scan(&tiers).Error; err != nil {
		return nil, internal(err, "failed to count users")
	}
	for _, t := range tiers {
		snap.UsersByTier[t.Tier] = t.Count
		snap.TotalUsers += t.Count
	}

	sums := []struct {
		dest  *int64
		model interface{}
		where string
	}{
		{&snap.XPIssued7d, &models.XPLog{}, "amount > 0"},
		{&snap.XPRemoved7d, &models.XPLog{}, "amount < 0"},
		{&snap.CreditsSpent7d, &models.CreditTransaction{}, "amount < 0"},
		{&snap.CreditsGranted7d, &models.CreditTransaction{}, "amount > 0"},
	}
	for _, q := range sums {
		var total int64
		err := db.Model(q.model).
			Select("COALESCE(SUM(ABS(amount)), 0)").
			Where(q.where).
			Where("created_at >= ?", weekAgo).
			Scan(&total).Error
		if err != nil {
			return nil, internal(err, "failed to sum ledger")
		}
		*q.dest = total
	}

	counts := []struct {
		dest  *int64
		model interface{}
		query string
		args  []interface{}
	}{
		{&snap.BadgesAwarded7d, &models.BadgeEarnedLog{}, "created_at >= ?", []interface{}{weekAgo}},
		{&snap.ActiveBans, &models.FeatureBan{}, "expires_at IS NULL OR expires_at > ?", []interface{}{now}},
		{&snap.EmotionalSignals7d, &models.EmotionalSignature{}, "created_at >= ?", []interface{}{weekAgo}},
		{&snap.PendingNominations, &models.Nomination{}, "status = ?", []interface{}{models.NominationPending}},
		{&snap.AdminActions24h, &models.AdminActionLog{}, "created_at >= ?", []interface{}{dayAgo}},
		{&snap.AdminActionErrors24h, &models.AdminActionLog{}, "created_at >= ? AND status = ?", []interface{}{dayAgo, models.ActionStatusError}},
	}
	for _, q := range counts {
		if err := db.Model(q.model).Where(q.query, q.args...).Count(q.dest).Error; err != nil {
			return nil, internal(err, "failed to build health snapshot")
		}
	}

	return snap, nil
}

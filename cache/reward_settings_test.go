package cache

import (
	"context"
	"testing"
	"time"

	"agentgift-service/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSettingKey(t *testing.T) {
	if got := settingKey("reveal_session"); got != "reward_settings:reveal_session" {
		t.Errorf("settingKey() = %q", got)
	}
}

func TestOpen_InvalidURL(t *testing.T) {
	if _, err := Open(context.Background(), "not a url", time.Minute); err == nil {
		t.Error("Open() expected error for a malformed URL")
	}
}

func TestNewRewardSettingsCache_DefaultTTL(t *testing.T) {
	c := NewRewardSettingsCache(nil, 0)
	if c.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", c.ttl)
	}
}

func newTestCache(t *testing.T) (*RewardSettingsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRewardSettingsCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRewardSettingsCache_SettingRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if _, ok, err := c.GetSetting(ctx, "reveal_session"); ok || err != nil {
		t.Fatalf("empty cache: ok = %v, err = %v; want miss", ok, err)
	}

	want := &models.RewardSetting{FeatureID: "reveal_session", BaseXPReward: 40, Multiplier: 1.5}
	if err := c.SetSetting(ctx, want); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(settingKey("reveal_session")); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}

	got, ok, err := c.GetSetting(ctx, "reveal_session")
	if err != nil || !ok {
		t.Fatalf("GetSetting() ok = %v, err = %v", ok, err)
	}
	if got.BaseXPReward != 40 || got.Multiplier != 1.5 {
		t.Errorf("GetSetting() = %+v", got)
	}
}

func TestRewardSettingsCache_CorruptEntryIsDropped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := mr.Set(settingsListKey, "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.GetAll(ctx); ok || err != nil {
		t.Fatalf("corrupt entry: ok = %v, err = %v; want miss", ok, err)
	}
	if mr.Exists(settingsListKey) {
		t.Error("corrupt entry was not deleted")
	}
}

func TestRewardSettingsCache_Invalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	settings := []models.RewardSetting{
		{FeatureID: "gift_suggestion", BaseXPReward: 5, Multiplier: 1},
		{FeatureID: "voice_assistant", BaseXPReward: 20, Multiplier: 2},
	}
	if err := c.SetAll(ctx, settings); err != nil {
		t.Fatal(err)
	}
	for i := range settings {
		if err := c.SetSetting(ctx, &settings[i]); err != nil {
			t.Fatal(err)
		}
	}
	if all, ok, err := c.GetAll(ctx); !ok || err != nil || len(all) != 2 {
		t.Fatalf("GetAll() = %v, %v, %v", all, ok, err)
	}

	if err := c.Invalidate(ctx, "voice_assistant"); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(settingKey("voice_assistant")) || mr.Exists(settingsListKey) {
		t.Error("Invalidate() left the setting or the list behind")
	}
	if !mr.Exists(settingKey("gift_suggestion")) {
		t.Error("Invalidate() removed an unrelated setting")
	}
}

func TestRewardSettingsCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	if _, ok, err := c.GetSetting(context.Background(), "reveal_session"); ok || err == nil {
		t.Errorf("closed server: ok = %v, err = %v; want error", ok, err)
	}
}

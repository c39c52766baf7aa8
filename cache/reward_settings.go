package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agentgift-service/models"

	"github.com/redis/go-redis/v9"
)

const (
	settingKeyPrefix = "reward_settings:"
	settingsListKey  = "reward_settings:all"
)

// RewardSettingsCache keeps JSON copies of reward settings in Redis.
type RewardSettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Open parses a redis:// URL and pings the server.
func Open(ctx context.Context, redisURL string, ttl time.Duration) (*RewardSettingsCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRewardSettingsCache(client, ttl), nil
}

func NewRewardSettingsCache(client *redis.Client, ttl time.Duration) *RewardSettingsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RewardSettingsCache{client: client, ttl: ttl}
}

func settingKey(featureID string) string {
	return settingKeyPrefix + featureID
}

func (c *RewardSettingsCache) GetSetting(ctx context.Context, featureID string) (*models.RewardSetting, bool, error) {
	var setting models.RewardSetting
	ok, err := c.get(ctx, settingKey(featureID), &setting)
	if !ok || err != nil {
		return nil, false, err
	}
	return &setting, true, nil
}

func (c *RewardSettingsCache) SetSetting(ctx context.Context, setting *models.RewardSetting) error {
	return c.set(ctx, settingKey(setting.FeatureID), setting)
}

func (c *RewardSettingsCache) GetAll(ctx context.Context) ([]models.RewardSetting, bool, error) {
	var settings []models.RewardSetting
	ok, err := c.get(ctx, settingsListKey, &settings)
	if !ok || err != nil {
		return nil, false, err
	}
	return settings, true, nil
}

func (c *RewardSettingsCache) SetAll(ctx context.Context, settings []models.RewardSetting) error {
	return c.set(ctx, settingsListKey, settings)
}

// Invalidate drops one setting and the list that contains it.
func (c *RewardSettingsCache) Invalidate(ctx context.Context, featureID string) error {
	return c.client.Del(ctx, settingKey(featureID), settingsListKey).Err()
}

func (c *RewardSettingsCache) Close() error {
	return c.client.Close()
}

func (c *RewardSettingsCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// A corrupt entry is treated as a miss and removed.
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *RewardSettingsCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

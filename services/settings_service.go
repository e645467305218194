package services

import (
	"context"
	"errors"
	"time"

	"attend/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const settingsCacheTTL = 5 * time.Minute

// GetSettingFlag reads a boolean feature flag, going through the Redis
// cache when available. An unset flag returns the fallback.
func GetSettingFlag(ctx context.Context, db *gorm.DB, rdb *redis.Client, key string, fallback bool) bool {
	cacheKey := "setting:" + key
	if rdb != nil {
		var cached string
		if err := GetFromRedis(ctx, rdb, cacheKey, &cached); err == nil && cached != "" {
			return cached == "true"
		}
	}

	var setting models.Setting
	err := db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback
	}
	if err != nil {
		return fallback
	}

	value := setting.Value == "true" || setting.Value == "1"
	if rdb != nil {
		cached := "false"
		if value {
			cached = "true"
		}
		SetToRedis(ctx, rdb, cacheKey, cached, settingsCacheTTL)
	}
	return value
}

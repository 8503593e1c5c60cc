package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL mặc định cho cache dashboard
const DashboardCacheTTL = 10 * time.Minute

// Hàm lấy data từ Redis
func GetFromRedis(ctx context.Context, rdb *redis.Client, key string, target interface{}) error {
	cachedData, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	// Parse JSON thành object
	if err := json.Unmarshal([]byte(cachedData), target); err != nil {
		return err
	}
	return nil
}

// Hàm lưu dữ liệu vào Redis
func SetToRedis(ctx context.Context, rdb *redis.Client, key string, value interface{}, ttl time.Duration) error {
	dataJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if err := rdb.Set(ctx, key, dataJSON, ttl).Err(); err != nil {
		return err
	}
	return nil
}

// Hàm xóa cache Redis
func DeleteFromRedis(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	return nil
}

// NotificationCacheKeys liệt kê các cache key phải xóa khi một thông báo
// hoặc lần nhắc của nó thay đổi. Danh sách key cố định, không lặp lại
// ở từng chỗ gọi.
func NotificationCacheKeys(notificationID, gardenID, userID uint) []string {
	return []string{
		fmt.Sprintf("notification:%d", notificationID),
		fmt.Sprintf("garden:%d:notifications", gardenID),
		fmt.Sprintf("user:%d:notification_dashboard", userID),
		fmt.Sprintf("user:%d:upcoming_notifications", userID),
		fmt.Sprintf("user:%d:garden_dashboard", userID),
	}
}

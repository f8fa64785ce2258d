package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

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
func DeleteFromRedis(ctx context.Context, rdb *redis.Client, key string) error {
	if err := rdb.Del(ctx, key).Err(); err != nil {
		return err
	}
	return nil
}

// Hàm xóa các key theo pattern (vd: "availability:property:12:*")
func DeleteKeysByPattern(ctx context.Context, rdb *redis.Client, pattern string) error {
	iter := rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// RedisCacheInvalidator xóa cache availability/export của property trên
// Redis; dùng cho các đường ghi ledger không đi qua controller (cron sync)
type RedisCacheInvalidator struct {
	Ctx    context.Context
	Client *redis.Client
}

func (r *RedisCacheInvalidator) InvalidateProperty(propertyID uint) {
	if r.Client == nil {
		return
	}
	if err := DeleteKeysByPattern(r.Ctx, r.Client, fmt.Sprintf("availability:property:%d*", propertyID)); err != nil {
		log.Printf("Lỗi khi xóa cache availability của property %d: %v", propertyID, err)
	}
	_ = DeleteFromRedis(r.Ctx, r.Client, fmt.Sprintf("export:property:%d", propertyID))
}

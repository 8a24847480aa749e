package db

import (
	"context"
	"fmt"
	"time"

	"AuthQ/config"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis 初始化Redis连接
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func tokenKey(userUUID string) string {
	return fmt.Sprintf("authq:token:%s", userUUID)
}

// TokenCache 以用户 uuid 为键缓存有效的 access token
type TokenCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTokenCache 构建 token 缓存
func NewTokenCache(rdb *redis.Client, ttl time.Duration) *TokenCache {
	return &TokenCache{rdb: rdb, ttl: ttl}
}

// Set 记录用户当前有效的 access token
func (c *TokenCache) Set(ctx context.Context, userUUID, token string) error {
	if err := c.rdb.Set(ctx, tokenKey(userUUID), token, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache access token: %w", err)
	}
	return nil
}

// Get 返回缓存中的 access token，缓存未命中返回空串
func (c *TokenCache) Get(ctx context.Context, userUUID string) (string, error) {
	val, err := c.rdb.Get(ctx, tokenKey(userUUID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read access token cache: %w", err)
	}
	return val, nil
}

// Del 清除用户的 access token 缓存
func (c *TokenCache) Del(ctx context.Context, userUUID string) error {
	return c.rdb.Del(ctx, tokenKey(userUUID)).Err()
}

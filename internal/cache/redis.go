package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/haatbazar/internal/config"
	"github.com/haatbazar/internal/constants"

	"github.com/redis/go-redis/v9"
)

// store 持有进程级的 Redis 连接；未启用缓存时保持 nil，所有读写退化为直查数据库
type store struct {
	client *redis.Client
	prefix string
}

var active *store

// InitRedis 按配置建立 Redis 连接并做一次连通性探测
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		active = nil
		return nil
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = constants.RedisPrefixDefault
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s:%d: %w", host, port, err)
	}

	active = &store{client: client, prefix: prefix}
	return nil
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return active != nil && active.client != nil
}

// Client 获取 Redis 客户端，供限流等需要原生命令的场景使用
func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return active.client
}

// GetJSON 读取缓存并反序列化到 dest；未命中或缓存未启用时返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	raw, err := active.client.Get(ctx, active.namespaced(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化后写入缓存，带 TTL
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return active.client.Set(ctx, active.namespaced(key), payload, ttl).Err()
}

// Del 删除缓存键
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return active.client.Del(ctx, active.namespaced(key)).Err()
}

func (s *store) namespaced(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return s.prefix
	}
	return s.prefix + ":" + trimmed
}

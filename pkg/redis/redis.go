package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SergeiKrivko/BmstuSchedule/config"
)

// Client Redis 客户端封装
// 当前用于课表查询结果缓存；后续可扩展分布式锁等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 课表查询缓存 ──

const scheduleCachePrefix = "schedule:"

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("缓存未命中")

// GetSchedule 按查询键读取缓存的课表响应（JSON 字节）
func (c *Client) GetSchedule(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, scheduleCachePrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

// SetSchedule 写入课表响应缓存
func (c *Client) SetSchedule(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, scheduleCachePrefix+key, data, ttl).Err()
}

// InvalidateSchedules 清空课表缓存（同步完成后调用，避免读到旧数据）
func (c *Client) InvalidateSchedules(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, scheduleCachePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// ── 速率限制 ──

// CheckRateLimit 固定窗口计数器
// 返回 true 表示放行；窗口内首个请求设置过期时间
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := c.rdb.Incr(ctx, "rate:"+key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, "rate:"+key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

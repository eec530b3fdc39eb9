// internal/pkg/redis/redis.go
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 封装了 go-redis 客户端，暴露本项目需要的少量操作。
type Client struct {
	rdb *redis.Client
}

// NewClient 创建客户端并做一次连通性检查。
func NewClient(addr string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Client{rdb: rdb}, nil
}

// NextSequence 对给定 key 执行原子自增并返回新值，用于生成租户内单调序号。
// key 在首次自增时设置过期时间，避免按天滚动的序号 key 无限堆积。
func (c *Client) NextSequence(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 && ttl > 0 {
		c.rdb.Expire(ctx, key, ttl)
	}
	return n, nil
}

// GetClient 暴露底层客户端，供需要 pipeline 等高级操作的调用方使用。
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close 关闭底层连接。
func (c *Client) Close() error {
	return c.rdb.Close()
}

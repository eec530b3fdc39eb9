// internal/service/order/infrastructure/sequence_redis.go
package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"orderhub/internal/pkg/logger"
	"orderhub/internal/pkg/redis"
	"orderhub/internal/service/order/domain"
)

// RedisNumberGenerator 用 Redis 按"租户+日期"的计数器生成订单号，
// 形如 ORD-20260828-000042，在租户内单调且唯一。
type RedisNumberGenerator struct {
	client *redis.Client
}

func NewRedisNumberGenerator(client *redis.Client) *RedisNumberGenerator {
	return &RedisNumberGenerator{client: client}
}

var _ domain.NumberGenerator = (*RedisNumberGenerator)(nil)

func (g *RedisNumberGenerator) Next(ctx context.Context, tenantID string) (string, error) {
	date := time.Now().Format("20060102")
	key := fmt.Sprintf("orderhub:seq:{%s}:%s", tenantID, date)

	seq, err := g.client.NextSequence(ctx, key, 48*time.Hour)
	if err != nil {
		// Redis 不可用不应阻断下单：退化为不可猜测但仍唯一的订单号
		logger.Ctx(ctx).Warn().Err(err).Msg("redis sequence unavailable, falling back to random order number")
		return fmt.Sprintf("ORD-%s-%s", date, uuid.New().String()[:8]), nil
	}
	return fmt.Sprintf("ORD-%s-%06d", date, seq), nil
}

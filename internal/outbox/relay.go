// internal/outbox/relay.go
package outbox

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"orderhub/internal/pkg/logger"
)

var (
	relayDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_relay_delivered_total",
		Help: "Number of outbox events delivered to the broker.",
	}, []string{"type"})
	relayFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_relay_failed_total",
		Help: "Number of outbox delivery attempts that failed.",
	})
	relayPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_relay_purged_total",
		Help: "Number of completed outbox rows purged.",
	})
)

// Publisher 把一条 outbox 事件投递到消息中间件。
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// Relay 是独立于请求处理路径的 outbox 投递工作者。
// 轮询 PENDING 事件、逐条投递、标记 COMPLETED；投递失败的事件
// 保持 PENDING，下一轮重试，因此整体语义是至少一次投递，
// 消费方必须幂等。
type Relay struct {
	repo      Repository
	publisher Publisher

	PollInterval  time.Duration
	PurgeInterval time.Duration
	BatchSize     int
	Retention     time.Duration
}

// NewRelay 创建 relay，参数为零值时使用默认配置。
func NewRelay(repo Repository, publisher Publisher) *Relay {
	return &Relay{
		repo:          repo,
		publisher:     publisher,
		PollInterval:  time.Second,
		PurgeInterval: time.Hour,
		BatchSize:     100,
		Retention:     7 * 24 * time.Hour,
	}
}

// Run 启动投递与清理两个循环，直到 ctx 取消。
func (r *Relay) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.deliverLoop(ctx) })
	g.Go(func() error { return r.purgeLoop(ctx) })
	return g.Wait()
}

func (r *Relay) deliverLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.deliverBatch(ctx)
		}
	}
}

// deliverBatch 取出一批待投递事件并逐条发送。
// 单条失败只中断本轮，成功的部分仍会被标记，避免重复投递无限放大。
func (r *Relay) deliverBatch(ctx context.Context) {
	events, err := r.repo.FetchPending(ctx, r.BatchSize)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("outbox relay failed to fetch pending events")
		return
	}
	if len(events) == 0 {
		return
	}

	delivered := make([]string, 0, len(events))
	for _, event := range events {
		if err := r.publisher.Publish(ctx, event); err != nil {
			relayFailed.Inc()
			logger.Ctx(ctx).Error().Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.Type).
				Msg("outbox relay failed to publish event")
			break
		}
		relayDelivered.WithLabelValues(event.Type).Inc()
		delivered = append(delivered, event.ID)
	}

	if len(delivered) == 0 {
		return
	}
	if err := r.repo.MarkCompleted(ctx, delivered); err != nil {
		// 标记失败意味着这批事件下一轮会被重复投递，属于至少一次语义内的正常情况
		logger.Ctx(ctx).Error().Err(err).Msg("outbox relay failed to mark events completed")
	}
}

func (r *Relay) purgeLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := r.repo.PurgeCompleted(ctx, time.Now().Add(-r.Retention))
			if err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("outbox relay failed to purge completed events")
				continue
			}
			if n > 0 {
				relayPurged.Add(float64(n))
				logger.Ctx(ctx).Info().Int64("purged", n).Msg("outbox retention cleanup done")
			}
		}
	}
}

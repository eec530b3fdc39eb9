// internal/service/order/application/webhook.go
package application

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"

	"orderhub/internal/pkg/logger"
	"orderhub/internal/service/order/domain"
)

var webhookOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "carrier_webhook_total",
	Help: "Carrier webhook deliveries by outcome.",
}, []string{"outcome"})

// HandleCarrierWebhook 处理承运商的异步状态回调。
//
// 承运商的投递是无序、可重复的：同一状态可能送达多次，
// 旧状态可能晚于新状态到达。这里的每个分支都以"吸收而非报错"
// 为原则——除了找不到订单，其余情况一律向承运商返回成功，
// 状态机自身保证无效输入不会产生任何变更。
func (s *Service) HandleCarrierWebhook(ctx context.Context, trackingCode, rawStatus string) (*WebhookResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.HandleCarrierWebhook")
	defer span.End()
	span.SetAttributes(
		attribute.String("carrier.tracking_code", trackingCode),
		attribute.String("carrier.status", rawStatus),
	)

	// 1. 未收录的状态串：确认但不动状态机
	target, ok := domain.MapCarrierStatus(rawStatus)
	if !ok {
		webhookOutcomes.WithLabelValues("ignored_unknown").Inc()
		logger.Ctx(ctx).Info().
			Str("carrier_status", rawStatus).
			Msg("unrecognized carrier status ignored")
		return &WebhookResult{Success: true, Message: "status ignored"}, nil
	}

	var result *WebhookResult
	err := s.uow.WithinTx(ctx, func(tx domain.TxContext) error {
		order, err := tx.Orders().FindByShippingCode(ctx, trackingCode)
		if err != nil {
			if errors.Is(err, domain.ErrOrderNotFound) {
				webhookOutcomes.WithLabelValues("order_not_found").Inc()
				result = &WebhookResult{Success: false, Message: "order not found for tracking code"}
				return nil
			}
			return err
		}

		// 2. 重复投递：同一原始状态或已处于目标状态，幂等成功
		if order.CarrierStatus == rawStatus || order.Status == target {
			webhookOutcomes.WithLabelValues("duplicate").Inc()
			result = &WebhookResult{Success: true, Message: "status already applied"}
			return nil
		}

		// 3. 乱序投递：不可达的转换按迟到的旧状态吸收
		from := order.Status
		if err := order.TransitionTo(target, rawStatus, "carrier webhook"); err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				webhookOutcomes.WithLabelValues("ignored_stale").Inc()
				logger.Ctx(ctx).Info().
					Str("order_id", order.ID).
					Str("carrier_status", rawStatus).
					Str("current_status", string(from)).
					Msg("out-of-order carrier status ignored")
				result = &WebhookResult{Success: true, Message: "stale status ignored"}
				return nil
			}
			return err
		}

		// 4. 承运商侧取消等价于取消流程，库存随之归还
		if order.Status == domain.StatusCancelled {
			for _, item := range order.Items {
				if err := tx.Stock().Release(ctx, order.TenantID, item.SkuID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}
		// 客户通知经由 outbox 走异步链路，不阻塞回调响应
		if err := tx.Outbox().Create(ctx, mustEvent(order.TenantID, order.ID, domain.EventTypeOrderStatusChanged, newStatusChangedEvent(order, from, rawStatus))); err != nil {
			return err
		}

		webhookOutcomes.WithLabelValues("applied").Inc()
		result = &WebhookResult{Success: true, Message: "status updated"}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

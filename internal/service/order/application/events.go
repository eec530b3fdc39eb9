// internal/service/order/application/events.go
package application

import (
	"errors"
	"time"

	"orderhub/internal/outbox"
	"orderhub/internal/service/order/domain"
)

func newOrderCreatedEvent(order *domain.Order) domain.OrderCreatedEvent {
	items := make([]domain.OrderCreatedEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.OrderCreatedEventItem{
			SkuID:    item.SkuID,
			Quantity: item.Quantity,
		})
	}
	return domain.OrderCreatedEvent{
		OrderID:       order.ID,
		TenantID:      order.TenantID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.Total.Int64(),
		Items:         items,
		CreatedAt:     order.CreatedAt,
	}
}

func newOrderCancelledEvent(order *domain.Order, reason string) domain.OrderCancelledEvent {
	return domain.OrderCancelledEvent{
		OrderID:     order.ID,
		TenantID:    order.TenantID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		Reason:      reason,
		CancelledAt: time.Now(),
	}
}

func newStatusChangedEvent(order *domain.Order, from domain.Status, carrierStatus string) domain.OrderStatusChangedEvent {
	return domain.OrderStatusChangedEvent{
		OrderID:       order.ID,
		TenantID:      order.TenantID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		From:          from,
		To:            order.Status,
		CarrierStatus: carrierStatus,
		ChangedAt:     time.Now(),
	}
}

// mustEvent 构造 outbox 事件。payload 均为本包内定义的结构体，
// 序列化失败意味着代码缺陷，直接 panic 暴露。
func mustEvent(tenantID, aggregateID, eventType string, payload interface{}) *outbox.Event {
	event, err := outbox.NewEvent(tenantID, domain.AggregateTypeOrder, aggregateID, eventType, payload)
	if err != nil {
		panic(err)
	}
	return event
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}

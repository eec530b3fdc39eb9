// internal/service/order/application/fulfillment.go
package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"orderhub/internal/pkg/logger"
	"orderhub/internal/service/order/domain"
)

// BookShipment 为订单绑定承运商运单号并转入 PROCESSING。
// 这是承运商回调链路的前置条件：webhook 用运单号定位订单。
// 同一运单号的重复预订是幂等成功；换绑另一个运单号被拒绝。
func (s *Service) BookShipment(ctx context.Context, tenantID, orderID, shippingCode string) error {
	ctx, span := s.tracer.Start(ctx, "order.BookShipment")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("carrier.tracking_code", shippingCode),
	)

	if shippingCode == "" {
		return fmt.Errorf("shipping code is required")
	}

	err := s.uow.WithinTx(ctx, func(tx domain.TxContext) error {
		order, err := tx.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if order.ShippingCode == shippingCode {
			return nil
		}
		if order.ShippingCode != "" {
			return domain.ErrShippingCodeConflict
		}

		from := order.Status
		if err := order.TransitionTo(domain.StatusProcessing, "", "shipment booked"); err != nil {
			return err
		}
		order.AssignShippingCode(shippingCode)
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}
		if from == order.Status {
			return nil
		}
		return tx.Outbox().Create(ctx, mustEvent(order.TenantID, order.ID, domain.EventTypeOrderStatusChanged, newStatusChangedEvent(order, from, "")))
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	logger.Ctx(ctx).Info().
		Str("order_id", orderID).
		Str("shipping_code", shippingCode).
		Msg("shipment booked")
	return nil
}

// ConfirmPayment 处理支付网关的成功回调，把订单标记为已支付。
// 网关回调同样可能重复送达，已支付的订单直接吸收。
func (s *Service) ConfirmPayment(ctx context.Context, tenantID, orderID string) error {
	ctx, span := s.tracer.Start(ctx, "order.ConfirmPayment")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	err := s.uow.WithinTx(ctx, func(tx domain.TxContext) error {
		order, err := tx.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if order.PaymentStatus == domain.PaymentStatusPaid {
			return nil
		}
		order.MarkPaid()
		return tx.Orders().Update(ctx, order)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	logger.Ctx(ctx).Info().Str("order_id", orderID).Msg("payment confirmed")
	return nil
}

// internal/service/order/infrastructure/mapper.go
package infrastructure

import (
	"encoding/json"

	"orderhub/internal/pkg/money"
	"orderhub/internal/service/order/domain"
)

func toOrderModel(order *domain.Order) (*OrderModel, error) {
	history, err := json.Marshal(order.StatusHistory)
	if err != nil {
		return nil, err
	}

	items := make([]OrderItemModel, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemModel{
			OrderID:     order.ID,
			SkuID:       item.SkuID,
			SkuCode:     item.SkuCode,
			ProductName: item.ProductName,
			Price:       item.PriceAtPurchase.Int64(),
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal.Int64(),
		})
	}

	return &OrderModel{
		ID:             order.ID,
		TenantID:       order.TenantID,
		OrderNumber:    order.OrderNumber,
		CustomerID:     order.CustomerID,
		CustomerEmail:  order.CustomerEmail,
		RecipientName:  order.ShippingAddress.RecipientName,
		PhoneNumber:    order.ShippingAddress.PhoneNumber,
		AddressLine:    order.ShippingAddress.Line,
		DistrictID:     order.ShippingAddress.DistrictID,
		WardCode:       order.ShippingAddress.WardCode,
		PaymentMethod:  string(order.PaymentMethod),
		Subtotal:       order.Subtotal.Int64(),
		ShippingFee:    order.ShippingFee.Int64(),
		CouponDiscount: order.CouponDiscount.Int64(),
		CouponCode:     order.CouponCode,
		Total:          order.Total.Int64(),
		Status:         string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		ShippingCode:   order.ShippingCode,
		CarrierStatus:  order.CarrierStatus,
		StatusHistory:  history,
		Items:          items,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}, nil
}

func toDomainOrder(model *OrderModel) (*domain.Order, error) {
	var history []domain.StatusChange
	if len(model.StatusHistory) > 0 {
		if err := json.Unmarshal(model.StatusHistory, &history); err != nil {
			return nil, err
		}
	}

	items := make([]domain.OrderItem, 0, len(model.Items))
	for _, item := range model.Items {
		items = append(items, domain.OrderItem{
			SkuID:           item.SkuID,
			SkuCode:         item.SkuCode,
			ProductName:     item.ProductName,
			PriceAtPurchase: money.Amount(item.Price),
			Quantity:        item.Quantity,
			Subtotal:        money.Amount(item.Subtotal),
		})
	}

	return &domain.Order{
		ID:            model.ID,
		TenantID:      model.TenantID,
		OrderNumber:   model.OrderNumber,
		CustomerID:    model.CustomerID,
		CustomerEmail: model.CustomerEmail,
		Items:         items,
		ShippingAddress: domain.Address{
			RecipientName: model.RecipientName,
			PhoneNumber:   model.PhoneNumber,
			Line:          model.AddressLine,
			DistrictID:    model.DistrictID,
			WardCode:      model.WardCode,
		},
		PaymentMethod:  domain.PaymentMethod(model.PaymentMethod),
		Subtotal:       money.Amount(model.Subtotal),
		ShippingFee:    money.Amount(model.ShippingFee),
		CouponDiscount: money.Amount(model.CouponDiscount),
		CouponCode:     model.CouponCode,
		Total:          money.Amount(model.Total),
		Status:         domain.Status(model.Status),
		PaymentStatus:  domain.PaymentStatus(model.PaymentStatus),
		ShippingCode:   model.ShippingCode,
		CarrierStatus:  model.CarrierStatus,
		StatusHistory:  history,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}, nil
}

// internal/service/order/domain/port/payment.go
package port

import "context"

// PaymentRequest 是发往支付网关的请求。
type PaymentRequest struct {
	OrderID   string
	Amount    int64
	Method    string
	ReturnURL string
}

// PaymentResult 是支付网关的应答。
type PaymentResult struct {
	Success    bool
	PaymentURL string
}

// PaymentGateway 是支付协作方的出站端口。
// 它在下单事务提交之后被调用，失败不回滚订单，只表现为缺少支付链接。
type PaymentGateway interface {
	Process(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

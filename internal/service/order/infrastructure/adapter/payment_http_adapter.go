// internal/service/order/infrastructure/adapter/payment_http_adapter.go
package adapter

import (
	"context"
	"fmt"

	"orderhub/internal/pkg/httpclient"
	"orderhub/internal/service/order/domain/port"
)

// PaymentHTTPAdapter 是 port.PaymentGateway 的 HTTP 实现。
// 网关内部逻辑对本引擎是黑盒，只消费成功标志与跳转链接。
type PaymentHTTPAdapter struct {
	client *httpclient.Client
	url    string
}

func NewPaymentHTTPAdapter(client *httpclient.Client, url string) *PaymentHTTPAdapter {
	return &PaymentHTTPAdapter{client: client, url: url}
}

type paymentRequest struct {
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	ReturnURL string `json:"returnUrl,omitempty"`
}

type paymentResponse struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"paymentUrl,omitempty"`
}

func (a *PaymentHTTPAdapter) Process(ctx context.Context, req port.PaymentRequest) (*port.PaymentResult, error) {
	var resp paymentResponse
	err := a.client.PostJSON(ctx, a.url, &paymentRequest{
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Method:    req.Method,
		ReturnURL: req.ReturnURL,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("payment gateway call: %w", err)
	}
	return &port.PaymentResult{
		Success:    resp.Success,
		PaymentURL: resp.PaymentURL,
	}, nil
}

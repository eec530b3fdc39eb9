// internal/service/order/infrastructure/adapter/carrier_http_adapter.go
package adapter

import (
	"context"
	"fmt"

	"orderhub/internal/pkg/httpclient"
	"orderhub/internal/pkg/money"
)

// CarrierFeeHTTPAdapter 是 port.CarrierFeeService 的 HTTP 实现，
// 调用承运商的运费试算接口。
type CarrierFeeHTTPAdapter struct {
	client *httpclient.Client
	url    string
}

func NewCarrierFeeHTTPAdapter(client *httpclient.Client, url string) *CarrierFeeHTTPAdapter {
	return &CarrierFeeHTTPAdapter{client: client, url: url}
}

type carrierFeeRequest struct {
	DistrictID int    `json:"districtId"`
	WardCode   string `json:"wardCode"`
}

type carrierFeeResponse struct {
	Total int64 `json:"total"`
}

func (a *CarrierFeeHTTPAdapter) CalculateFee(ctx context.Context, districtID int, wardCode string) (money.Amount, error) {
	var resp carrierFeeResponse
	err := a.client.PostJSON(ctx, a.url, &carrierFeeRequest{
		DistrictID: districtID,
		WardCode:   wardCode,
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("carrier fee lookup: %w", err)
	}
	if resp.Total < 0 {
		return 0, fmt.Errorf("carrier returned negative fee %d", resp.Total)
	}
	return money.Amount(resp.Total), nil
}

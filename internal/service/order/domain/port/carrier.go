// internal/service/order/domain/port/carrier.go
package port

import (
	"context"

	"orderhub/internal/pkg/money"
)

// CarrierFeeService 是承运商运费计算的出站端口。
// 计算失败时编排层回落到配置的默认运费，而不是中断结账。
type CarrierFeeService interface {
	CalculateFee(ctx context.Context, districtID int, wardCode string) (money.Amount, error)
}

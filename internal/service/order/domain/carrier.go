// internal/service/order/domain/carrier.go
package domain

// carrierStatusTable 是承运商原始状态串到内部状态的固定映射。
// 未收录的状态串映射失败，调用方应当确认回调但不做任何状态变更，
// 防止承运商新增的状态污染状态机。
var carrierStatusTable = map[string]Status{
	"ready_to_pick": StatusProcessing,
	"picking":       StatusProcessing,
	"picked":        StatusShipped,
	"storing":       StatusShipped,
	"transporting":  StatusShipped,
	"delivering":    StatusShipped,
	"delivered":     StatusDelivered,
	"cancel":        StatusCancelled,
	"return":        StatusReturned,
	"returned":      StatusReturned,
}

// MapCarrierStatus 查表把承运商状态串映射为内部目标状态。
// 第二个返回值为 false 表示该状态串未收录。
func MapCarrierStatus(raw string) (Status, bool) {
	target, ok := carrierStatusTable[raw]
	return target, ok
}

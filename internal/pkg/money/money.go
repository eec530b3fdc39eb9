// internal/pkg/money/money.go
package money

import "strconv"

// Amount 是以最小货币单位表示的金额（例如越南盾，没有小数位）。
// 订单金额计算全程使用整数运算，只在金额边界取整，
// 避免浮点误差在多个条目之间累积。
type Amount int64

// Zero 是零金额。
const Zero Amount = 0

// Add 返回两个金额之和。
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// Sub 返回 a-b。结果可能为负，由调用方决定是否需要钳制。
func (a Amount) Sub(b Amount) Amount {
	return a - b
}

// MulQty 返回单价乘以数量的结果，用于计算条目小计。
func (a Amount) MulQty(qty int) Amount {
	return a * Amount(qty)
}

// LessThan 判断 a 是否严格小于 b。
func (a Amount) LessThan(b Amount) bool {
	return a < b
}

// IsNegative 判断金额是否为负。
func (a Amount) IsNegative() bool {
	return a < 0
}

// Int64 返回底层整数值，用于持久化和序列化。
func (a Amount) Int64() int64 {
	return int64(a)
}

func (a Amount) String() string {
	return strconv.FormatInt(int64(a), 10)
}

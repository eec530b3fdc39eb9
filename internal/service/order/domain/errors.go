// internal/service/order/domain/errors.go
package domain

import "errors"

var (
	// ErrOrderNotFound 表示订单不存在。
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyItems 表示下单请求没有任何条目。
	ErrEmptyItems = errors.New("order must contain at least one item")
	// ErrInvalidQuantity 表示条目数量不是正数。
	ErrInvalidQuantity = errors.New("item quantity must be positive")
	// ErrInvalidTransition 表示请求了一个从当前状态不可达的状态。
	ErrInvalidTransition = errors.New("illegal order state transition")
	// ErrCancelNotAllowed 表示订单当前状态不允许取消。
	ErrCancelNotAllowed = errors.New("order can no longer be cancelled")
	// ErrNotOrderOwner 表示请求者不是订单的所有者。
	ErrNotOrderOwner = errors.New("order does not belong to this user")
	// ErrInvalidAmounts 表示金额不满足不变量（折扣超过小计等）。
	ErrInvalidAmounts = errors.New("order amounts violate invariants")
	// ErrShippingCodeConflict 表示订单已绑定另一个运单号。
	ErrShippingCodeConflict = errors.New("order already bound to a different shipping code")
)

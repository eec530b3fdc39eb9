// internal/service/inventory/domain/stock.go
package domain

import (
	"errors"

	"orderhub/internal/pkg/money"
)

var (
	// ErrSkuNotFound 表示请求的 SKU 不存在。
	ErrSkuNotFound = errors.New("sku not found")
	// ErrSkuInactive 表示 SKU 已下架，不可购买。
	ErrSkuInactive = errors.New("sku is inactive")
	// ErrInsufficientStock 表示库存不足，预占失败。
	ErrInsufficientStock = errors.New("insufficient stock")
)

// SkuStatus 是 SKU 的上下架状态。
type SkuStatus string

const (
	SkuStatusActive   SkuStatus = "ACTIVE"
	SkuStatusInactive SkuStatus = "INACTIVE"
)

// Sku 是目录服务拥有的库存记录，本引擎只消费它。
// 库存计数器本身就是预占的唯一事实来源：下单事务内直接扣减，
// 取消时归还，不维护单独的"已预留"数量。
type Sku struct {
	TenantID    string
	SkuID       string
	SkuCode     string
	ProductName string
	CategoryID  string
	Price       money.Amount
	Stock       int
	Status      SkuStatus
}

// IsActive 判断 SKU 是否可售。
func (s *Sku) IsActive() bool {
	return s.Status == SkuStatusActive
}

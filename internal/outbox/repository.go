// internal/outbox/repository.go
package outbox

import (
	"context"
	"time"
)

// Repository 定义了 outbox 事件的持久化接口。
// Create 必须运行在业务事务内；其余方法由 relay 进程在事务外调用。
type Repository interface {
	Create(ctx context.Context, event *Event) error

	// FetchPending 按创建时间升序取出最多 limit 条待投递事件。
	FetchPending(ctx context.Context, limit int) ([]*Event, error)

	// MarkCompleted 把一批事件标记为已投递。
	MarkCompleted(ctx context.Context, ids []string) error

	// PurgeCompleted 删除早于 olderThan 且已投递的事件，返回删除行数。
	PurgeCompleted(ctx context.Context, olderThan time.Time) (int64, error)
}

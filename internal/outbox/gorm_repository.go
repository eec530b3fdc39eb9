// internal/outbox/gorm_repository.go
package outbox

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// EventModel 对应数据库中的 outbox_events 表。
type EventModel struct {
	ID            string    `gorm:"primaryKey;size:36"`
	TenantID      string    `gorm:"size:64;index"`
	AggregateType string    `gorm:"size:32"`
	AggregateID   string    `gorm:"size:64;index"`
	Type          string    `gorm:"size:64"`
	Payload       []byte    `gorm:"type:json"`
	Status        string    `gorm:"size:16;index:idx_outbox_status_created"`
	CreatedAt     time.Time `gorm:"index:idx_outbox_status_created"`
}

func (EventModel) TableName() string {
	return "outbox_events"
}

// GormRepository 是 Repository 的 GORM 实现。
// 传入事务句柄时 Create 参与该事务，传入根句柄时其余方法独立执行。
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, event *Event) error {
	model := &EventModel{
		ID:            event.ID,
		TenantID:      event.TenantID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Type:          event.Type,
		Payload:       event.Payload,
		Status:        string(event.Status),
		CreatedAt:     event.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "insert outbox event")
	}
	return nil
}

func (r *GormRepository) FetchPending(ctx context.Context, limit int) ([]*Event, error) {
	var models []EventModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(StatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetch pending outbox events")
	}

	events := make([]*Event, 0, len(models))
	for i := range models {
		m := &models[i]
		events = append(events, &Event{
			ID:            m.ID,
			TenantID:      m.TenantID,
			AggregateType: m.AggregateType,
			AggregateID:   m.AggregateID,
			Type:          m.Type,
			Payload:       m.Payload,
			Status:        Status(m.Status),
			CreatedAt:     m.CreatedAt,
		})
	}
	return events, nil
}

func (r *GormRepository) MarkCompleted(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&EventModel{}).
		Where("id IN ?", ids).
		Update("status", string(StatusCompleted)).Error
	return errors.Wrap(err, "mark outbox events completed")
}

func (r *GormRepository) PurgeCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(StatusCompleted), olderThan).
		Delete(&EventModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "purge completed outbox events")
	}
	return result.RowsAffected, nil
}

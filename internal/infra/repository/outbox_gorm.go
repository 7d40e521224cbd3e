package repository

import (
	"context"

	"perfumeshop/internal/domain/model"

	"gorm.io/gorm"
)

// outbox_events への書き込み。注文と同じtxで呼ぶ
type OutboxGormRepository struct {
	db *gorm.DB
}

func NewOutboxGormRepository(db *gorm.DB) *OutboxGormRepository {
	return &OutboxGormRepository{db: db}
}

func (r *OutboxGormRepository) Enqueue(ctx context.Context, event model.OutboxEvent) error {
	if event.Status == "" {
		event.Status = model.OutboxStatusPending
	}
	return r.db.WithContext(ctx).Create(&event).Error
}

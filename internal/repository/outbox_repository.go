package repository

import (
	"context"

	"perfumeshop/internal/domain/model"
)

// outboxへの書き込み。送信はrelayが行う
type OutboxRepository interface {
	Enqueue(ctx context.Context, event model.OutboxEvent) error
}

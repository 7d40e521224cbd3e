package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/infra/outbox"
	repo "perfumeshop/internal/repository"

	"github.com/shopspring/decimal"
)

type orderCreatedEvent struct {
	OrderID   int64           `json:"order_id"`
	UserID    int64           `json:"user_id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Lines     int             `json:"lines"`
	CreatedAt time.Time       `json:"created_at"`
}

type orderStatusChangedEvent struct {
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	ActorID int64  `json:"actor_id,omitempty"`
}

type orderDeletedEvent struct {
	OrderID int64 `json:"order_id"`
	ActorID int64 `json:"actor_id"`
}

// outboxへ1件積む。送信はrelayに任せる
func enqueueOrderEvent(ctx context.Context, r repo.TxRepos, orderID int64, eventType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.Outbox().Enqueue(ctx, model.OutboxEvent{
		AggregateType: "order",
		AggregateID:   strconv.FormatInt(orderID, 10),
		Type:          eventType,
		Payload:       b,
		Traceparent:   outbox.TraceparentFrom(ctx),
		Status:        model.OutboxStatusPending,
	})
}

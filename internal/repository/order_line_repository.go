package repository

import (
	"context"

	"perfumeshop/internal/domain/model"
)

type OrderLineRepository interface {
	CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error)
	// 複数注文の明細をまとめて取得（order_id -> lines）
	ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderLine, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}

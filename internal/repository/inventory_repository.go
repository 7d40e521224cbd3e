package repository

import (
	"context"
	"errors"

	"perfumeshop/internal/domain/model"
)

// 在庫が足りない（条件付き減算が0件だった）
var ErrOutOfStock = errors.New("out of stock")

type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// stock >= qty のときだけ1文で減算する。足りなければ ErrOutOfStock
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) error

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}

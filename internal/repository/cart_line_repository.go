package repository

import (
	"context"

	"perfumeshop/internal/domain/model"
)

// カート明細の保存。在庫の上限チェックはしない（usecase側の責務）
type CartLineRepository interface {
	// Productとブランドを付けて返す（価格は商品の現在値）
	ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error)
	// 同一商品は数量加算（1文のupsert）
	AddQuantity(ctx context.Context, userID int64, productID int64, addQty int64) (model.CartLine, error)
	// 本人の明細だけ見つかる
	FindByID(ctx context.Context, userID int64, lineID int64) (model.CartLine, error)
	UpdateQuantity(ctx context.Context, userID int64, lineID int64, qty int64) error
	// 無くてもエラーにしない
	Delete(ctx context.Context, userID int64, lineID int64) error
	ClearByUserID(ctx context.Context, userID int64) error
}

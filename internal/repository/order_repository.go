package repository

import (
	"context"
	"errors"
	"time"

	"perfumeshop/internal/domain/model"
)

// pending 以外の注文を決済確定しようとした
var ErrOrderNotPending = errors.New("order is not pending")

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// tx内で行ロック（SELECT ... FOR UPDATE）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	// 作成後のorder（ID入り）を返す
	Create(ctx context.Context, order model.Order) (model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	// 決済の再試行で確定したとき。pending でなければ ErrOrderNotPending
	MarkPaid(ctx context.Context, orderID int64, paymentReference string) error
	Delete(ctx context.Context, orderID int64) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}

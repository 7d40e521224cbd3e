package repository

import (
	"context"
	"errors"

	"perfumeshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反
	ErrDuplicate = errors.New("duplicate")
)

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Search   string
	BrandID  *int64
	TypeID   *int64
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// name / name_desc / price / price_desc
	Sort string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	//公開中かつ在庫ありのものだけ
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	//ブランド・種類を付けて取得（削除済みは ErrNotFound）
	FindByID(ctx context.Context, id int64) (model.Product, error)
	//複数IDをまとめて取得
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}

// ブランドと種類
type CatalogRepository interface {
	ListBrands(ctx context.Context) ([]model.Brand, error)
	ListTypes(ctx context.Context) ([]model.ProductType, error)
	CreateBrand(ctx context.Context, name string) (model.Brand, error)
	CreateType(ctx context.Context, name string) (model.ProductType, error)
	BrandExists(ctx context.Context, id int64) (bool, error)
	TypeExists(ctx context.Context, id int64) (bool, error)
}

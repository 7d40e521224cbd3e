package usecase

import (
	"context"
	"errors"
	"net/http"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/domain/pricing"
	repo "perfumeshop/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartRepo    repo.CartLineRepository
	productRepo repo.ProductRepository
}

func NewCartUsecase(cartRepo repo.CartLineRepository, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// price は商品の現在価格
type CartLineOutput struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	BrandName string          `json:"brand_name"`
	ImageURL  string          `json:"image_url"`
	Price     decimal.Decimal `json:"price"`
	Stock     int64           `json:"stock"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartOutput struct {
	Items  []CartLineOutput `json:"items"`
	Totals pricing.Totals   `json:"totals"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCart(ctx, userID)
}

// 同一商品は数量加算。合計が在庫を超えるなら拒否
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	lines, err := u.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	var existingQty int64
	for _, l := range lines {
		if l.ProductID == in.ProductID {
			existingQty = l.Quantity
			break
		}
	}
	if existingQty+in.Quantity > p.Stock {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	// 加算自体はDBの1文で行う
	if _, err := u.cartRepo.AddQuantity(ctx, userID, in.ProductID, in.Quantity); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCart(ctx, userID)
}

// 数量変更（所有チェック＋在庫チェック）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, lineID int64, qty int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lineID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if qty < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	line, err := u.cartRepo.FindByID(ctx, userID, lineID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//商品の在庫チェック
	p, err := u.productRepo.FindByID(ctx, line.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if qty > p.Stock {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartRepo.UpdateQuantity(ctx, userID, lineID, qty); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCart(ctx, userID)
}

// 明細削除。無くても成功
func (u *CartUsecase) RemoveLine(ctx context.Context, userID int64, lineID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lineID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.cartRepo.Delete(ctx, userID, lineID); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCart(ctx, userID)
}

func (u *CartUsecase) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.cartRepo.ClearByUserID(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CartUsecase) buildCart(ctx context.Context, userID int64) (CartOutput, error) {
	lines, err := u.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toCartOutput(lines), nil
}

// 削除済みの商品（Product=nil）は出さない
func toCartOutput(lines []model.CartLine) CartOutput {
	items := make([]CartLineOutput, 0, len(lines))
	priced := make([]pricing.Line, 0, len(lines))

	for _, l := range lines {
		if l.Product == nil {
			continue
		}
		p := l.Product
		item := CartLineOutput{
			ID:        l.ID,
			ProductID: l.ProductID,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
			Price:     p.Price,
			Stock:     p.Stock,
			Quantity:  l.Quantity,
			LineTotal: pricing.LineTotal(l.Quantity, p.Price),
		}
		if p.Brand != nil {
			item.BrandName = p.Brand.Name
		}
		items = append(items, item)
		priced = append(priced, pricing.Line{Quantity: l.Quantity, UnitPrice: p.Price})
	}

	return CartOutput{Items: items, Totals: pricing.Calculate(priced)}
}

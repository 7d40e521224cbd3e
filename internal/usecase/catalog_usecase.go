package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"perfumeshop/internal/domain/model"
	repo "perfumeshop/internal/repository"

	"github.com/shopspring/decimal"
)

type CatalogUsecase struct {
	productRepo repo.ProductRepository
	catalogRepo repo.CatalogRepository
}

// DI
func NewCatalogUsecase(productRepo repo.ProductRepository, catalogRepo repo.CatalogRepository) *CatalogUsecase {
	return &CatalogUsecase{
		productRepo: productRepo,
		catalogRepo: catalogRepo,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Search   string
	BrandID  *int64
	TypeID   *int64
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type ProductOutput struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	IsActive    bool            `json:"is_active"`
	BrandID     int64           `json:"brand_id"`
	BrandName   string          `json:"brand_name"`
	TypeID      int64           `json:"type_id"`
	TypeName    string          `json:"type_name"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ProductListOutput struct {
	Items []ProductOutput `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Search) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "search too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "name", "name_desc", "price", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Search:   strings.TrimSpace(in.Search),
		BrandID:  in.BrandID,
		TypeID:   in.TypeID,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		out = append(out, toProductOutput(p))
	}

	return ProductListOutput{
		Items: out,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 非公開は存在しない扱い
func (u *CatalogUsecase) GetProduct(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return toProductOutput(p), nil
}

func (u *CatalogUsecase) ListBrands(ctx context.Context) ([]model.Brand, error) {
	list, err := u.catalogRepo.ListBrands(ctx)
	if err != nil {
		return []model.Brand{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *CatalogUsecase) ListTypes(ctx context.Context) ([]model.ProductType, error) {
	list, err := u.catalogRepo.ListTypes(ctx)
	if err != nil {
		return []model.ProductType{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func toProductOutput(p model.Product) ProductOutput {
	out := ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		BrandID:     p.BrandID,
		TypeID:      p.TypeID,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Brand != nil {
		out.BrandName = p.Brand.Name
	}
	if p.Type != nil {
		out.TypeName = p.Type.Name
	}
	return out
}

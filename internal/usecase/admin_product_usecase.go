package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"perfumeshop/internal/domain/model"
	repo "perfumeshop/internal/repository"

	"github.com/shopspring/decimal"
)

// 管理者の商品・在庫・ブランド操作。すべて監査ログを同じtxで残す
type AdminProductUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
}

func NewAdminProductUsecase(tx repo.TransactionManager, productRepo repo.ProductRepository) *AdminProductUsecase {
	return &AdminProductUsecase{tx: tx, productRepo: productRepo}
}

// POST/PUT /admin/products の入力。nil は未指定
type AdminProductInput struct {
	Name        string
	Description string
	Price       *decimal.Decimal
	Stock       *int64
	IsActive    *bool
	BrandID     int64
	TypeID      int64
	ImageURL    string
}

func (in AdminProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price == nil {
		return NewHTTPError(http.StatusBadRequest, "price required")
	}
	if in.Price.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.BrandID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "brand_id required")
	}
	if in.TypeID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "type_id required")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return nil
}

// 未指定は stock=0 / is_active=true
func (in AdminProductInput) toModel() model.Product {
	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price.Round(2),
		IsActive:    true,
		BrandID:     in.BrandID,
		TypeID:      in.TypeID,
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p
}

// brand / type が存在するか（txの中で見る）
func checkBrandAndType(ctx context.Context, r repo.TxRepos, brandID, typeID int64) error {
	ok, err := r.Catalog().BrandExists(ctx, brandID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !ok {
		return NewHTTPError(http.StatusBadRequest, "brand not found")
	}
	ok, err = r.Catalog().TypeExists(ctx, typeID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !ok {
		return NewHTTPError(http.StatusBadRequest, "type not found")
	}
	return nil
}

func (u *AdminProductUsecase) CreateProduct(ctx context.Context, adminUserID int64, in AdminProductInput) (ProductOutput, error) {
	if adminUserID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return ProductOutput{}, err
	}

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := checkBrandAndType(ctx, r, in.BrandID, in.TypeID); err != nil {
			return err
		}

		p, err := r.Products().Create(ctx, in.toModel())
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		created = p

		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateProduct, model.AuditResourceProduct, p.ID, nil, toProductOutput(p))
	})
	if err != nil {
		return ProductOutput{}, err
	}

	return u.reload(ctx, created), nil
}

// PUT は全項目置き換え
func (u *AdminProductUsecase) UpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminProductInput) (ProductOutput, error) {
	if adminUserID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := in.validate(); err != nil {
		return ProductOutput{}, err
	}

	var updated model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := checkBrandAndType(ctx, r, in.BrandID, in.TypeID); err != nil {
			return err
		}

		next := in.toModel()
		next.ID = productID
		if err := r.Products().Update(ctx, next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		next.CreatedAt = before.CreatedAt
		updated = next

		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateProduct, model.AuditResourceProduct, productID, toProductOutput(before), toProductOutput(next))
	})
	if err != nil {
		return ProductOutput{}, err
	}

	return u.reload(ctx, updated), nil
}

// 削除したレコードを返す
func (u *AdminProductUsecase) DeleteProduct(ctx context.Context, adminUserID int64, productID int64) (ProductOutput, error) {
	if adminUserID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var deleted model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		deleted = p

		return writeAudit(ctx, r, adminUserID, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, toProductOutput(p), nil)
	})
	if err != nil {
		return ProductOutput{}, err
	}
	return toProductOutput(deleted), nil
}

type InventoryOutput struct {
	ProductID   int64 `json:"product_id"`
	StockBefore int64 `json:"stock_before"`
	StockAfter  int64 `json:"stock_after"`
}

// 在庫の現在値を設定し、調整履歴と監査ログを残す
func (u *AdminProductUsecase) SetInventory(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) (InventoryOutput, error) {
	if adminUserID <= 0 {
		return InventoryOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return InventoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return InventoryOutput{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return InventoryOutput{}, NewHTTPError(http.StatusBadRequest, "reason required")
	}
	if len(reason) > 255 {
		return InventoryOutput{}, NewHTTPError(http.StatusBadRequest, "reason too long")
	}

	var out InventoryOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//履歴を作成（差分）
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			StockBefore: p.Stock,
			StockAfter:  newStock,
			Delta:       newStock - p.Stock,
			Reason:      reason,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = InventoryOutput{ProductID: productID, StockBefore: p.Stock, StockAfter: newStock}
		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateStock, model.AuditResourceProduct, productID,
			map[string]int64{"stock": p.Stock}, map[string]int64{"stock": newStock})
	})
	if err != nil {
		return InventoryOutput{}, err
	}
	return out, nil
}

func (u *AdminProductUsecase) CreateBrand(ctx context.Context, adminUserID int64, name string) (model.Brand, error) {
	if adminUserID <= 0 {
		return model.Brand{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 255 {
		return model.Brand{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}

	var b model.Brand
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		created, err := r.Catalog().CreateBrand(ctx, name)
		if errors.Is(err, repo.ErrDuplicate) {
			return NewHTTPError(http.StatusConflict, "brand already exists")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		b = created
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateBrand, model.AuditResourceBrand, b.ID, nil, b)
	})
	if err != nil {
		return model.Brand{}, err
	}
	return b, nil
}

func (u *AdminProductUsecase) CreateType(ctx context.Context, adminUserID int64, name string) (model.ProductType, error) {
	if adminUserID <= 0 {
		return model.ProductType{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 255 {
		return model.ProductType{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}

	var t model.ProductType
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		created, err := r.Catalog().CreateType(ctx, name)
		if errors.Is(err, repo.ErrDuplicate) {
			return NewHTTPError(http.StatusConflict, "type already exists")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		t = created
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateType, model.AuditResourceProductType, t.ID, nil, t)
	})
	if err != nil {
		return model.ProductType{}, err
	}
	return t, nil
}

// ブランド名・種類名を付け直す。取れなければそのまま返す
func (u *AdminProductUsecase) reload(ctx context.Context, p model.Product) ProductOutput {
	full, err := u.productRepo.FindByID(ctx, p.ID)
	if err != nil {
		return toProductOutput(p)
	}
	return toProductOutput(full)
}

// 監査ログ1件。before/after は nil なら空文字
func writeAudit(ctx context.Context, r repo.TxRepos, actorID int64, action model.AuditAction, resType model.AuditResourceType, resID int64, before, after any) error {
	beforeJSON, err := auditJSON(before)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "audit encode error")
	}
	afterJSON, err := auditJSON(after)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "audit encode error")
	}

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resType,
		ResourceID:   resID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func auditJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("audit json: %w", err)
	}
	return string(b), nil
}

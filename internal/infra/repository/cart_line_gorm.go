package repository

import (
	"context"
	"errors"

	"perfumeshop/internal/domain/model"
	repo "perfumeshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartLineGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartLineGormRepository(db *gorm.DB) *CartLineGormRepository {
	return &CartLineGormRepository{db: db}
}

// カート明細を一覧取得（商品とブランドを付ける）
func (r *CartLineGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Brand").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}

	return lines, nil
}

// 同一商品は数量加算。INSERT ... ON CONFLICT の1文で行う
func (r *CartLineGormRepository) AddQuantity(ctx context.Context, userID int64, productID int64, addQty int64) (model.CartLine, error) {
	if addQty <= 0 {
		return model.CartLine{}, errors.New("invalid quantity")
	}

	line := model.CartLine{
		UserID:    userID,
		ProductID: productID,
		Quantity:  addQty,
	}

	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity":   gorm.Expr("cart_lines.quantity + EXCLUDED.quantity"),
					"updated_at": gorm.Expr("NOW()"),
				}),
			},
			clause.Returning{},
		).
		Omit("Product").
		Create(&line).Error
	if err != nil {
		return model.CartLine{}, err
	}

	return line, nil
}

// 明細を取得（本人のものだけ）
func (r *CartLineGormRepository) FindByID(ctx context.Context, userID int64, lineID int64) (model.CartLine, error) {
	var line model.CartLine

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartLine{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartLine{}, err
	}
	return line, nil
}

// 明細の数量を更新
func (r *CartLineGormRepository) UpdateQuantity(ctx context.Context, userID int64, lineID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除。0件でもエラーにしない
func (r *CartLineGormRepository) Delete(ctx context.Context, userID int64, lineID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&model.CartLine{}).Error
}

// ユーザーの明細を全削除
func (r *CartLineGormRepository) ClearByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLine{}).Error
}

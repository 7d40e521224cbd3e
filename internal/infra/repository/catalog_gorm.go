package repository

import (
	"context"
	"errors"

	"perfumeshop/internal/domain/model"
	repo "perfumeshop/internal/repository"

	"gorm.io/gorm"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

func (r *CatalogGormRepository) ListBrands(ctx context.Context) ([]model.Brand, error) {
	var list []model.Brand
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return []model.Brand{}, err
	}
	return list, nil
}

func (r *CatalogGormRepository) ListTypes(ctx context.Context) ([]model.ProductType, error) {
	var list []model.ProductType
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return []model.ProductType{}, err
	}
	return list, nil
}

func (r *CatalogGormRepository) CreateBrand(ctx context.Context, name string) (model.Brand, error) {
	b := model.Brand{Name: name}
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Brand{}, repo.ErrDuplicate
		}
		return model.Brand{}, err
	}
	return b, nil
}

func (r *CatalogGormRepository) CreateType(ctx context.Context, name string) (model.ProductType, error) {
	t := model.ProductType{Name: name}
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ProductType{}, repo.ErrDuplicate
		}
		return model.ProductType{}, err
	}
	return t, nil
}

func (r *CatalogGormRepository) BrandExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Brand{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CatalogGormRepository) TypeExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ProductType{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

package repository

import (
	"context"
	"errors"

	"perfumeshop/internal/domain/model"
	repo "perfumeshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileGormRepository struct {
	db *gorm.DB
}

// DI
func NewProfileGormRepository(db *gorm.DB) repo.ProfileRepository {
	return &profileGormRepository{db: db}
}

func (r *profileGormRepository) FindByUserID(ctx context.Context, userID int64) (model.UserProfile, error) {
	var p model.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.UserProfile{}, repo.ErrNotFound
	}
	if err != nil {
		return model.UserProfile{}, err
	}
	return p, nil
}

// 初回は作成、2回目以降は上書き
func (r *profileGormRepository) Upsert(ctx context.Context, profile model.UserProfile) (model.UserProfile, error) {
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"full_name",
					"phone",
					"address",
					"city",
					"state",
					"postal_code",
					"country",
					"updated_at",
				}),
			},
			clause.Returning{},
		).
		Create(&profile).Error
	if err != nil {
		return model.UserProfile{}, err
	}
	return profile, nil
}

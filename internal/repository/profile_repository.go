package repository

import (
	"context"

	"perfumeshop/internal/domain/model"
)

// 配送先デフォルトの保存
type ProfileRepository interface {
	// 無ければ ErrNotFound
	FindByUserID(ctx context.Context, userID int64) (model.UserProfile, error)
	// user_id で upsert
	Upsert(ctx context.Context, profile model.UserProfile) (model.UserProfile, error)
}

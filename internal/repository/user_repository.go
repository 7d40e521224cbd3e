package repository

import (
	"context"
	"errors"

	"perfumeshop/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// 見つからなければ (nil, nil)
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	// 見つからなければ (nil, nil)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１（強制ログアウト）
	IncrementTokenVersion(ctx context.Context, userID int64) error
	// ロール変更（CLIの管理者付与）
	SetRole(ctx context.Context, email string, role model.Role) error
}

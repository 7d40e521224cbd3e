package usecase

import (
	"context"
	"time"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/infra/payment"
)

// 決済の検証（Paystack / mock）
type PaymentVerifier interface {
	Verify(ctx context.Context, exp payment.Expectation) error
}

// 同じ冪等キーのチェックアウトを同時に走らせない
type CheckoutGuard interface {
	Acquire(ctx context.Context, userID int64, idemKey string) (bool, error)
	Release(ctx context.Context, userID int64, idemKey string) error
}

// アクセストークン発行
type TokenIssuer interface {
	Issue(user *model.User, now time.Time) (token string, expiresIn int, err error)
}

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateForceLogout(ctx context.Context, targetUserID int64) error
}

// チェックアウトフォームの検証
type CheckoutValidator interface {
	ValidatePlaceOrder(ctx context.Context, in PlaceOrderInput) error
	ValidateProfile(ctx context.Context, in ProfileInput) error
}

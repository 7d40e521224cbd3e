package validator

import (
	"context"
	"fmt"
	"strings"

	"perfumeshop/internal/usecase"
)

type checkoutValidator struct{}

func NewCheckoutValidator() usecase.CheckoutValidator {
	return &checkoutValidator{}
}

// 注文フォーム（連絡先・配送先・請求先・決済結果）
func (v *checkoutValidator) ValidatePlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) error {
	if !isEmailLike(strings.TrimSpace(in.Email)) {
		return fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if err := optional("email", in.Email, 255); err != nil {
		return err
	}
	if err := required("full_name", in.FullName, 255); err != nil {
		return err
	}
	if err := optional("phone", in.Phone, 30); err != nil {
		return err
	}
	if err := validateAddress("shipping", in.Shipping); err != nil {
		return err
	}
	if in.Billing != nil {
		if err := validateAddress("billing", *in.Billing); err != nil {
			return err
		}
	}

	switch in.PaymentOutcome {
	case usecase.PaymentOutcomeSuccess:
		// 検証に使うので必須
		if err := required("payment_reference", in.PaymentReference, 255); err != nil {
			return err
		}
	case usecase.PaymentOutcomeCancelled:
		if err := optional("payment_reference", in.PaymentReference, 255); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: payment_outcome", ErrInvalidInput)
	}
	return nil
}

// プロフィールは全部任意。長さだけ見る
func (v *checkoutValidator) ValidateProfile(ctx context.Context, in usecase.ProfileInput) error {
	fields := []struct {
		name string
		val  string
		max  int
	}{
		{"full_name", in.FullName, 255},
		{"phone", in.Phone, 30},
		{"address", in.Address, 255},
		{"city", in.City, 100},
		{"state", in.State, 100},
		{"postal_code", in.PostalCode, 20},
		{"country", in.Country, 100},
	}
	for _, f := range fields {
		if err := optional(f.name, f.val, f.max); err != nil {
			return err
		}
	}
	return nil
}

func validateAddress(prefix string, a usecase.AddressInput) error {
	if err := required(prefix+".address", a.Address, 255); err != nil {
		return err
	}
	if err := required(prefix+".city", a.City, 100); err != nil {
		return err
	}
	if err := required(prefix+".postal_code", a.PostalCode, 20); err != nil {
		return err
	}
	return required(prefix+".country", a.Country, 100)
}

func required(name, v string, max int) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
	}
	return optional(name, v, max)
}

func optional(name, v string, max int) error {
	if len(v) > max {
		return fmt.Errorf("%w: %s too long", ErrInvalidInput, name)
	}
	return nil
}

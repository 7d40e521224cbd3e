package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// 既知のステータスか
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// 注文の住所・連絡先
type OrderAddress struct {
	Address    string `gorm:"type:varchar(255)" json:"address"`
	City       string `gorm:"type:varchar(100)" json:"city"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string `gorm:"type:varchar(100)" json:"country"`
}

// 注文（金額の内訳と請求先まで持つ形に統一）
type Order struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64       `gorm:"not null;index;uniqueIndex:ux_orders_user_idem" json:"user_id"`
	IdempotencyKey string      `gorm:"type:varchar(255);not null;uniqueIndex:ux_orders_user_idem" json:"-"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	Email    string `gorm:"type:varchar(255);not null" json:"email"`
	FullName string `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone    string `gorm:"type:varchar(30)" json:"phone"`

	Shipping OrderAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	Billing  OrderAddress `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`

	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingFee decimal.Decimal `gorm:"column:shipping_fee;type:numeric(12,2);not null" json:"shipping_fee"`
	Tax         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	PaymentReference string `gorm:"type:varchar(255)" json:"payment_reference"`

	Lines     []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

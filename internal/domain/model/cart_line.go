package model

import "time"

// カートの明細
// (user_id, product_id) で一意。価格は持たず、表示時に商品の現在価格を使う。
type CartLine struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:ux_cart_lines_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:ux_cart_lines_user_product;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int64     `gorm:"not null;check:quantity >= 1" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

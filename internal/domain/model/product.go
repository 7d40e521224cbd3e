package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	//在庫は0以上（CHECK制約）
	Stock     int64        `gorm:"not null;check:stock >= 0" json:"stock"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	BrandID   int64        `gorm:"not null;index" json:"brand_id"`
	Brand     *Brand       `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	TypeID    int64        `gorm:"not null;index" json:"type_id"`
	Type      *ProductType `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	ImageURL  string       `gorm:"type:text" json:"image_url"`
	CreatedAt time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

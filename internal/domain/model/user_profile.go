package model

import "time"

// ユーザーの配送先デフォルト。初回保存時に作る
type UserProfile struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	FullName   string    `gorm:"type:varchar(255)" json:"full_name"`
	Phone      string    `gorm:"type:varchar(30)" json:"phone"`
	Address    string    `gorm:"type:varchar(255)" json:"address"`
	City       string    `gorm:"type:varchar(100)" json:"city"`
	State      string    `gorm:"type:varchar(100)" json:"state"`
	PostalCode string    `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string    `gorm:"type:varchar(100)" json:"country"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

package model

import "time"

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusInProgress OutboxStatus = "in_progress"
	OutboxStatusSent       OutboxStatus = "sent"
	OutboxStatusFailed     OutboxStatus = "failed"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

// 注文イベント。注文と同じトランザクションで書き、relayがKafkaへ流す
type OutboxEvent struct {
	ID            int64        `gorm:"primaryKey;autoIncrement"`
	AggregateType string       `gorm:"type:varchar(50);not null"`
	AggregateID   string       `gorm:"type:varchar(64);not null;index"`
	Type          string       `gorm:"type:varchar(100);not null"`
	Payload       []byte       `gorm:"type:jsonb;not null"`
	Traceparent   string       `gorm:"type:varchar(128)"`
	Status        OutboxStatus `gorm:"type:varchar(20);not null;index;default:'pending'"`
	LockedBy      string       `gorm:"type:varchar(100)"`
	LockedUntil   *time.Time
	RetryCount    int       `gorm:"not null;default:0"`
	LastError     *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime;index"`
}

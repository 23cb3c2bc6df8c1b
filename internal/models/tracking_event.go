package models

import "time"

// TrackingEvent 运单追踪流水（仅追加，不可修改或删除）
// 说明：每次状态变更写入一条，修正同样以新事件表达，历史永不改写。
type TrackingEvent struct {
	ID          uint     `gorm:"primarykey" json:"id"`
	ShipmentID  uint     `gorm:"index;not null" json:"shipment_id"`             // 所属运单
	Status      string   `gorm:"type:varchar(20);index;not null" json:"status"` // 进入的状态
	Description string   `gorm:"type:varchar(500);not null" json:"description"` // 事件描述
	DriverID    *uint    `gorm:"index" json:"driver_id,omitempty"`              // 经手司机（如有）
	Latitude    *float64 `json:"latitude,omitempty"`                            // 纬度（可选）
	Longitude   *float64 `json:"longitude,omitempty"`                           // 经度（可选）

	// 交付凭证镜像（仅 delivered 事件填写）
	ReceiverName  string `gorm:"type:varchar(120)" json:"receiver_name,omitempty"`
	ReceiverTaxID string `gorm:"type:varchar(20)" json:"receiver_tax_id,omitempty"`
	ProofRef      string `gorm:"type:varchar(500)" json:"proof_ref,omitempty"`
	Notes         string `gorm:"type:varchar(500)" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (TrackingEvent) TableName() string {
	return "tracking_events"
}

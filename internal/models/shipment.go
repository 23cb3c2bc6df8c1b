package models

import (
	"time"
)

// Party 寄件/收件方信息（创建后不可变，嵌入运单）
type Party struct {
	Name    string `gorm:"type:varchar(120);not null" json:"name"`    // 姓名
	Phone   string `gorm:"type:varchar(30)" json:"phone,omitempty"`   // 电话
	Email   string `gorm:"type:varchar(200)" json:"email,omitempty"`  // 邮箱
	Address string `gorm:"type:varchar(255);not null" json:"address"` // 地址
	City    string `gorm:"type:varchar(100);not null" json:"city"`    // 城市
	TaxID   string `gorm:"type:varchar(20)" json:"tax_id,omitempty"`  // RUT/税号
}

// Shipment 运单表，当前状态为追踪流水的投影
type Shipment struct {
	ID            uint   `gorm:"primarykey" json:"id"`                                        // 主键
	TrackingCode  string `gorm:"uniqueIndex;not null" json:"tracking_code"`                   // 追踪码（创建时签发，不可变，不复用）
	Sender        Party  `gorm:"embedded;embeddedPrefix:sender_" json:"sender"`               // 寄件方
	Recipient     Party  `gorm:"embedded;embeddedPrefix:recipient_" json:"recipient"`         // 收件方
	Description   string `gorm:"type:varchar(500);not null" json:"description"`               // 货物描述
	Weight        *Money `gorm:"type:decimal(20,2)" json:"weight,omitempty"`                  // 重量（kg，可选）
	DeclaredValue Money  `gorm:"type:decimal(20,2);not null;default:0" json:"declared_value"` // 申报价值

	Status           string `gorm:"index;not null" json:"status"`                   // 运单状态
	OperatorID       uint   `gorm:"index;not null" json:"operator_id"`              // 创建运营员（不可变）
	AssignedDriverID *uint  `gorm:"index" json:"assigned_driver_id,omitempty"`      // 已指派司机

	// 交付凭证（仅在进入 delivered 时写入）
	ReceiverName  string `gorm:"type:varchar(120)" json:"receiver_name,omitempty"`  // 签收人姓名
	ReceiverTaxID string `gorm:"type:varchar(20)" json:"receiver_tax_id,omitempty"` // 签收人 RUT/税号
	ProofRef      string `gorm:"type:varchar(500)" json:"proof_ref,omitempty"`      // 签名/照片引用
	Notes         string `gorm:"type:varchar(500)" json:"notes,omitempty"`          // 备注

	AssignedAt  *time.Time `gorm:"index" json:"assigned_at"`  // 指派时间
	DeliveredAt *time.Time `gorm:"index" json:"delivered_at"` // 交付时间（仅写入一次）
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`   // 创建时间（不可变）
	UpdatedAt   time.Time  `gorm:"index" json:"updated_at"`   // 更新时间

	Events []TrackingEvent `gorm:"foreignKey:ShipmentID" json:"events,omitempty"` // 追踪流水
}

// TableName 指定表名
func (Shipment) TableName() string {
	return "shipments"
}

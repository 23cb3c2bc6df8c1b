package models

import "time"

// Notification 站内通知
type Notification struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`                 // 接收用户
	Kind       string     `gorm:"type:varchar(20);index;not null" json:"kind"`   // created / assigned / delivered
	Title      string     `gorm:"type:varchar(200);not null" json:"title"`       // 标题
	Body       string     `gorm:"type:varchar(500);not null" json:"body"`        // 内容
	ShipmentID *uint      `gorm:"index" json:"shipment_id,omitempty"`            // 关联运单
	Read       bool       `gorm:"index;not null;default:false" json:"read"`      // 已读标记
	ReadAt     *time.Time `json:"read_at,omitempty"`                             // 阅读时间
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}

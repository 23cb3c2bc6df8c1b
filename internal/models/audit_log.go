package models

import "time"

// AuditLog 操作审计日志
// 说明：每次运单变更尝试写入一条，含被拒绝与非法的尝试，供事后追查。
type AuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ActorID    uint      `gorm:"index;not null" json:"actor_id"`                   // 操作者
	ActorRole  string    `gorm:"type:varchar(20);index;not null;default:''" json:"actor_role"` // 操作者角色
	Action     string    `gorm:"type:varchar(30);index;not null" json:"action"`    // 动作（CREATE/ASSIGN/...）
	EntityType string    `gorm:"type:varchar(30);index;not null" json:"entity_type"` // 实体类型
	EntityID   uint      `gorm:"index" json:"entity_id"`                           // 实体主键（失败时可能为 0）
	BeforeJSON JSON      `gorm:"type:json" json:"before"`                          // 变更前快照
	AfterJSON  JSON      `gorm:"type:json" json:"after"`                           // 变更后快照
	Outcome    string    `gorm:"type:varchar(10);index;not null" json:"outcome"`   // success / error
	Detail     string    `gorm:"type:varchar(500)" json:"detail,omitempty"`        // 失败原因等补充信息
	RequestID  string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "audit_logs"
}

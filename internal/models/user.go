package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（运营、司机、客户均为用户，按角色区分）
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                      // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`         // 邮箱
	PasswordHash string         `gorm:"not null" json:"-"`                         // 密码哈希（不返回给前端）
	Name         string         `gorm:"type:varchar(120);not null" json:"name"`    // 姓名
	Phone        string         `gorm:"type:varchar(30)" json:"phone,omitempty"`   // 电话
	Role         string         `gorm:"type:varchar(20);index;not null" json:"role"` // 角色（admin/operator/driver/customer）
	Status       string         `gorm:"default:'active'" json:"status"`            // 账号状态
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                   // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

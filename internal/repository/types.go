package repository

import "time"

// ShipmentListFilter 查询运单列表的过滤条件
// DriverID 非零时表示司机视角，只返回指派给该司机的运单。
type ShipmentListFilter struct {
	Page         int
	PageSize     int
	Status       string
	TrackingCode string // 追踪码子串匹配
	DriverID     uint
	OperatorID   uint
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// AuditLogListFilter 查询审计日志列表的过滤条件
type AuditLogListFilter struct {
	Page        int
	PageSize    int
	ActorID     uint
	Action      string
	EntityType  string
	EntityID    uint
	Outcome     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	OnlyUnread bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Role     string
	Status   string
	Keyword  string
}

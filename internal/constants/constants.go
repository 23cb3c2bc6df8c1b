package constants

// 运单状态常量
const (
	ShipmentStatusPending      = "pending"
	ShipmentStatusAssigned     = "assigned"
	ShipmentStatusInTransit    = "in_transit"
	ShipmentStatusDelivered    = "delivered"
	ShipmentStatusNotDelivered = "not_delivered"
	ShipmentStatusCancelled    = "cancelled"
)

// 角色常量
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleDriver   = "driver"
	RoleCustomer = "customer"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 审计动作常量
const (
	AuditActionCreate       = "CREATE"
	AuditActionAssign       = "ASSIGN"
	AuditActionTransit      = "TRANSIT"
	AuditActionDeliver      = "DELIVER"
	AuditActionCancel       = "CANCEL"
	AuditActionNotDelivered = "NOT_DELIVERED"
)

// 审计结果常量
const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeError   = "error"
)

// 审计实体常量
const (
	AuditEntityShipment = "Shipment"
)

// 通知类型常量
const (
	NotificationKindCreated   = "created"
	NotificationKindAssigned  = "assigned"
	NotificationKindDelivered = "delivered"
)

// 队列与任务常量
const (
	QueueDefault = "default"

	TaskShipmentCreatedEmail = "shipment:created_email"
	TaskShipmentNotify       = "shipment:notify"
)

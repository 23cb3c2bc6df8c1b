package service

import "github.com/lonqui-express/internal/constants"

// Actor 操作主体（由身份层解析出的用户 ID 与角色）
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin 判断是否管理员
func (a Actor) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}

// IsOperator 判断是否运营员
func (a Actor) IsOperator() bool {
	return a.Role == constants.RoleOperator
}

// IsDriver 判断是否司机
func (a Actor) IsDriver() bool {
	return a.Role == constants.RoleDriver
}

// CanManageShipments 创建/指派/取消运单的角色范围
func (a Actor) CanManageShipments() bool {
	return a.IsAdmin() || a.IsOperator()
}

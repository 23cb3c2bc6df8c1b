package service

import "github.com/lonqui-express/internal/constants"

// allowedTransitions 运单状态机。终态（delivered/not_delivered/cancelled）没有出边。
var allowedTransitions = map[string]map[string]bool{
	constants.ShipmentStatusPending: {
		constants.ShipmentStatusAssigned:  true,
		constants.ShipmentStatusCancelled: true,
	},
	constants.ShipmentStatusAssigned: {
		constants.ShipmentStatusInTransit:    true,
		constants.ShipmentStatusDelivered:    true,
		constants.ShipmentStatusNotDelivered: true,
		constants.ShipmentStatusCancelled:    true,
	},
	constants.ShipmentStatusInTransit: {
		constants.ShipmentStatusDelivered:    true,
		constants.ShipmentStatusNotDelivered: true,
	},
}

// CanTransition 判断状态迁移是否合法
func CanTransition(from, to string) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// IsTerminalStatus 判断是否终态
func IsTerminalStatus(status string) bool {
	switch status {
	case constants.ShipmentStatusDelivered,
		constants.ShipmentStatusNotDelivered,
		constants.ShipmentStatusCancelled:
		return true
	}
	return false
}

// StatusProgressPercent 公开查询用的进度百分比
func StatusProgressPercent(status string) int {
	switch status {
	case constants.ShipmentStatusPending:
		return 0
	case constants.ShipmentStatusAssigned:
		return 33
	case constants.ShipmentStatusInTransit:
		return 66
	case constants.ShipmentStatusDelivered:
		return 100
	}
	return 0
}

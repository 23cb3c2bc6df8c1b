package queue

import (
	"encoding/json"

	"github.com/lonqui-express/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskShipmentCreatedEmail 运单创建邮件通知任务
	TaskShipmentCreatedEmail = constants.TaskShipmentCreatedEmail
	// TaskShipmentNotify 运单站内通知任务
	TaskShipmentNotify = constants.TaskShipmentNotify
)

// ShipmentCreatedEmailPayload 运单创建邮件任务载荷
type ShipmentCreatedEmailPayload struct {
	ShipmentID uint `json:"shipment_id"`
}

// ShipmentNotifyPayload 运单站内通知任务载荷
type ShipmentNotifyPayload struct {
	ShipmentID uint   `json:"shipment_id"`
	UserID     uint   `json:"user_id"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// NewShipmentCreatedEmailTask 创建运单创建邮件任务
func NewShipmentCreatedEmailTask(payload ShipmentCreatedEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShipmentCreatedEmail, body), nil
}

// NewShipmentNotifyTask 创建运单站内通知任务
func NewShipmentNotifyTask(payload ShipmentNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShipmentNotify, body), nil
}

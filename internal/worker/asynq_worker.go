package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/lonqui-express/internal/logger"
	"github.com/lonqui-express/internal/provider"
	"github.com/lonqui-express/internal/queue"
	"github.com/lonqui-express/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskShipmentCreatedEmail, c.handleShipmentCreatedEmail)
	mux.HandleFunc(queue.TaskShipmentNotify, c.handleShipmentNotify)
}

func (c *Consumer) handleShipmentCreatedEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_shipment_created_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ShipmentCreatedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_shipment_created_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.ShipmentID == 0 {
		logger.Debugw("worker_shipment_created_email_skip_invalid_payload", "shipment_id", payload.ShipmentID)
		return nil
	}
	shipment, err := c.ShipmentRepo.GetByID(payload.ShipmentID)
	if err != nil {
		logger.Warnw("worker_shipment_created_email_fetch_failed", "shipment_id", payload.ShipmentID, "error", err)
		return err
	}
	if shipment == nil {
		logger.Debugw("worker_shipment_created_email_skip_not_found", "shipment_id", payload.ShipmentID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_shipment_created_email_skip_email_service_nil", "shipment_id", shipment.ID)
		return nil
	}
	if err := c.EmailService.SendShipmentCreatedEmail(shipment); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailServiceDisabled),
			errors.Is(err, service.ErrEmailServiceNotConfigured),
			errors.Is(err, service.ErrInvalidEmail):
			// 邮件是尽力而为的旁路，配置缺失不触发重试
			logger.Debugw("worker_shipment_created_email_skip", "shipment_id", shipment.ID, "reason", err)
			return nil
		default:
			logger.Warnw("worker_shipment_created_email_send_failed",
				"shipment_id", shipment.ID,
				"tracking_code", shipment.TrackingCode,
				"error", err,
			)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleShipmentNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_shipment_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ShipmentNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_shipment_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 || payload.Kind == "" {
		logger.Debugw("worker_shipment_notify_skip_invalid_payload", "user_id", payload.UserID, "kind", payload.Kind)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_shipment_notify_skip_service_nil", "user_id", payload.UserID)
		return nil
	}
	if err := c.NotificationService.Deliver(service.ShipmentNotifyInput{
		ShipmentID: payload.ShipmentID,
		UserID:     payload.UserID,
		Kind:       payload.Kind,
		Title:      payload.Title,
		Body:       payload.Body,
	}); err != nil {
		logger.Warnw("worker_shipment_notify_deliver_failed",
			"shipment_id", payload.ShipmentID,
			"user_id", payload.UserID,
			"kind", payload.Kind,
			"error", err,
		)
		return err
	}
	return nil
}

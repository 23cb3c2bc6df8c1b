package service

import (
	"strings"
	"time"

	"github.com/lonqui-express/internal/logger"
	"github.com/lonqui-express/internal/models"
	"github.com/lonqui-express/internal/queue"
	"github.com/lonqui-express/internal/repository"
)

// ShipmentNotifyInput 运单通知输入
type ShipmentNotifyInput struct {
	UserID     uint
	Kind       string
	Title      string
	Body       string
	ShipmentID uint
}

// NotificationService 站内通知服务。
// 队列可用时异步投递，不可用时直接落库；投递失败只记日志。
type NotificationService struct {
	repo        repository.NotificationRepository
	queueClient *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{repo: repo, queueClient: queueClient}
}

// Notify 投递一条运单通知，尽力而为。
func (s *NotificationService) Notify(input ShipmentNotifyInput) {
	if s == nil || s.repo == nil {
		return
	}
	if input.UserID == 0 || strings.TrimSpace(input.Kind) == "" {
		return
	}

	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueShipmentNotify(queue.ShipmentNotifyPayload{
			ShipmentID: input.ShipmentID,
			UserID:     input.UserID,
			Kind:       input.Kind,
			Title:      input.Title,
			Body:       input.Body,
		})
		if err == nil {
			return
		}
		logger.Warnw("shipment_notify_enqueue_failed",
			"shipment_id", input.ShipmentID,
			"user_id", input.UserID,
			"kind", input.Kind,
			"error", err,
		)
	}

	if err := s.Deliver(input); err != nil {
		logger.Errorw("shipment_notify_deliver_failed",
			"shipment_id", input.ShipmentID,
			"user_id", input.UserID,
			"kind", input.Kind,
			"error", err,
		)
	}
}

// Deliver 将通知写入存储（队列 worker 与直投共用）。
func (s *NotificationService) Deliver(input ShipmentNotifyInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	item := &models.Notification{
		UserID:    input.UserID,
		Kind:      input.Kind,
		Title:     strings.TrimSpace(input.Title),
		Body:      strings.TrimSpace(input.Body),
		CreatedAt: time.Now(),
	}
	if input.ShipmentID != 0 {
		shipmentID := input.ShipmentID
		item.ShipmentID = &shipmentID
	}
	return s.repo.Create(item)
}

// ListForUser 查询用户通知列表
func (s *NotificationService) ListForUser(filter repository.NotificationListFilter) ([]models.Notification, int64, error) {
	if s == nil || s.repo == nil {
		return []models.Notification{}, 0, nil
	}
	return s.repo.ListByUser(filter)
}

// MarkRead 标记通知为已读
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if notificationID == 0 {
		return ErrNotificationRefInvalid
	}
	hit, err := s.repo.MarkRead(userID, notificationID)
	if err != nil {
		return err
	}
	if !hit {
		return ErrNotificationRefInvalid
	}
	return nil
}

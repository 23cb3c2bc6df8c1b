package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/models"
	"github.com/lonqui-express/internal/provider"
	"github.com/lonqui-express/internal/queue"
	"github.com/lonqui-express/internal/repository"
	"github.com/lonqui-express/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Shipment{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	queueClient, _ := queue.NewClient(nil)
	notificationRepo := repository.NewNotificationRepository(db)
	container := &provider.Container{
		ShipmentRepo:        repository.NewShipmentRepository(db),
		NotificationRepo:    notificationRepo,
		NotificationService: service.NewNotificationService(notificationRepo, queueClient),
	}
	return NewConsumer(container), db
}

func TestHandleShipmentNotifyWritesNotification(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	payload := queue.ShipmentNotifyPayload{
		ShipmentID: 9,
		UserID:     3,
		Kind:       constants.NotificationKindAssigned,
		Title:      "Shipment assigned",
		Body:       "Shipment LQ-20260110-ABCDEF assigned to you",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	task := asynq.NewTask(queue.TaskShipmentNotify, body)

	if err := consumer.handleShipmentNotify(context.Background(), task); err != nil {
		t.Fatalf("handle shipment notify failed: %v", err)
	}

	var notifications []models.Notification
	if err := db.Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	got := notifications[0]
	if got.UserID != 3 || got.Kind != constants.NotificationKindAssigned {
		t.Fatalf("unexpected notification: %+v", got)
	}
	if got.ShipmentID == nil || *got.ShipmentID != 9 {
		t.Fatalf("expected shipment id 9, got %+v", got.ShipmentID)
	}
}

func TestHandleShipmentNotifySkipsInvalidPayload(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	payload := queue.ShipmentNotifyPayload{UserID: 0, Kind: ""}
	body, _ := json.Marshal(payload)
	if err := consumer.handleShipmentNotify(context.Background(), asynq.NewTask(queue.TaskShipmentNotify, body)); err != nil {
		t.Fatalf("expected invalid payload to be skipped, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no notifications, got %d", count)
	}
}

func TestHandleShipmentCreatedEmailSkipsMissingShipment(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	payload := queue.ShipmentCreatedEmailPayload{ShipmentID: 12345}
	body, _ := json.Marshal(payload)
	if err := consumer.handleShipmentCreatedEmail(context.Background(), asynq.NewTask(queue.TaskShipmentCreatedEmail, body)); err != nil {
		t.Fatalf("expected missing shipment to be skipped, got %v", err)
	}
}

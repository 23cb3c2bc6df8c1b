package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupNotificationRepositoryTest(t *testing.T) (*GormNotificationRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewNotificationRepository(db), db
}

func TestNotificationRepositoryListAndMarkRead(t *testing.T) {
	repo, _ := setupNotificationRepositoryTest(t)

	shipmentID := uint(5)
	notifications := []models.Notification{
		{UserID: 1, Kind: constants.NotificationKindAssigned, Title: "Encomienda asignada", ShipmentID: &shipmentID},
		{UserID: 1, Kind: constants.NotificationKindDelivered, Title: "Encomienda entregada", ShipmentID: &shipmentID},
		{UserID: 2, Kind: constants.NotificationKindAssigned, Title: "Otra encomienda", ShipmentID: &shipmentID},
	}
	for i := range notifications {
		if err := repo.Create(&notifications[i]); err != nil {
			t.Fatalf("create notification %d failed: %v", i, err)
		}
	}

	list, total, err := repo.ListByUser(NotificationListFilter{Page: 1, PageSize: 10, UserID: 1})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 notifications for user 1, got total=%d len=%d", total, len(list))
	}

	// 他人的通知不可标记已读
	hit, err := repo.MarkRead(2, notifications[0].ID)
	if err != nil {
		t.Fatalf("mark read as wrong user errored: %v", err)
	}
	if hit {
		t.Fatalf("expected mark read to miss for foreign notification")
	}

	hit, err = repo.MarkRead(1, notifications[0].ID)
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected mark read to hit")
	}

	// 重复标记落空
	hit, err = repo.MarkRead(1, notifications[0].ID)
	if err != nil {
		t.Fatalf("second mark read errored: %v", err)
	}
	if hit {
		t.Fatalf("expected second mark read to miss")
	}

	unread, unreadTotal, err := repo.ListByUser(NotificationListFilter{Page: 1, PageSize: 10, UserID: 1, OnlyUnread: true})
	if err != nil {
		t.Fatalf("list unread failed: %v", err)
	}
	if unreadTotal != 1 || len(unread) != 1 {
		t.Fatalf("expected 1 unread notification, got total=%d len=%d", unreadTotal, len(unread))
	}
	if unread[0].ID != notifications[1].ID {
		t.Fatalf("unexpected unread notification: %d", unread[0].ID)
	}
}

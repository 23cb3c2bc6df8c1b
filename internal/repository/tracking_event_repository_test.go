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

func setupTrackingEventRepositoryTest(t *testing.T) (*GormTrackingEventRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:tracking_event_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.TrackingEvent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewTrackingEventRepository(db), db
}

func TestTrackingEventRepositoryListAscending(t *testing.T) {
	repo, _ := setupTrackingEventRepositoryTest(t)

	base := time.Now().UTC().Truncate(time.Second)
	statuses := []string{
		constants.ShipmentStatusPending,
		constants.ShipmentStatusAssigned,
		constants.ShipmentStatusInTransit,
		constants.ShipmentStatusDelivered,
	}
	for i, status := range statuses {
		event := models.TrackingEvent{
			ShipmentID:  42,
			Status:      status,
			Description: fmt.Sprintf("evento %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(&event); err != nil {
			t.Fatalf("create event %d failed: %v", i, err)
		}
	}
	// 其他运单的事件不应混入
	other := models.TrackingEvent{ShipmentID: 99, Status: constants.ShipmentStatusPending, Description: "otro"}
	if err := repo.Create(&other); err != nil {
		t.Fatalf("create other event failed: %v", err)
	}

	events, err := repo.ListByShipment(42)
	if err != nil {
		t.Fatalf("list by shipment failed: %v", err)
	}
	if len(events) != len(statuses) {
		t.Fatalf("expected %d events, got %d", len(statuses), len(events))
	}
	for i, event := range events {
		if event.Status != statuses[i] {
			t.Fatalf("event %d: expected status %s, got %s", i, statuses[i], event.Status)
		}
		if i > 0 && events[i].CreatedAt.Before(events[i-1].CreatedAt) {
			t.Fatalf("events not ordered ascending at index %d", i)
		}
	}

	count, err := repo.CountByShipment(42)
	if err != nil {
		t.Fatalf("count by shipment failed: %v", err)
	}
	if count != int64(len(statuses)) {
		t.Fatalf("expected count %d, got %d", len(statuses), count)
	}
}

func TestTrackingEventRepositorySameTimestampStableOrder(t *testing.T) {
	repo, _ := setupTrackingEventRepositoryTest(t)

	at := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		event := models.TrackingEvent{
			ShipmentID:  7,
			Status:      constants.ShipmentStatusPending,
			Description: fmt.Sprintf("mismo instante %d", i),
			CreatedAt:   at,
		}
		if err := repo.Create(&event); err != nil {
			t.Fatalf("create event %d failed: %v", i, err)
		}
	}

	events, err := repo.ListByShipment(7)
	if err != nil {
		t.Fatalf("list by shipment failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	// 同一时间戳按插入顺序（主键升序）稳定返回
	for i := 1; i < len(events); i++ {
		if events[i].ID <= events[i-1].ID {
			t.Fatalf("expected ids ascending, got %d then %d", events[i-1].ID, events[i].ID)
		}
	}
}

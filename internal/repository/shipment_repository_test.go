package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupShipmentRepositoryTest(t *testing.T) (*GormShipmentRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:shipment_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Shipment{},
		&models.TrackingEvent{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewShipmentRepository(db), db
}

func buildTestShipment(code string, operatorID uint) models.Shipment {
	return models.Shipment{
		TrackingCode: code,
		Sender: models.Party{
			Name:    "Remitente Uno",
			Address: "Av. Principal 100",
			City:    "Santiago",
		},
		Recipient: models.Party{
			Name:    "Destinatario Uno",
			Address: "Calle Dos 200",
			City:    "Valparaiso",
		},
		Description:   "Caja de repuestos",
		DeclaredValue: models.NewMoneyFromDecimal(decimal.RequireFromString("15000.00")),
		Status:        constants.ShipmentStatusPending,
		OperatorID:    operatorID,
	}
}

func TestShipmentRepositoryCreateDuplicateTrackingCode(t *testing.T) {
	repo, _ := setupShipmentRepositoryTest(t)

	first := buildTestShipment("LQ-20260101-AAAA", 1)
	if err := repo.Create(&first); err != nil {
		t.Fatalf("create first shipment failed: %v", err)
	}
	if first.ID == 0 {
		t.Fatalf("expected first shipment to get an id")
	}

	dup := buildTestShipment("LQ-20260101-AAAA", 2)
	err := repo.Create(&dup)
	if err == nil {
		t.Fatalf("expected duplicate tracking code to fail")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

func TestShipmentRepositoryGetByTrackingCode(t *testing.T) {
	repo, _ := setupShipmentRepositoryTest(t)

	shipment := buildTestShipment("LQ-20260102-BBBB", 1)
	if err := repo.Create(&shipment); err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}

	got, err := repo.GetByTrackingCode("LQ-20260102-BBBB")
	if err != nil {
		t.Fatalf("get by tracking code failed: %v", err)
	}
	if got == nil || got.ID != shipment.ID {
		t.Fatalf("expected shipment %d, got %+v", shipment.ID, got)
	}

	missing, err := repo.GetByTrackingCode("LQ-00000000-ZZZZ")
	if err != nil {
		t.Fatalf("get missing tracking code failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing tracking code, got %+v", missing)
	}

	blank, err := repo.GetByTrackingCode("   ")
	if err != nil {
		t.Fatalf("get blank tracking code failed: %v", err)
	}
	if blank != nil {
		t.Fatalf("expected nil for blank tracking code")
	}
}

func TestShipmentRepositoryUpdateStatusFrom(t *testing.T) {
	repo, _ := setupShipmentRepositoryTest(t)

	shipment := buildTestShipment("LQ-20260103-CCCC", 1)
	if err := repo.Create(&shipment); err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}

	driverID := uint(7)
	now := time.Now()
	hit, err := repo.UpdateStatusFrom(shipment.ID, constants.ShipmentStatusPending, constants.ShipmentStatusAssigned, map[string]interface{}{
		"assigned_driver_id": driverID,
		"assigned_at":        &now,
	})
	if err != nil {
		t.Fatalf("update status from pending failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected CAS update to hit")
	}

	// 前置状态已不再匹配，第二次同样的 CAS 必须落空
	hit, err = repo.UpdateStatusFrom(shipment.ID, constants.ShipmentStatusPending, constants.ShipmentStatusAssigned, nil)
	if err != nil {
		t.Fatalf("second update errored: %v", err)
	}
	if hit {
		t.Fatalf("expected stale CAS update to miss")
	}

	got, err := repo.GetByID(shipment.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if got.Status != constants.ShipmentStatusAssigned {
		t.Fatalf("expected status %s, got %s", constants.ShipmentStatusAssigned, got.Status)
	}
	if got.AssignedDriverID == nil || *got.AssignedDriverID != driverID {
		t.Fatalf("expected assigned driver %d, got %+v", driverID, got.AssignedDriverID)
	}
	if got.AssignedAt == nil {
		t.Fatalf("expected assigned_at to be set")
	}
}

func TestShipmentRepositoryList(t *testing.T) {
	repo, db := setupShipmentRepositoryTest(t)

	driverA := uint(11)
	driverB := uint(12)
	shipments := []models.Shipment{
		buildTestShipment("LQ-20260104-D001", 1),
		buildTestShipment("LQ-20260104-D002", 1),
		buildTestShipment("LQ-20260104-E001", 2),
	}
	shipments[0].Status = constants.ShipmentStatusAssigned
	shipments[0].AssignedDriverID = &driverA
	shipments[1].Status = constants.ShipmentStatusInTransit
	shipments[1].AssignedDriverID = &driverA
	shipments[2].Status = constants.ShipmentStatusAssigned
	shipments[2].AssignedDriverID = &driverB
	if err := db.Create(&shipments).Error; err != nil {
		t.Fatalf("create shipments failed: %v", err)
	}

	t.Run("filter by driver", func(t *testing.T) {
		list, total, err := repo.List(ShipmentListFilter{Page: 1, PageSize: 10, DriverID: driverA})
		if err != nil {
			t.Fatalf("list by driver failed: %v", err)
		}
		if total != 2 || len(list) != 2 {
			t.Fatalf("expected 2 shipments for driver, got total=%d len=%d", total, len(list))
		}
		for _, s := range list {
			if s.AssignedDriverID == nil || *s.AssignedDriverID != driverA {
				t.Fatalf("unexpected shipment in driver scope: %+v", s)
			}
		}
	})

	t.Run("filter by status", func(t *testing.T) {
		list, total, err := repo.List(ShipmentListFilter{Page: 1, PageSize: 10, Status: constants.ShipmentStatusInTransit})
		if err != nil {
			t.Fatalf("list by status failed: %v", err)
		}
		if total != 1 || len(list) != 1 {
			t.Fatalf("expected 1 in_transit shipment, got total=%d len=%d", total, len(list))
		}
		if list[0].TrackingCode != "LQ-20260104-D002" {
			t.Fatalf("unexpected shipment: %s", list[0].TrackingCode)
		}
	})

	t.Run("filter by tracking code substring", func(t *testing.T) {
		list, total, err := repo.List(ShipmentListFilter{Page: 1, PageSize: 10, TrackingCode: "D00"})
		if err != nil {
			t.Fatalf("list by code substring failed: %v", err)
		}
		if total != 2 || len(list) != 2 {
			t.Fatalf("expected 2 shipments matching substring, got total=%d len=%d", total, len(list))
		}
	})

	t.Run("pagination", func(t *testing.T) {
		list, total, err := repo.List(ShipmentListFilter{Page: 2, PageSize: 2})
		if err != nil {
			t.Fatalf("list page 2 failed: %v", err)
		}
		if total != 3 {
			t.Fatalf("expected total 3, got %d", total)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 shipment on page 2, got %d", len(list))
		}
	})
}

func TestShipmentRepositoryStatusCounts(t *testing.T) {
	repo, db := setupShipmentRepositoryTest(t)

	statuses := []string{
		constants.ShipmentStatusPending,
		constants.ShipmentStatusPending,
		constants.ShipmentStatusDelivered,
		constants.ShipmentStatusCancelled,
	}
	for i, status := range statuses {
		shipment := buildTestShipment(fmt.Sprintf("LQ-20260105-F%03d", i), 1)
		shipment.Status = status
		if err := db.Create(&shipment).Error; err != nil {
			t.Fatalf("create shipment %d failed: %v", i, err)
		}
	}

	counts, total, err := repo.StatusCounts(ShipmentListFilter{})
	if err != nil {
		t.Fatalf("status counts failed: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected total 4, got %d", total)
	}
	if counts[constants.ShipmentStatusPending] != 2 {
		t.Fatalf("expected 2 pending, got %d", counts[constants.ShipmentStatusPending])
	}
	if counts[constants.ShipmentStatusDelivered] != 1 {
		t.Fatalf("expected 1 delivered, got %d", counts[constants.ShipmentStatusDelivered])
	}
	if counts[constants.ShipmentStatusCancelled] != 1 {
		t.Fatalf("expected 1 cancelled, got %d", counts[constants.ShipmentStatusCancelled])
	}
}

//go:build integration
// +build integration

package repository

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.TrackingEvent{},
		&models.Notification{},
		&models.AuditLog{},
		&models.Shipment{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Shipment{},
		&models.TrackingEvent{},
		&models.AuditLog{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresShipmentLifecycleQueries(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	shipmentRepo := NewShipmentRepository(db)
	eventRepo := NewTrackingEventRepository(db)

	shipment := &models.Shipment{
		TrackingCode: "LQ-PG-0001",
		Sender: models.Party{
			Name:    "Remitente PG",
			Address: "Av. Uno 1",
			City:    "Santiago",
		},
		Recipient: models.Party{
			Name:    "Destinatario PG",
			Address: "Calle Dos 2",
			City:    "Concepcion",
		},
		Description:   "Documentos",
		DeclaredValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5000)),
		Status:        constants.ShipmentStatusPending,
		OperatorID:    1,
	}
	if err := shipmentRepo.Create(shipment); err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}

	dup := &models.Shipment{
		TrackingCode:  "LQ-PG-0001",
		Sender:        shipment.Sender,
		Recipient:     shipment.Recipient,
		Description:   "Duplicado",
		DeclaredValue: models.NewMoneyFromDecimal(decimal.Zero),
		Status:        constants.ShipmentStatusPending,
		OperatorID:    1,
	}
	if err := shipmentRepo.Create(dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey on postgres, got %v", err)
	}

	driverID := uint(3)
	hit, err := shipmentRepo.UpdateStatusFrom(shipment.ID, constants.ShipmentStatusPending, constants.ShipmentStatusAssigned, map[string]interface{}{
		"assigned_driver_id": driverID,
	})
	if err != nil {
		t.Fatalf("CAS update failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected CAS update to hit")
	}
	hit, err = shipmentRepo.UpdateStatusFrom(shipment.ID, constants.ShipmentStatusPending, constants.ShipmentStatusAssigned, nil)
	if err != nil {
		t.Fatalf("stale CAS update errored: %v", err)
	}
	if hit {
		t.Fatalf("expected stale CAS update to miss on postgres")
	}

	for _, status := range []string{constants.ShipmentStatusPending, constants.ShipmentStatusAssigned} {
		if err := eventRepo.Create(&models.TrackingEvent{
			ShipmentID:  shipment.ID,
			Status:      status,
			Description: "evento " + status,
		}); err != nil {
			t.Fatalf("create tracking event failed: %v", err)
		}
	}
	events, err := eventRepo.ListByShipment(shipment.ID)
	if err != nil {
		t.Fatalf("list tracking events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 tracking events, got %d", len(events))
	}

	counts, total, err := shipmentRepo.StatusCounts(ShipmentListFilter{})
	if err != nil {
		t.Fatalf("status counts failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected total 1, got %d", total)
	}
	if counts[constants.ShipmentStatusAssigned] != 1 {
		t.Fatalf("expected 1 assigned, got %d", counts[constants.ShipmentStatusAssigned])
	}
}

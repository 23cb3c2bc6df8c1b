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

func setupAuditLogRepositoryTest(t *testing.T) (*GormAuditLogRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:audit_log_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewAuditLogRepository(db), db
}

func TestAuditLogRepositoryList(t *testing.T) {
	repo, _ := setupAuditLogRepositoryTest(t)

	logs := []models.AuditLog{
		{
			ActorID:    1,
			ActorRole:  constants.RoleOperator,
			Action:     constants.AuditActionCreate,
			EntityType: constants.AuditEntityShipment,
			EntityID:   10,
			AfterJSON:  models.JSON{"status": constants.ShipmentStatusPending},
			Outcome:    constants.AuditOutcomeSuccess,
		},
		{
			ActorID:    2,
			ActorRole:  constants.RoleDriver,
			Action:     constants.AuditActionDeliver,
			EntityType: constants.AuditEntityShipment,
			EntityID:   10,
			BeforeJSON: models.JSON{"status": constants.ShipmentStatusInTransit},
			AfterJSON:  models.JSON{"status": constants.ShipmentStatusDelivered},
			Outcome:    constants.AuditOutcomeSuccess,
		},
		{
			ActorID:    3,
			ActorRole:  constants.RoleDriver,
			Action:     constants.AuditActionDeliver,
			EntityType: constants.AuditEntityShipment,
			EntityID:   11,
			Outcome:    constants.AuditOutcomeError,
			Detail:     "receiver name required",
		},
	}
	for i := range logs {
		if err := repo.Create(&logs[i]); err != nil {
			t.Fatalf("create audit log %d failed: %v", i, err)
		}
	}

	t.Run("filter by entity", func(t *testing.T) {
		list, total, err := repo.List(AuditLogListFilter{Page: 1, PageSize: 10, EntityType: constants.AuditEntityShipment, EntityID: 10})
		if err != nil {
			t.Fatalf("list by entity failed: %v", err)
		}
		if total != 2 || len(list) != 2 {
			t.Fatalf("expected 2 logs for entity 10, got total=%d len=%d", total, len(list))
		}
		// 最新的在前
		if list[0].Action != constants.AuditActionDeliver {
			t.Fatalf("expected deliver log first, got %s", list[0].Action)
		}
	})

	t.Run("filter by outcome", func(t *testing.T) {
		list, total, err := repo.List(AuditLogListFilter{Page: 1, PageSize: 10, Outcome: constants.AuditOutcomeError})
		if err != nil {
			t.Fatalf("list by outcome failed: %v", err)
		}
		if total != 1 || len(list) != 1 {
			t.Fatalf("expected 1 error log, got total=%d len=%d", total, len(list))
		}
		if list[0].Detail != "receiver name required" {
			t.Fatalf("unexpected detail: %s", list[0].Detail)
		}
	})

	t.Run("filter by actor", func(t *testing.T) {
		list, total, err := repo.List(AuditLogListFilter{Page: 1, PageSize: 10, ActorID: 2})
		if err != nil {
			t.Fatalf("list by actor failed: %v", err)
		}
		if total != 1 || len(list) != 1 {
			t.Fatalf("expected 1 log for actor 2, got total=%d len=%d", total, len(list))
		}
		before, ok := list[0].BeforeJSON["status"].(string)
		if !ok || before != constants.ShipmentStatusInTransit {
			t.Fatalf("expected before status %s, got %v", constants.ShipmentStatusInTransit, list[0].BeforeJSON["status"])
		}
	})
}

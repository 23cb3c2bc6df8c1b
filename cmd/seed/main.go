package main

import (
	"fmt"
	"time"

	"github.com/lonqui-express/internal/config"
	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/logger"
	"github.com/lonqui-express/internal/models"
	"github.com/lonqui-express/internal/repository"
	"github.com/lonqui-express/internal/service"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加演示用户
	hash, err := bcrypt.GenerateFromPassword([]byte("lonqui-dev-123"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash seed password: %v", err)
	}
	users := []models.User{
		{
			Email:        "operador@lonquiexpress.local",
			PasswordHash: string(hash),
			Name:         "María González",
			Phone:        "+56 9 5550 1000",
			Role:         constants.RoleOperator,
			Status:       constants.UserStatusActive,
		},
		{
			Email:        "conductor1@lonquiexpress.local",
			PasswordHash: string(hash),
			Name:         "Pedro Huenchumán",
			Phone:        "+56 9 5550 2000",
			Role:         constants.RoleDriver,
			Status:       constants.UserStatusActive,
		},
		{
			Email:        "conductor2@lonquiexpress.local",
			PasswordHash: string(hash),
			Name:         "Carla Riquelme",
			Phone:        "+56 9 5550 3000",
			Role:         constants.RoleDriver,
			Status:       constants.UserStatusActive,
		},
	}

	userRepo := repository.NewUserRepository(models.DB)
	authSvc := service.NewAuthService(cfg)

	userIDs := map[string]uint{}
	for _, user := range users {
		existing, err := userRepo.GetByEmail(user.Email)
		if err != nil {
			stdLog.Printf("Failed to look up user %s: %v", user.Email, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("User already exists: %s", existing.Email)
			userIDs[existing.Email] = existing.ID
			user.ID = existing.ID
		} else {
			if err := userRepo.Create(&user); err != nil {
				stdLog.Printf("Failed to create user %s: %v", user.Email, err)
				continue
			}
			stdLog.Printf("Created user: %s (%s)", user.Email, user.Role)
			userIDs[user.Email] = user.ID
		}

		// 本地联调直接可用的令牌
		token, expiresAt, err := authSvc.GenerateJWT(&user)
		if err != nil {
			stdLog.Printf("Failed to issue dev token for %s: %v", user.Email, err)
			continue
		}
		stdLog.Printf("Dev token for %s (expires %s): %s", user.Email, expiresAt.Format(time.RFC3339), token)
	}

	operatorID := userIDs["operador@lonquiexpress.local"]
	driverID := userIDs["conductor1@lonquiexpress.local"]
	if operatorID == 0 || driverID == 0 {
		stdLog.Fatalf("Seed users missing, cannot create demo shipments")
	}

	// 添加演示运单
	now := time.Now()
	assignedAt := now.Add(-36 * time.Hour)
	deliveredAt := now.Add(-12 * time.Hour)
	weight := models.NewMoneyFromDecimal(decimal.NewFromFloat(2.5))

	shipments := []struct {
		shipment models.Shipment
		events   []models.TrackingEvent
	}{
		{
			shipment: models.Shipment{
				TrackingCode: "LQX-SEED-PEND01",
				Sender: models.Party{
					Name:    "Ferretería Andina",
					Email:   "ventas@andina.cl",
					Address: "Av. Alemania 0671",
					City:    "Temuco",
				},
				Recipient: models.Party{
					Name:    "Ana Soto",
					Phone:   "+56 9 5550 4000",
					Address: "Calle Prat 120",
					City:    "Villarrica",
				},
				Description:   "Caja de herramientas",
				Weight:        &weight,
				DeclaredValue: models.NewMoneyFromDecimal(decimal.NewFromInt(45000)),
				Status:        constants.ShipmentStatusPending,
				OperatorID:    operatorID,
			},
			events: []models.TrackingEvent{
				{Status: constants.ShipmentStatusPending, Description: "Shipment registered"},
			},
		},
		{
			shipment: models.Shipment{
				TrackingCode: "LQX-SEED-ASGN01",
				Sender: models.Party{
					Name:    "Librería Sur",
					Address: "Manuel Montt 815",
					City:    "Temuco",
				},
				Recipient: models.Party{
					Name:    "Jorge Paillal",
					Address: "Los Copihues 45",
					City:    "Pucón",
				},
				Description:      "Lote de libros escolares",
				DeclaredValue:    models.NewMoneyFromDecimal(decimal.NewFromInt(28000)),
				Status:           constants.ShipmentStatusAssigned,
				OperatorID:       operatorID,
				AssignedDriverID: &driverID,
				AssignedAt:       &assignedAt,
			},
			events: []models.TrackingEvent{
				{Status: constants.ShipmentStatusPending, Description: "Shipment registered"},
				{Status: constants.ShipmentStatusAssigned, Description: "Driver Pedro Huenchumán assigned", DriverID: &driverID},
			},
		},
		{
			shipment: models.Shipment{
				TrackingCode: "LQX-SEED-DELV01",
				Sender: models.Party{
					Name:    "Farmacia Central",
					Address: "Bulnes 351",
					City:    "Temuco",
				},
				Recipient: models.Party{
					Name:    "Rosa Curinao",
					Address: "Camino Labranza km 3",
					City:    "Labranza",
				},
				Description:      "Insumos médicos",
				DeclaredValue:    models.NewMoneyFromDecimal(decimal.NewFromInt(120000)),
				Status:           constants.ShipmentStatusDelivered,
				OperatorID:       operatorID,
				AssignedDriverID: &driverID,
				AssignedAt:       &assignedAt,
				DeliveredAt:      &deliveredAt,
				ReceiverName:     "Rosa Curinao",
			},
			events: []models.TrackingEvent{
				{Status: constants.ShipmentStatusPending, Description: "Shipment registered"},
				{Status: constants.ShipmentStatusAssigned, Description: "Driver Pedro Huenchumán assigned", DriverID: &driverID},
				{Status: constants.ShipmentStatusInTransit, Description: "Package left the depot", DriverID: &driverID},
				{Status: constants.ShipmentStatusDelivered, Description: "Delivered to Rosa Curinao", DriverID: &driverID, ReceiverName: "Rosa Curinao"},
			},
		},
	}

	for _, item := range shipments {
		var existing models.Shipment
		if err := models.DB.Where("tracking_code = ?", item.shipment.TrackingCode).First(&existing).Error; err == nil {
			stdLog.Printf("Shipment already exists: %s", existing.TrackingCode)
			continue
		}
		shipment := item.shipment
		if err := models.DB.Create(&shipment).Error; err != nil {
			stdLog.Printf("Failed to create shipment %s: %v", shipment.TrackingCode, err)
			continue
		}
		for _, event := range item.events {
			event.ShipmentID = shipment.ID
			if err := models.DB.Create(&event).Error; err != nil {
				stdLog.Printf("Failed to create event for %s: %v", shipment.TrackingCode, err)
			}
		}
		stdLog.Printf("Created shipment: %s (%s)", shipment.TrackingCode, shipment.Status)
	}

	fmt.Println("Seed data ready")
}

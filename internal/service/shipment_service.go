package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/lonqui-express/internal/cache"
	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/logger"
	"github.com/lonqui-express/internal/models"
	"github.com/lonqui-express/internal/queue"
	"github.com/lonqui-express/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultCodeRetryAttempts = 5

// 存储事务默认超时，超时回滚不落半截状态
const defaultStoreTimeout = 5 * time.Second

// 追踪码随机段字符集，去掉易混淆的 0/O/1/I
const trackingCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ShipmentService 运单生命周期服务。
// 每个变更操作：输入校验 → 加载 → 归属检查 → 状态检查 → 事务内 CAS 更新并追加流水 →
// 提交后写审计与通知（尽力而为，失败不回滚状态）。
type ShipmentService struct {
	shipmentRepo      repository.ShipmentRepository
	eventRepo         repository.TrackingEventRepository
	userRepo          repository.UserRepository
	auditService      *AuditService
	notifier          *NotificationService
	queueClient       *queue.Client
	codePrefix        string
	codeRetryAttempts int
	storeTimeout      time.Duration
	codeGen           func() string
}

// NewShipmentService 创建运单服务
func NewShipmentService(shipmentRepo repository.ShipmentRepository, eventRepo repository.TrackingEventRepository, userRepo repository.UserRepository, auditService *AuditService, notifier *NotificationService, queueClient *queue.Client, codePrefix string, codeRetryAttempts, storeTimeoutMillis int) *ShipmentService {
	if strings.TrimSpace(codePrefix) == "" {
		codePrefix = "LQ"
	}
	if codeRetryAttempts <= 0 {
		codeRetryAttempts = defaultCodeRetryAttempts
	}
	storeTimeout := defaultStoreTimeout
	if storeTimeoutMillis > 0 {
		storeTimeout = time.Duration(storeTimeoutMillis) * time.Millisecond
	}
	s := &ShipmentService{
		shipmentRepo:      shipmentRepo,
		eventRepo:         eventRepo,
		userRepo:          userRepo,
		auditService:      auditService,
		notifier:          notifier,
		queueClient:       queueClient,
		codePrefix:        strings.ToUpper(strings.TrimSpace(codePrefix)),
		codeRetryAttempts: codeRetryAttempts,
		storeTimeout:      storeTimeout,
	}
	s.codeGen = s.generateTrackingCode
	return s
}

// CreateShipmentInput 创建运单输入
type CreateShipmentInput struct {
	Sender        models.Party
	Recipient     models.Party
	Description   string
	Weight        *decimal.Decimal
	DeclaredValue decimal.Decimal
	RequestID     string
}

// AssignDriverInput 指派司机输入
type AssignDriverInput struct {
	ShipmentID uint
	DriverID   uint
	RequestID  string
}

// MarkInTransitInput 开始运输输入
type MarkInTransitInput struct {
	ShipmentID uint
	Note       string
	Latitude   *float64
	Longitude  *float64
	RequestID  string
}

// MarkDeliveredInput 确认交付输入
type MarkDeliveredInput struct {
	ShipmentID    uint
	ReceiverName  string
	ReceiverTaxID string
	ProofRef      string
	Notes         string
	Latitude      *float64
	Longitude     *float64
	RequestID     string
}

// MarkNotDeliveredInput 交付失败输入
type MarkNotDeliveredInput struct {
	ShipmentID uint
	Reason     string
	Latitude   *float64
	Longitude  *float64
	RequestID  string
}

// CancelShipmentInput 取消运单输入
type CancelShipmentInput struct {
	ShipmentID uint
	Reason     string
	RequestID  string
}

// Create 创建运单并签发追踪码。
// 追踪码在插入时由唯一索引兜底查重，冲突则换码重试，重试次数有界。
func (s *ShipmentService) Create(actor Actor, input CreateShipmentInput) (*models.Shipment, error) {
	if !actor.CanManageShipments() {
		s.auditFailure(actor, constants.AuditActionCreate, 0, nil, input.RequestID, ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	if err := validateParty(input.Sender); err != nil {
		s.auditFailure(actor, constants.AuditActionCreate, 0, nil, input.RequestID, ErrSenderRequired)
		return nil, ErrSenderRequired
	}
	if err := validateParty(input.Recipient); err != nil {
		s.auditFailure(actor, constants.AuditActionCreate, 0, nil, input.RequestID, ErrRecipientRequired)
		return nil, ErrRecipientRequired
	}
	if strings.TrimSpace(input.Description) == "" {
		s.auditFailure(actor, constants.AuditActionCreate, 0, nil, input.RequestID, ErrDescriptionRequired)
		return nil, ErrDescriptionRequired
	}
	if input.DeclaredValue.IsNegative() {
		s.auditFailure(actor, constants.AuditActionCreate, 0, nil, input.RequestID, ErrDeclaredValueInvalid)
		return nil, ErrDeclaredValueInvalid
	}

	var shipment *models.Shipment
	var lastErr error
	for attempt := 0; attempt < s.codeRetryAttempts; attempt++ {
		candidate := &models.Shipment{
			TrackingCode:  s.codeGen(),
			Sender:        trimParty(input.Sender),
			Recipient:     trimParty(input.Recipient),
			Description:   strings.TrimSpace(input.Description),
			DeclaredValue: models.NewMoneyFromDecimal(input.DeclaredValue),
			Status:        constants.ShipmentStatusPending,
			OperatorID:    actor.ID,
		}
		if input.Weight != nil {
			weight := models.NewMoneyFromDecimal(*input.Weight)
			candidate.Weight = &weight
		}

		ctx, cancel := s.storeContext()
		err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.shipmentRepo.WithTx(tx).Create(candidate); err != nil {
				return err
			}
			return s.eventRepo.WithTx(tx).Create(&models.TrackingEvent{
				ShipmentID:  candidate.ID,
				Status:      constants.ShipmentStatusPending,
				Description: "Shipment registered",
			})
		})
		cancel()
		if err == nil {
			shipment = candidate
			break
		}
		lastErr = err
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Warnw("shipment_tracking_code_collision",
				"tracking_code", candidate.TrackingCode,
				"attempt", attempt+1,
			)
			continue
		}
		s.auditFailure(actor, constants.AuditActionCreate, 0, nil, input.RequestID, err)
		return nil, err
	}
	if shipment == nil {
		if lastErr == nil {
			lastErr = ErrTrackingCodeExhausted
		}
		s.auditFailure(actor, constants.AuditActionCreate, 0, nil, input.RequestID, ErrTrackingCodeExhausted)
		return nil, ErrTrackingCodeExhausted
	}

	s.auditService.Record(AuditRecordInput{
		Actor:    actor,
		Action:   constants.AuditActionCreate,
		EntityID: shipment.ID,
		After: models.JSON{
			"status":        shipment.Status,
			"tracking_code": shipment.TrackingCode,
		},
		Outcome:   constants.AuditOutcomeSuccess,
		RequestID: input.RequestID,
	})
	s.notifier.Notify(ShipmentNotifyInput{
		UserID:     actor.ID,
		Kind:       constants.NotificationKindCreated,
		Title:      "Shipment registered",
		Body:       fmt.Sprintf("Shipment %s registered for %s", shipment.TrackingCode, shipment.Recipient.Name),
		ShipmentID: shipment.ID,
	})
	if s.queueClient.Enabled() && strings.TrimSpace(shipment.Sender.Email) != "" {
		if err := s.queueClient.EnqueueShipmentCreatedEmail(queue.ShipmentCreatedEmailPayload{ShipmentID: shipment.ID}); err != nil {
			logger.Warnw("shipment_enqueue_created_email_failed",
				"shipment_id", shipment.ID,
				"error", err,
			)
		}
	}
	return shipment, nil
}

// AssignDriver 指派司机，pending → assigned。
func (s *ShipmentService) AssignDriver(actor Actor, input AssignDriverInput) (*models.Shipment, error) {
	if input.DriverID == 0 {
		s.auditFailure(actor, constants.AuditActionAssign, input.ShipmentID, nil, input.RequestID, ErrDriverRequired)
		return nil, ErrDriverRequired
	}

	shipment, err := s.loadShipment(input.ShipmentID)
	if err != nil {
		s.auditFailure(actor, constants.AuditActionAssign, input.ShipmentID, nil, input.RequestID, err)
		return nil, err
	}
	before := statusJSON(shipment)

	if !actor.CanManageShipments() {
		s.auditFailure(actor, constants.AuditActionAssign, shipment.ID, before, input.RequestID, ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	if !CanTransition(shipment.Status, constants.ShipmentStatusAssigned) {
		s.auditFailure(actor, constants.AuditActionAssign, shipment.ID, before, input.RequestID, ErrInvalidTransition)
		return nil, ErrInvalidTransition
	}

	driver, err := s.userRepo.GetByID(input.DriverID)
	if err != nil {
		s.auditFailure(actor, constants.AuditActionAssign, shipment.ID, before, input.RequestID, err)
		return nil, err
	}
	if driver == nil || driver.Role != constants.RoleDriver || driver.Status != constants.UserStatusActive {
		s.auditFailure(actor, constants.AuditActionAssign, shipment.ID, before, input.RequestID, ErrDriverNotFound)
		return nil, ErrDriverNotFound
	}

	now := time.Now()
	driverID := driver.ID
	err = s.applyTransition(shipment, constants.ShipmentStatusAssigned, map[string]interface{}{
		"assigned_driver_id": driverID,
		"assigned_at":        &now,
	}, &models.TrackingEvent{
		ShipmentID:  shipment.ID,
		Status:      constants.ShipmentStatusAssigned,
		Description: fmt.Sprintf("Driver %s assigned", driver.Name),
		DriverID:    &driverID,
	})
	if err != nil {
		s.auditFailure(actor, constants.AuditActionAssign, shipment.ID, before, input.RequestID, err)
		return nil, err
	}

	shipment.Status = constants.ShipmentStatusAssigned
	shipment.AssignedDriverID = &driverID
	shipment.AssignedAt = &now

	s.auditService.Record(AuditRecordInput{
		Actor:    actor,
		Action:   constants.AuditActionAssign,
		EntityID: shipment.ID,
		Before:   before,
		After: models.JSON{
			"status":    shipment.Status,
			"driver_id": driver.ID,
		},
		Outcome:   constants.AuditOutcomeSuccess,
		RequestID: input.RequestID,
	})
	s.notifier.Notify(ShipmentNotifyInput{
		UserID:     driver.ID,
		Kind:       constants.NotificationKindAssigned,
		Title:      "Shipment assigned",
		Body:       fmt.Sprintf("Shipment %s assigned to you", shipment.TrackingCode),
		ShipmentID: shipment.ID,
	})
	return shipment, nil
}

// MarkInTransit 开始运输，assigned → in_transit。仅被指派司机可操作。
func (s *ShipmentService) MarkInTransit(actor Actor, input MarkInTransitInput) (*models.Shipment, error) {
	shipment, err := s.loadShipment(input.ShipmentID)
	if err != nil {
		s.auditFailure(actor, constants.AuditActionTransit, input.ShipmentID, nil, input.RequestID, err)
		return nil, err
	}
	before := statusJSON(shipment)

	if err := authorizeAssignedDriver(actor, shipment); err != nil {
		s.auditFailure(actor, constants.AuditActionTransit, shipment.ID, before, input.RequestID, err)
		return nil, err
	}
	if shipment.Status != constants.ShipmentStatusAssigned {
		s.auditFailure(actor, constants.AuditActionTransit, shipment.ID, before, input.RequestID, ErrInvalidTransition)
		return nil, ErrInvalidTransition
	}

	description := strings.TrimSpace(input.Note)
	if description == "" {
		description = "Shipment in transit"
	}
	driverID := actor.ID
	err = s.applyTransition(shipment, constants.ShipmentStatusInTransit, nil, &models.TrackingEvent{
		ShipmentID:  shipment.ID,
		Status:      constants.ShipmentStatusInTransit,
		Description: description,
		DriverID:    &driverID,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	})
	if err != nil {
		s.auditFailure(actor, constants.AuditActionTransit, shipment.ID, before, input.RequestID, err)
		return nil, err
	}

	shipment.Status = constants.ShipmentStatusInTransit
	s.auditService.Record(AuditRecordInput{
		Actor:     actor,
		Action:    constants.AuditActionTransit,
		EntityID:  shipment.ID,
		Before:    before,
		After:     models.JSON{"status": shipment.Status},
		Outcome:   constants.AuditOutcomeSuccess,
		RequestID: input.RequestID,
	})
	return shipment, nil
}

// MarkDelivered 确认交付，assigned|in_transit → delivered。
// 签收人姓名是交付凭证的硬性要求，先于任何读取校验，缺失时不产生任何状态或流水变更。
func (s *ShipmentService) MarkDelivered(actor Actor, input MarkDeliveredInput) (*models.Shipment, error) {
	receiverName := strings.TrimSpace(input.ReceiverName)
	if receiverName == "" {
		s.auditFailure(actor, constants.AuditActionDeliver, input.ShipmentID, nil, input.RequestID, ErrReceiverNameRequired)
		return nil, ErrReceiverNameRequired
	}

	shipment, err := s.loadShipment(input.ShipmentID)
	if err != nil {
		s.auditFailure(actor, constants.AuditActionDeliver, input.ShipmentID, nil, input.RequestID, err)
		return nil, err
	}
	before := statusJSON(shipment)

	if err := authorizeAssignedDriver(actor, shipment); err != nil {
		s.auditFailure(actor, constants.AuditActionDeliver, shipment.ID, before, input.RequestID, err)
		return nil, err
	}
	if !CanTransition(shipment.Status, constants.ShipmentStatusDelivered) {
		s.auditFailure(actor, constants.AuditActionDeliver, shipment.ID, before, input.RequestID, ErrInvalidTransition)
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	driverID := actor.ID
	receiverTaxID := strings.TrimSpace(input.ReceiverTaxID)
	proofRef := strings.TrimSpace(input.ProofRef)
	notes := strings.TrimSpace(input.Notes)
	err = s.applyTransition(shipment, constants.ShipmentStatusDelivered, map[string]interface{}{
		"delivered_at":    &now,
		"receiver_name":   receiverName,
		"receiver_tax_id": receiverTaxID,
		"proof_ref":       proofRef,
		"notes":           notes,
	}, &models.TrackingEvent{
		ShipmentID:    shipment.ID,
		Status:        constants.ShipmentStatusDelivered,
		Description:   fmt.Sprintf("Delivered to %s", receiverName),
		DriverID:      &driverID,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		ReceiverName:  receiverName,
		ReceiverTaxID: receiverTaxID,
		ProofRef:      proofRef,
		Notes:         notes,
	})
	if err != nil {
		s.auditFailure(actor, constants.AuditActionDeliver, shipment.ID, before, input.RequestID, err)
		return nil, err
	}

	shipment.Status = constants.ShipmentStatusDelivered
	shipment.DeliveredAt = &now
	shipment.ReceiverName = receiverName
	shipment.ReceiverTaxID = receiverTaxID
	shipment.ProofRef = proofRef
	shipment.Notes = notes

	s.auditService.Record(AuditRecordInput{
		Actor:    actor,
		Action:   constants.AuditActionDeliver,
		EntityID: shipment.ID,
		Before:   before,
		After: models.JSON{
			"status":        shipment.Status,
			"receiver_name": receiverName,
		},
		Outcome:   constants.AuditOutcomeSuccess,
		RequestID: input.RequestID,
	})
	s.notifier.Notify(ShipmentNotifyInput{
		UserID:     shipment.OperatorID,
		Kind:       constants.NotificationKindDelivered,
		Title:      "Shipment delivered",
		Body:       fmt.Sprintf("Shipment %s delivered to %s", shipment.TrackingCode, receiverName),
		ShipmentID: shipment.ID,
	})
	return shipment, nil
}

// MarkNotDelivered 交付失败，assigned|in_transit → not_delivered，原因必填且先于任何读取校验。
func (s *ShipmentService) MarkNotDelivered(actor Actor, input MarkNotDeliveredInput) (*models.Shipment, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		s.auditFailure(actor, constants.AuditActionNotDelivered, input.ShipmentID, nil, input.RequestID, ErrReasonRequired)
		return nil, ErrReasonRequired
	}

	shipment, err := s.loadShipment(input.ShipmentID)
	if err != nil {
		s.auditFailure(actor, constants.AuditActionNotDelivered, input.ShipmentID, nil, input.RequestID, err)
		return nil, err
	}
	before := statusJSON(shipment)

	if err := authorizeAssignedDriver(actor, shipment); err != nil {
		s.auditFailure(actor, constants.AuditActionNotDelivered, shipment.ID, before, input.RequestID, err)
		return nil, err
	}
	if !CanTransition(shipment.Status, constants.ShipmentStatusNotDelivered) {
		s.auditFailure(actor, constants.AuditActionNotDelivered, shipment.ID, before, input.RequestID, ErrInvalidTransition)
		return nil, ErrInvalidTransition
	}

	driverID := actor.ID
	err = s.applyTransition(shipment, constants.ShipmentStatusNotDelivered, nil, &models.TrackingEvent{
		ShipmentID:  shipment.ID,
		Status:      constants.ShipmentStatusNotDelivered,
		Description: reason,
		DriverID:    &driverID,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	})
	if err != nil {
		s.auditFailure(actor, constants.AuditActionNotDelivered, shipment.ID, before, input.RequestID, err)
		return nil, err
	}

	shipment.Status = constants.ShipmentStatusNotDelivered
	s.auditService.Record(AuditRecordInput{
		Actor:    actor,
		Action:   constants.AuditActionNotDelivered,
		EntityID: shipment.ID,
		Before:   before,
		After: models.JSON{
			"status": shipment.Status,
			"reason": reason,
		},
		Outcome:   constants.AuditOutcomeSuccess,
		RequestID: input.RequestID,
	})
	return shipment, nil
}

// Cancel 取消运单，pending|assigned → cancelled。
func (s *ShipmentService) Cancel(actor Actor, input CancelShipmentInput) (*models.Shipment, error) {
	shipment, err := s.loadShipment(input.ShipmentID)
	if err != nil {
		s.auditFailure(actor, constants.AuditActionCancel, input.ShipmentID, nil, input.RequestID, err)
		return nil, err
	}
	before := statusJSON(shipment)

	if !actor.CanManageShipments() {
		s.auditFailure(actor, constants.AuditActionCancel, shipment.ID, before, input.RequestID, ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	if !CanTransition(shipment.Status, constants.ShipmentStatusCancelled) {
		s.auditFailure(actor, constants.AuditActionCancel, shipment.ID, before, input.RequestID, ErrInvalidTransition)
		return nil, ErrInvalidTransition
	}

	description := strings.TrimSpace(input.Reason)
	if description == "" {
		description = "Shipment cancelled"
	}
	err = s.applyTransition(shipment, constants.ShipmentStatusCancelled, nil, &models.TrackingEvent{
		ShipmentID:  shipment.ID,
		Status:      constants.ShipmentStatusCancelled,
		Description: description,
	})
	if err != nil {
		s.auditFailure(actor, constants.AuditActionCancel, shipment.ID, before, input.RequestID, err)
		return nil, err
	}

	shipment.Status = constants.ShipmentStatusCancelled
	s.auditService.Record(AuditRecordInput{
		Actor:     actor,
		Action:    constants.AuditActionCancel,
		EntityID:  shipment.ID,
		Before:    before,
		After:     models.JSON{"status": shipment.Status},
		Outcome:   constants.AuditOutcomeSuccess,
		RequestID: input.RequestID,
	})
	return shipment, nil
}

// storeContext 存储事务上下文，超时后 gorm 取消语句并回滚
func (s *ShipmentService) storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.storeTimeout)
}

// applyTransition 在同一事务内执行状态 CAS 更新并追加追踪流水。
// CAS 未命中说明并发竞争失败，以 ErrConflict 上抛，流水不落地。
func (s *ShipmentService) applyTransition(shipment *models.Shipment, toStatus string, updates map[string]interface{}, event *models.TrackingEvent) error {
	fromStatus := shipment.Status
	ctx, cancel := s.storeContext()
	defer cancel()
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hit, err := s.shipmentRepo.WithTx(tx).UpdateStatusFrom(shipment.ID, fromStatus, toStatus, updates)
		if err != nil {
			return err
		}
		if !hit {
			return ErrConflict
		}
		return s.eventRepo.WithTx(tx).Create(event)
	})
	if err != nil {
		return err
	}

	// 状态已变，作废公开快照缓存，失败仅降级为等待 TTL 过期
	if cache.Enabled() {
		if err := cache.Del(context.Background(), snapshotCacheKey(shipment.TrackingCode)); err != nil {
			logger.Warnw("tracking_snapshot_cache_invalidate_failed", "tracking_code", shipment.TrackingCode, "error", err)
		}
	}
	return nil
}

func (s *ShipmentService) loadShipment(id uint) (*models.Shipment, error) {
	if id == 0 {
		return nil, ErrShipmentRefRequired
	}
	shipment, err := s.shipmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

func (s *ShipmentService) auditFailure(actor Actor, action string, entityID uint, before models.JSON, requestID string, cause error) {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	s.auditService.Record(AuditRecordInput{
		Actor:     actor,
		Action:    action,
		EntityID:  entityID,
		Before:    before,
		Outcome:   constants.AuditOutcomeError,
		Detail:    detail,
		RequestID: requestID,
	})
}

func (s *ShipmentService) generateTrackingCode() string {
	datePart := time.Now().Format("20060102")
	return fmt.Sprintf("%s-%s-%s", s.codePrefix, datePart, randAlphanumeric(6))
}

// authorizeAssignedDriver 司机操作的归属检查，先于状态检查执行。
func authorizeAssignedDriver(actor Actor, shipment *models.Shipment) error {
	if !actor.IsDriver() {
		return ErrUnauthorized
	}
	if shipment.AssignedDriverID == nil || *shipment.AssignedDriverID != actor.ID {
		return ErrUnauthorized
	}
	return nil
}

func validateParty(party models.Party) error {
	if strings.TrimSpace(party.Name) == "" ||
		strings.TrimSpace(party.Address) == "" ||
		strings.TrimSpace(party.City) == "" {
		return errors.New("party incomplete")
	}
	return nil
}

func trimParty(party models.Party) models.Party {
	party.Name = strings.TrimSpace(party.Name)
	party.Phone = strings.TrimSpace(party.Phone)
	party.Email = strings.TrimSpace(party.Email)
	party.Address = strings.TrimSpace(party.Address)
	party.City = strings.TrimSpace(party.City)
	party.TaxID = strings.TrimSpace(party.TaxID)
	return party
}

func statusJSON(shipment *models.Shipment) models.JSON {
	if shipment == nil {
		return nil
	}
	return models.JSON{"status": shipment.Status}
}

func randAlphanumeric(length int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(trackingCodeCharset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(trackingCodeCharset[0])
			continue
		}
		b.WriteByte(trackingCodeCharset[n.Int64()])
	}
	return b.String()
}

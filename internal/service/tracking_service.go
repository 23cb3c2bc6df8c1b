package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lonqui-express/internal/cache"
	"github.com/lonqui-express/internal/logger"
	"github.com/lonqui-express/internal/models"
	"github.com/lonqui-express/internal/repository"
)

// PublicTrackingEvent 公开查询的单条轨迹
type PublicTrackingEvent struct {
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublicTrackingSnapshot 公开查询快照（匿名可见，不含内部主体信息）
type PublicTrackingSnapshot struct {
	TrackingCode    string                `json:"tracking_code"`
	Status          string                `json:"status"`
	ProgressPercent int                   `json:"progress_percent"`
	RecipientCity   string                `json:"recipient_city"`
	UpdateCount     int                   `json:"update_count"`
	CreatedAt       time.Time             `json:"created_at"`
	DeliveredAt     *time.Time            `json:"delivered_at,omitempty"`
	Events          []PublicTrackingEvent `json:"events"`
}

// TrackingService 追踪流水查询服务
type TrackingService struct {
	shipmentRepo repository.ShipmentRepository
	eventRepo    repository.TrackingEventRepository
	snapshotTTL  time.Duration
}

// NewTrackingService 创建追踪查询服务
func NewTrackingService(shipmentRepo repository.ShipmentRepository, eventRepo repository.TrackingEventRepository, snapshotTTLSeconds int) *TrackingService {
	ttl := time.Duration(snapshotTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &TrackingService{
		shipmentRepo: shipmentRepo,
		eventRepo:    eventRepo,
		snapshotTTL:  ttl,
	}
}

// History 查询运单完整流水（升序），带角色范围检查。
func (s *TrackingService) History(actor Actor, shipmentID uint) ([]models.TrackingEvent, error) {
	shipment, err := s.loadShipment(shipmentID)
	if err != nil {
		return nil, err
	}
	if err := authorizeShipmentRead(actor, shipment); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByShipment(shipment.ID)
}

// HistoryCount 查询运单流水条数
func (s *TrackingService) HistoryCount(actor Actor, shipmentID uint) (int64, error) {
	shipment, err := s.loadShipment(shipmentID)
	if err != nil {
		return 0, err
	}
	if err := authorizeShipmentRead(actor, shipment); err != nil {
		return 0, err
	}
	return s.eventRepo.CountByShipment(shipment.ID)
}

// PublicSnapshot 匿名追踪码查询。快照短暂缓存以抵御公开端点的重复查询。
func (s *TrackingService) PublicSnapshot(ctx context.Context, trackingCode string) (*PublicTrackingSnapshot, error) {
	trackingCode = strings.ToUpper(strings.TrimSpace(trackingCode))
	if trackingCode == "" {
		return nil, ErrShipmentRefRequired
	}

	cacheKey := snapshotCacheKey(trackingCode)
	if cache.Enabled() {
		var cached PublicTrackingSnapshot
		hit, err := cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warnw("tracking_snapshot_cache_read_failed", "tracking_code", trackingCode, "error", err)
		}
		if hit {
			return &cached, nil
		}
	}

	shipment, err := s.shipmentRepo.GetByTrackingCode(trackingCode)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	events, err := s.eventRepo.ListByShipment(shipment.ID)
	if err != nil {
		return nil, err
	}

	snapshot := &PublicTrackingSnapshot{
		TrackingCode:    shipment.TrackingCode,
		Status:          shipment.Status,
		ProgressPercent: StatusProgressPercent(shipment.Status),
		RecipientCity:   shipment.Recipient.City,
		UpdateCount:     len(events),
		CreatedAt:       shipment.CreatedAt,
		DeliveredAt:     shipment.DeliveredAt,
		Events:          make([]PublicTrackingEvent, 0, len(events)),
	}
	for _, event := range events {
		snapshot.Events = append(snapshot.Events, PublicTrackingEvent{
			Status:      event.Status,
			Description: event.Description,
			CreatedAt:   event.CreatedAt,
		})
	}

	if cache.Enabled() {
		if err := cache.SetJSON(ctx, cacheKey, snapshot, s.snapshotTTL); err != nil {
			logger.Warnw("tracking_snapshot_cache_write_failed", "tracking_code", trackingCode, "error", err)
		}
	}
	return snapshot, nil
}

// snapshotCacheKey 公开快照缓存键，状态变更时据此失效。
func snapshotCacheKey(trackingCode string) string {
	return fmt.Sprintf("tracking:snapshot:%s", trackingCode)
}

func (s *TrackingService) loadShipment(id uint) (*models.Shipment, error) {
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

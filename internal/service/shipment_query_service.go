package service

import (
	"strconv"
	"strings"

	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/models"
	"github.com/lonqui-express/internal/repository"
)

// ShipmentStats 运单全局统计
type ShipmentStats struct {
	Total              int64            `json:"total"`
	ByStatus           map[string]int64 `json:"by_status"`
	DeliveryRate       float64          `json:"delivery_rate"`
	AvgDeliverySeconds float64          `json:"avg_delivery_seconds"`
	DeliveredCount     int64            `json:"delivered_count"`
	ClosedCount        int64            `json:"closed_count"`
}

// ShipmentQueryService 运单查询服务
type ShipmentQueryService struct {
	shipmentRepo repository.ShipmentRepository
}

// NewShipmentQueryService 创建运单查询服务
func NewShipmentQueryService(shipmentRepo repository.ShipmentRepository) *ShipmentQueryService {
	return &ShipmentQueryService{shipmentRepo: shipmentRepo}
}

// GetByIDOrCode 按主键查询运单，未命中或非数字时回退到追踪码。
func (s *ShipmentQueryService) GetByIDOrCode(actor Actor, ref string) (*models.Shipment, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrShipmentRefRequired
	}

	var shipment *models.Shipment
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil && id > 0 {
		found, err := s.shipmentRepo.GetByID(uint(id))
		if err != nil {
			return nil, err
		}
		shipment = found
	}
	if shipment == nil {
		found, err := s.shipmentRepo.GetByTrackingCode(ref)
		if err != nil {
			return nil, err
		}
		shipment = found
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	if err := authorizeShipmentRead(actor, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

// List 查询运单列表。司机视角强制收窄到本人名下的运单。
func (s *ShipmentQueryService) List(actor Actor, filter repository.ShipmentListFilter) ([]models.Shipment, int64, error) {
	if actor.IsDriver() {
		filter.DriverID = actor.ID
	} else if !actor.CanManageShipments() {
		return nil, 0, ErrUnauthorized
	}
	return s.shipmentRepo.List(filter)
}

// Stats 全局统计。空库时交付率定义为 0。
func (s *ShipmentQueryService) Stats(actor Actor) (*ShipmentStats, error) {
	if !actor.CanManageShipments() {
		return nil, ErrUnauthorized
	}

	counts, total, err := s.shipmentRepo.StatusCounts(repository.ShipmentListFilter{})
	if err != nil {
		return nil, err
	}
	avgSeconds, err := s.shipmentRepo.AvgDeliverySeconds(repository.ShipmentListFilter{})
	if err != nil {
		return nil, err
	}

	for _, status := range []string{
		constants.ShipmentStatusPending,
		constants.ShipmentStatusAssigned,
		constants.ShipmentStatusInTransit,
		constants.ShipmentStatusDelivered,
		constants.ShipmentStatusNotDelivered,
		constants.ShipmentStatusCancelled,
	} {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}

	delivered := counts[constants.ShipmentStatusDelivered]
	closed := delivered + counts[constants.ShipmentStatusNotDelivered] + counts[constants.ShipmentStatusCancelled]
	// 交付率 = 已交付 / 全部运单 × 100，在途运单同样计入分母
	rate := 0.0
	if total > 0 {
		rate = float64(delivered) / float64(total) * 100
	}

	return &ShipmentStats{
		Total:              total,
		ByStatus:           counts,
		DeliveryRate:       rate,
		AvgDeliverySeconds: avgSeconds,
		DeliveredCount:     delivered,
		ClosedCount:        closed,
	}, nil
}

// authorizeShipmentRead 单票读取的角色范围：运营/管理员全量，司机仅限本人名下。
func authorizeShipmentRead(actor Actor, shipment *models.Shipment) error {
	if actor.CanManageShipments() {
		return nil
	}
	if actor.IsDriver() && shipment.AssignedDriverID != nil && *shipment.AssignedDriverID == actor.ID {
		return nil
	}
	return ErrUnauthorized
}

package repository

import (
	"errors"
	"strings"

	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/models"

	"gorm.io/gorm"
)

// ShipmentRepository 运单数据访问接口
type ShipmentRepository interface {
	Create(shipment *models.Shipment) error
	GetByID(id uint) (*models.Shipment, error)
	GetByTrackingCode(code string) (*models.Shipment, error)
	List(filter ShipmentListFilter) ([]models.Shipment, int64, error)
	UpdateStatusFrom(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error)
	StatusCounts(filter ShipmentListFilter) (map[string]int64, int64, error)
	AvgDeliverySeconds(filter ShipmentListFilter) (float64, error)
	WithTx(tx *gorm.DB) *GormShipmentRepository
}

// GormShipmentRepository GORM 实现
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建运单仓库
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentRepository{db: tx}
}

// Create 创建运单。追踪码唯一索引冲突通过 gorm.ErrDuplicatedKey 上抛，由调用方换码重试。
func (r *GormShipmentRepository) Create(shipment *models.Shipment) error {
	if shipment == nil {
		return nil
	}
	return r.db.Create(shipment).Error
}

// GetByID 根据 ID 获取运单
func (r *GormShipmentRepository) GetByID(id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.First(&shipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// GetByTrackingCode 根据追踪码获取运单
func (r *GormShipmentRepository) GetByTrackingCode(code string) (*models.Shipment, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var shipment models.Shipment
	if err := r.db.Where("tracking_code = ?", code).First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// List 查询运单列表
func (r *GormShipmentRepository) List(filter ShipmentListFilter) ([]models.Shipment, int64, error) {
	query := r.applyListFilter(r.db.Model(&models.Shipment{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	shipments := make([]models.Shipment, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&shipments).Error; err != nil {
		return nil, 0, err
	}
	return shipments, total, nil
}

// UpdateStatusFrom 条件更新运单状态（乐观并发控制）。
// 仅当当前状态仍为 fromStatus 时更新生效；返回是否命中，未命中表示并发竞争失败。
func (r *GormShipmentRepository) UpdateStatusFrom(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus
	result := r.db.Model(&models.Shipment{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// StatusCounts 按状态统计运单数量，返回各状态计数与总数。
func (r *GormShipmentRepository) StatusCounts(filter ShipmentListFilter) (map[string]int64, int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	query := r.applyListFilter(r.db.Model(&models.Shipment{}), ShipmentListFilter{
		DriverID:    filter.DriverID,
		OperatorID:  filter.OperatorID,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
	})

	rows := make([]statusCount, 0)
	if err := query.Select("status, COUNT(*) AS count").Group("status").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	counts := make(map[string]int64, len(rows))
	var total int64
	for _, row := range rows {
		counts[row.Status] = row.Count
		total += row.Count
	}
	return counts, total, nil
}

// AvgDeliverySeconds 已交付运单从创建到交付的平均耗时（秒），无样本时返回 0。
func (r *GormShipmentRepository) AvgDeliverySeconds(filter ShipmentListFilter) (float64, error) {
	query := r.applyListFilter(r.db.Model(&models.Shipment{}), ShipmentListFilter{
		DriverID:    filter.DriverID,
		OperatorID:  filter.OperatorID,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
	})

	var avg *float64
	err := query.
		Where("status = ?", constants.ShipmentStatusDelivered).
		Where("delivered_at IS NOT NULL").
		Select("AVG(" + deliverySecondsExpr(r.db) + ")").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *GormShipmentRepository) applyListFilter(query *gorm.DB, filter ShipmentListFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if code := strings.TrimSpace(filter.TrackingCode); code != "" {
		query = query.Where("tracking_code LIKE ?", "%"+code+"%")
	}
	if filter.DriverID != 0 {
		query = query.Where("assigned_driver_id = ?", filter.DriverID)
	}
	if filter.OperatorID != 0 {
		query = query.Where("operator_id = ?", filter.OperatorID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}

package repository

import (
	"github.com/lonqui-express/internal/models"

	"gorm.io/gorm"
)

// TrackingEventRepository 追踪事件数据访问接口。
// 事件账本只追加，不提供更新与删除方法。
type TrackingEventRepository interface {
	Create(event *models.TrackingEvent) error
	ListByShipment(shipmentID uint) ([]models.TrackingEvent, error)
	CountByShipment(shipmentID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormTrackingEventRepository
}

// GormTrackingEventRepository GORM 实现
type GormTrackingEventRepository struct {
	db *gorm.DB
}

// NewTrackingEventRepository 创建追踪事件仓库
func NewTrackingEventRepository(db *gorm.DB) *GormTrackingEventRepository {
	return &GormTrackingEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTrackingEventRepository) WithTx(tx *gorm.DB) *GormTrackingEventRepository {
	if tx == nil {
		return r
	}
	return &GormTrackingEventRepository{db: tx}
}

// Create 追加一条追踪事件
func (r *GormTrackingEventRepository) Create(event *models.TrackingEvent) error {
	if event == nil {
		return nil
	}
	return r.db.Create(event).Error
}

// ListByShipment 按时间升序返回运单的全部追踪事件
func (r *GormTrackingEventRepository) ListByShipment(shipmentID uint) ([]models.TrackingEvent, error) {
	events := make([]models.TrackingEvent, 0)
	if err := r.db.Where("shipment_id = ?", shipmentID).
		Order("created_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountByShipment 统计运单的追踪事件数量
func (r *GormTrackingEventRepository) CountByShipment(shipmentID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.TrackingEvent{}).
		Where("shipment_id = ?", shipmentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

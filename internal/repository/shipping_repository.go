package repository

import (
	"errors"

	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// ShippingRepository 配送信息数据访问接口
type ShippingRepository interface {
	Create(info *models.ShippingInfo) error
	GetByOrderID(orderID uint) (*models.ShippingInfo, error)
	Update(info *models.ShippingInfo) error
	WithTx(tx *gorm.DB) *GormShippingRepository
}

// GormShippingRepository GORM 实现
type GormShippingRepository struct {
	db *gorm.DB
}

// NewShippingRepository 创建配送信息仓库
func NewShippingRepository(db *gorm.DB) *GormShippingRepository {
	return &GormShippingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShippingRepository) WithTx(tx *gorm.DB) *GormShippingRepository {
	if tx == nil {
		return r
	}
	return &GormShippingRepository{db: tx}
}

// Create 创建配送信息
func (r *GormShippingRepository) Create(info *models.ShippingInfo) error {
	return r.db.Create(info).Error
}

// GetByOrderID 根据订单 ID 获取配送信息
func (r *GormShippingRepository) GetByOrderID(orderID uint) (*models.ShippingInfo, error) {
	var info models.ShippingInfo
	if err := r.db.Where("order_id = ?", orderID).First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

// Update 保存配送信息
func (r *GormShippingRepository) Update(info *models.ShippingInfo) error {
	return r.db.Save(info).Error
}

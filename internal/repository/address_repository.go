package repository

import (
	"errors"

	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// AddressRepository 收货地址数据访问接口
type AddressRepository interface {
	Create(address *models.Address) error
	GetByIDAndCustomer(id, customerID uint) (*models.Address, error)
	ListByCustomer(customerID uint) ([]models.Address, error)
	Update(address *models.Address) error
	Delete(id, customerID uint) error
	UnsetDefault(customerID uint) error
	SetDefault(id, customerID uint) error
	WithTx(tx *gorm.DB) *GormAddressRepository
}

// GormAddressRepository GORM 实现
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓库
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAddressRepository) WithTx(tx *gorm.DB) *GormAddressRepository {
	if tx == nil {
		return r
	}
	return &GormAddressRepository{db: tx}
}

// Create 创建地址
func (r *GormAddressRepository) Create(address *models.Address) error {
	return r.db.Create(address).Error
}

// GetByIDAndCustomer 获取顾客名下地址
func (r *GormAddressRepository) GetByIDAndCustomer(id, customerID uint) (*models.Address, error) {
	var address models.Address
	if err := r.db.Where("id = ? AND customer_id = ?", id, customerID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// ListByCustomer 获取顾客地址列表
func (r *GormAddressRepository) ListByCustomer(customerID uint) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("customer_id = ?", customerID).
		Order("is_default desc, id desc").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// Update 保存地址
func (r *GormAddressRepository) Update(address *models.Address) error {
	return r.db.Save(address).Error
}

// Delete 删除顾客名下地址
func (r *GormAddressRepository) Delete(id, customerID uint) error {
	return r.db.Where("id = ? AND customer_id = ?", id, customerID).Delete(&models.Address{}).Error
}

// UnsetDefault 取消顾客当前默认地址
func (r *GormAddressRepository) UnsetDefault(customerID uint) error {
	return r.db.Model(&models.Address{}).
		Where("customer_id = ? AND is_default = ?", customerID, true).
		Update("is_default", false).Error
}

// SetDefault 设置默认地址
func (r *GormAddressRepository) SetDefault(id, customerID uint) error {
	return r.db.Model(&models.Address{}).
		Where("id = ? AND customer_id = ?", id, customerID).
		Update("is_default", true).Error
}

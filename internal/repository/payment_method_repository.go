package repository

import (
	"errors"

	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// PaymentMethodRepository 顾客收款方式数据访问接口
type PaymentMethodRepository interface {
	Create(method *models.PaymentMethod) error
	GetByIDAndCustomer(id, customerID uint) (*models.PaymentMethod, error)
	ListByCustomer(customerID uint) ([]models.PaymentMethod, error)
	Delete(id, customerID uint) error
	UnsetDefault(customerID uint) error
	SetDefault(id, customerID uint) error
	WithTx(tx *gorm.DB) *GormPaymentMethodRepository
}

// GormPaymentMethodRepository GORM 实现
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository 创建收款方式仓库
func NewPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentMethodRepository) WithTx(tx *gorm.DB) *GormPaymentMethodRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentMethodRepository{db: tx}
}

// Create 创建收款方式
func (r *GormPaymentMethodRepository) Create(method *models.PaymentMethod) error {
	return r.db.Create(method).Error
}

// GetByIDAndCustomer 获取顾客名下收款方式
func (r *GormPaymentMethodRepository) GetByIDAndCustomer(id, customerID uint) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.Where("id = ? AND customer_id = ?", id, customerID).First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// ListByCustomer 获取顾客收款方式列表
func (r *GormPaymentMethodRepository) ListByCustomer(customerID uint) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.db.Where("customer_id = ?", customerID).
		Order("is_default desc, id desc").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// Delete 删除顾客名下收款方式
func (r *GormPaymentMethodRepository) Delete(id, customerID uint) error {
	return r.db.Where("id = ? AND customer_id = ?", id, customerID).
		Delete(&models.PaymentMethod{}).Error
}

// UnsetDefault 取消当前默认收款方式
func (r *GormPaymentMethodRepository) UnsetDefault(customerID uint) error {
	return r.db.Model(&models.PaymentMethod{}).
		Where("customer_id = ? AND is_default = ?", customerID, true).
		Update("is_default", false).Error
}

// SetDefault 设置默认收款方式
func (r *GormPaymentMethodRepository) SetDefault(id, customerID uint) error {
	return r.db.Model(&models.PaymentMethod{}).
		Where("id = ? AND customer_id = ?", id, customerID).
		Update("is_default", true).Error
}

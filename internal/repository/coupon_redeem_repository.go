package repository

import (
	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// CouponRedeemRepository 优惠券核销记录数据访问接口
type CouponRedeemRepository interface {
	Create(redeem *models.CouponRedeem) error
	CountByCustomer(couponID, customerID uint) (int64, error)
	ListByOrderID(orderID uint) ([]models.CouponRedeem, error)
	ListByCustomer(filter CouponRedeemListFilter) ([]models.CouponRedeem, int64, error)
	DeleteByOrderID(orderID uint) error
	WithTx(tx *gorm.DB) *GormCouponRedeemRepository
}

// GormCouponRedeemRepository GORM 实现
type GormCouponRedeemRepository struct {
	db *gorm.DB
}

// NewCouponRedeemRepository 创建优惠券核销记录仓库
func NewCouponRedeemRepository(db *gorm.DB) *GormCouponRedeemRepository {
	return &GormCouponRedeemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRedeemRepository) WithTx(tx *gorm.DB) *GormCouponRedeemRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRedeemRepository{db: tx}
}

// Create 创建核销记录
func (r *GormCouponRedeemRepository) Create(redeem *models.CouponRedeem) error {
	return r.db.Create(redeem).Error
}

// CountByCustomer 获取顾客对某券的核销次数
func (r *GormCouponRedeemRepository) CountByCustomer(couponID, customerID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.CouponRedeem{}).
		Where("coupon_id = ? AND customer_id = ?", couponID, customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByOrderID 获取订单核销记录
func (r *GormCouponRedeemRepository) ListByOrderID(orderID uint) ([]models.CouponRedeem, error) {
	var redeems []models.CouponRedeem
	if err := r.db.Where("order_id = ?", orderID).Find(&redeems).Error; err != nil {
		return nil, err
	}
	return redeems, nil
}

// ListByCustomer 获取顾客核销记录
func (r *GormCouponRedeemRepository) ListByCustomer(filter CouponRedeemListFilter) ([]models.CouponRedeem, int64, error) {
	query := r.db.Model(&models.CouponRedeem{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.CouponID != 0 {
		query = query.Where("coupon_id = ?", filter.CouponID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var redeems []models.CouponRedeem
	if err := query.Order("id desc").Find(&redeems).Error; err != nil {
		return nil, 0, err
	}
	return redeems, total, nil
}

// DeleteByOrderID 删除订单核销记录
func (r *GormCouponRedeemRepository) DeleteByOrderID(orderID uint) error {
	return r.db.Where("order_id = ?", orderID).Delete(&models.CouponRedeem{}).Error
}

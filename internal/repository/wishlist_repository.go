package repository

import (
	"errors"

	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// WishlistRepository 心愿单数据访问接口
type WishlistRepository interface {
	GetByCustomer(customerID uint) (*models.Wishlist, error)
	Create(wishlist *models.Wishlist) error
	HasItem(wishlistID, productID uint) (bool, error)
	AddItem(item *models.WishlistItem) error
	RemoveItem(wishlistID, productID uint) error
	WithTx(tx *gorm.DB) *GormWishlistRepository
}

// GormWishlistRepository GORM 实现
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository 创建心愿单仓库
func NewWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWishlistRepository) WithTx(tx *gorm.DB) *GormWishlistRepository {
	if tx == nil {
		return r
	}
	return &GormWishlistRepository{db: tx}
}

// GetByCustomer 获取顾客心愿单（含商品）
func (r *GormWishlistRepository) GetByCustomer(customerID uint) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := r.db.Preload("Items").Preload("Items.Product").
		Where("customer_id = ?", customerID).
		First(&wishlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// Create 创建心愿单
func (r *GormWishlistRepository) Create(wishlist *models.Wishlist) error {
	return r.db.Create(wishlist).Error
}

// HasItem 判断商品是否已在心愿单
func (r *GormWishlistRepository) HasItem(wishlistID, productID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddItem 添加心愿单项
func (r *GormWishlistRepository) AddItem(item *models.WishlistItem) error {
	return r.db.Create(item).Error
}

// RemoveItem 移除心愿单项
func (r *GormWishlistRepository) RemoveItem(wishlistID, productID uint) error {
	return r.db.Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&models.WishlistItem{}).Error
}

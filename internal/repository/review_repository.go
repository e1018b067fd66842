package repository

import (
	"errors"

	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// RatingStats 商品评分汇总（直方图下标 0..4 对应 1..5 星）
type RatingStats struct {
	Count     int64    `json:"count"`
	Average   float64  `json:"average"`
	Histogram [5]int64 `json:"histogram" gorm:"-"`
}

// ReviewRepository 评价数据访问接口
type ReviewRepository interface {
	GetByCustomerAndProduct(customerID, productID uint) (*models.Review, error)
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(id, customerID uint) error
	ListByProduct(filter ReviewListFilter) ([]models.Review, int64, error)
	StatsByProduct(productID uint) (*RatingStats, error)
	WithTx(tx *gorm.DB) *GormReviewRepository
}

// GormReviewRepository GORM 实现
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReviewRepository) WithTx(tx *gorm.DB) *GormReviewRepository {
	if tx == nil {
		return r
	}
	return &GormReviewRepository{db: tx}
}

// GetByCustomerAndProduct 获取顾客对商品的评价
func (r *GormReviewRepository) GetByCustomerAndProduct(customerID, productID uint) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("customer_id = ? AND product_id = ?", customerID, productID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Create 创建评价
func (r *GormReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// Update 保存评价
func (r *GormReviewRepository) Update(review *models.Review) error {
	return r.db.Save(review).Error
}

// Delete 删除顾客名下评价
func (r *GormReviewRepository) Delete(id, customerID uint) error {
	return r.db.Where("id = ? AND customer_id = ?", id, customerID).Delete(&models.Review{}).Error
}

// ListByProduct 商品评价列表
func (r *GormReviewRepository) ListByProduct(filter ReviewListFilter) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{}).Where("product_id = ?", filter.ProductID)
	if filter.MinRating > 0 {
		query = query.Where("rating >= ?", filter.MinRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var reviews []models.Review
	if err := query.Order("id desc").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// StatsByProduct 商品评分汇总
func (r *GormReviewRepository) StatsByProduct(productID uint) (*RatingStats, error) {
	var stats RatingStats
	if err := r.db.Model(&models.Review{}).
		Select("COUNT(*) as count, COALESCE(AVG(rating), 0) as average").
		Where("product_id = ? AND deleted_at IS NULL", productID).
		Scan(&stats).Error; err != nil {
		return nil, err
	}

	var buckets []struct {
		Rating int
		Total  int64
	}
	if err := r.db.Model(&models.Review{}).
		Select("rating, COUNT(*) as total").
		Where("product_id = ? AND deleted_at IS NULL", productID).
		Group("rating").
		Scan(&buckets).Error; err != nil {
		return nil, err
	}
	for _, bucket := range buckets {
		if bucket.Rating >= 1 && bucket.Rating <= 5 {
			stats.Histogram[bucket.Rating-1] = bucket.Total
		}
	}
	return &stats, nil
}

package repository

import (
	"errors"

	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// RiderRepository 骑手数据访问接口
type RiderRepository interface {
	Create(rider *models.Rider) error
	GetByID(id uint) (*models.Rider, error)
	GetByUserID(userID uint) (*models.Rider, error)
	List(page, pageSize int, activeOnly bool) ([]models.Rider, int64, error)
	Update(rider *models.Rider) error
	WithTx(tx *gorm.DB) *GormRiderRepository
}

// GormRiderRepository GORM 实现
type GormRiderRepository struct {
	db *gorm.DB
}

// NewRiderRepository 创建骑手仓库
func NewRiderRepository(db *gorm.DB) *GormRiderRepository {
	return &GormRiderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRiderRepository) WithTx(tx *gorm.DB) *GormRiderRepository {
	if tx == nil {
		return r
	}
	return &GormRiderRepository{db: tx}
}

// Create 创建骑手
func (r *GormRiderRepository) Create(rider *models.Rider) error {
	return r.db.Create(rider).Error
}

// GetByID 根据 ID 获取骑手
func (r *GormRiderRepository) GetByID(id uint) (*models.Rider, error) {
	var rider models.Rider
	if err := r.db.Preload("User").First(&rider, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rider, nil
}

// GetByUserID 根据账号 ID 获取骑手
func (r *GormRiderRepository) GetByUserID(userID uint) (*models.Rider, error) {
	var rider models.Rider
	if err := r.db.Preload("User").Where("user_id = ?", userID).First(&rider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rider, nil
}

// List 骑手列表
func (r *GormRiderRepository) List(page, pageSize int, activeOnly bool) ([]models.Rider, int64, error) {
	query := r.db.Model(&models.Rider{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var riders []models.Rider
	if err := query.Preload("User").Order("id asc").Find(&riders).Error; err != nil {
		return nil, 0, err
	}
	return riders, total, nil
}

// Update 保存骑手
func (r *GormRiderRepository) Update(rider *models.Rider) error {
	return r.db.Save(rider).Error
}

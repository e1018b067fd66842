package repository

import (
	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// SearchHistoryRepository 搜索历史数据访问接口
type SearchHistoryRepository interface {
	Create(entry *models.SearchHistory) error
	ListByCustomer(customerID uint, limit int) ([]models.SearchHistory, error)
	ClearByCustomer(customerID uint) error
	WithTx(tx *gorm.DB) *GormSearchHistoryRepository
}

// GormSearchHistoryRepository GORM 实现
type GormSearchHistoryRepository struct {
	db *gorm.DB
}

// NewSearchHistoryRepository 创建搜索历史仓库
func NewSearchHistoryRepository(db *gorm.DB) *GormSearchHistoryRepository {
	return &GormSearchHistoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSearchHistoryRepository) WithTx(tx *gorm.DB) *GormSearchHistoryRepository {
	if tx == nil {
		return r
	}
	return &GormSearchHistoryRepository{db: tx}
}

// Create 记录搜索历史
func (r *GormSearchHistoryRepository) Create(entry *models.SearchHistory) error {
	return r.db.Create(entry).Error
}

// ListByCustomer 获取顾客最近搜索记录
func (r *GormSearchHistoryRepository) ListByCustomer(customerID uint, limit int) ([]models.SearchHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []models.SearchHistory
	if err := r.db.Where("customer_id = ?", customerID).
		Order("id desc").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ClearByCustomer 清空顾客搜索历史
func (r *GormSearchHistoryRepository) ClearByCustomer(customerID uint) error {
	return r.db.Where("customer_id = ?", customerID).Delete(&models.SearchHistory{}).Error
}

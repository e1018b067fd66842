package repository

import (
	"errors"

	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// TagRepository 标签数据访问接口
type TagRepository interface {
	Create(tag *models.Tag) error
	GetByID(id uint) (*models.Tag, error)
	GetByName(name string) (*models.Tag, error)
	List() ([]models.Tag, error)
	ListChildren(parentID uint) ([]models.Tag, error)
	Update(tag *models.Tag) error
	Delete(id uint) error
	AttachProduct(productID, tagID uint) error
	DetachProduct(productID, tagID uint) error
	ListByProduct(productID uint) ([]models.Tag, error)
	CountProducts(tagID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormTagRepository
}

// GormTagRepository GORM 实现
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository 创建标签仓库
func NewTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTagRepository) WithTx(tx *gorm.DB) *GormTagRepository {
	if tx == nil {
		return r
	}
	return &GormTagRepository{db: tx}
}

// Create 创建标签
func (r *GormTagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

// GetByID 根据 ID 获取标签
func (r *GormTagRepository) GetByID(id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// GetByName 根据名称获取标签
func (r *GormTagRepository) GetByName(name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// List 全部标签
func (r *GormTagRepository) List() ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.Order("name asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ListChildren 获取子标签
func (r *GormTagRepository) ListChildren(parentID uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.Where("parent_id = ?", parentID).Order("name asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Update 保存标签
func (r *GormTagRepository) Update(tag *models.Tag) error {
	return r.db.Save(tag).Error
}

// Delete 删除标签
func (r *GormTagRepository) Delete(id uint) error {
	return r.db.Delete(&models.Tag{}, id).Error
}

// AttachProduct 绑定商品标签（已绑定时幂等）
func (r *GormTagRepository) AttachProduct(productID, tagID uint) error {
	var count int64
	if err := r.db.Model(&models.ProductTag{}).
		Where("product_id = ? AND tag_id = ?", productID, tagID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.Create(&models.ProductTag{ProductID: productID, TagID: tagID}).Error
}

// DetachProduct 解绑商品标签
func (r *GormTagRepository) DetachProduct(productID, tagID uint) error {
	return r.db.Where("product_id = ? AND tag_id = ?", productID, tagID).
		Delete(&models.ProductTag{}).Error
}

// ListByProduct 获取商品标签
func (r *GormTagRepository) ListByProduct(productID uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.
		Joins("JOIN product_tags ON product_tags.tag_id = tags.id").
		Where("product_tags.product_id = ?", productID).
		Order("tags.name asc").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CountProducts 统计标签下的商品数
func (r *GormTagRepository) CountProducts(tagID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.ProductTag{}).Where("tag_id = ?", tagID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

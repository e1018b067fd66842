package repository

import (
	"errors"

	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	Create(admin *models.Admin) error
	GetByID(id uint) (*models.Admin, error)
	GetByUserID(userID uint) (*models.Admin, error)
	List(page, pageSize int) ([]models.Admin, int64, error)
	UpdateRole(id uint, role string) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormAdminRepository
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAdminRepository) WithTx(tx *gorm.DB) *GormAdminRepository {
	if tx == nil {
		return r
	}
	return &GormAdminRepository{db: tx}
}

// Create 创建管理员
func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

// GetByID 根据 ID 获取管理员
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Preload("User").First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByUserID 根据账号 ID 获取管理员
func (r *GormAdminRepository) GetByUserID(userID uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Preload("User").Where("user_id = ?", userID).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// List 管理员列表
func (r *GormAdminRepository) List(page, pageSize int) ([]models.Admin, int64, error) {
	query := r.db.Model(&models.Admin{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var admins []models.Admin
	if err := query.Preload("User").Order("id asc").Find(&admins).Error; err != nil {
		return nil, 0, err
	}
	return admins, total, nil
}

// UpdateRole 更新管理员角色
func (r *GormAdminRepository) UpdateRole(id uint, role string) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).Update("role", role).Error
}

// Delete 删除管理员
func (r *GormAdminRepository) Delete(id uint) error {
	return r.db.Delete(&models.Admin{}, id).Error
}

package repository

import (
	"errors"

	"github.com/haatbazar/internal/models"

	"gorm.io/gorm"
)

// DeliveryRepository 配送指派数据访问接口
type DeliveryRepository interface {
	Create(assignment *models.DeliveryAssignment) error
	GetByAssignmentNo(assignmentNo string) (*models.DeliveryAssignment, error)
	GetOpenByOrderID(orderID uint) (*models.DeliveryAssignment, error)
	List(filter AssignmentListFilter) ([]models.DeliveryAssignment, int64, error)
	Update(assignment *models.DeliveryAssignment) error
	WithTx(tx *gorm.DB) *GormDeliveryRepository
}

// GormDeliveryRepository GORM 实现
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository 创建配送指派仓库
func NewDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDeliveryRepository) WithTx(tx *gorm.DB) *GormDeliveryRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryRepository{db: tx}
}

// Create 创建配送指派
func (r *GormDeliveryRepository) Create(assignment *models.DeliveryAssignment) error {
	return r.db.Create(assignment).Error
}

// GetByAssignmentNo 根据指派编号获取指派
func (r *GormDeliveryRepository) GetByAssignmentNo(assignmentNo string) (*models.DeliveryAssignment, error) {
	var assignment models.DeliveryAssignment
	if err := r.db.Preload("Order").Preload("Rider").
		Where("assignment_no = ?", assignmentNo).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// GetOpenByOrderID 获取订单未关闭的指派（assigned/accepted/in_transit）
func (r *GormDeliveryRepository) GetOpenByOrderID(orderID uint) (*models.DeliveryAssignment, error) {
	var assignment models.DeliveryAssignment
	if err := r.db.
		Where("order_id = ? AND status IN ?", orderID, []string{"assigned", "accepted", "in_transit"}).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// List 指派列表
func (r *GormDeliveryRepository) List(filter AssignmentListFilter) ([]models.DeliveryAssignment, int64, error) {
	query := r.db.Model(&models.DeliveryAssignment{})

	if filter.RiderID != 0 {
		query = query.Where("rider_id = ?", filter.RiderID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var assignments []models.DeliveryAssignment
	if err := query.Preload("Order").Preload("Rider").
		Order("id desc").
		Find(&assignments).Error; err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

// Update 保存配送指派
func (r *GormDeliveryRepository) Update(assignment *models.DeliveryAssignment) error {
	return r.db.Save(assignment).Error
}

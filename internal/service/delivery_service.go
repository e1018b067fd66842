package service

import (
	"strings"
	"time"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DeliveryService 配送服务（骑手与指派）
type DeliveryService struct {
	deliveryRepo repository.DeliveryRepository
	riderRepo    repository.RiderRepository
	userRepo     repository.UserRepository
	orderRepo    repository.OrderRepository
	orderService *OrderService
}

// NewDeliveryService 创建配送服务
func NewDeliveryService(deliveryRepo repository.DeliveryRepository, riderRepo repository.RiderRepository, userRepo repository.UserRepository, orderRepo repository.OrderRepository, orderService *OrderService) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		riderRepo:    riderRepo,
		userRepo:     userRepo,
		orderRepo:    orderRepo,
		orderService: orderService,
	}
}

// CreateRiderInput 创建骑手输入
type CreateRiderInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	Phone       string
	VehicleInfo string
}

// CreateRider 创建骑手账号
func (s *DeliveryService) CreateRider(input CreateRiderInput) (*models.Rider, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	rider := &models.Rider{
		Phone:       strings.TrimSpace(input.Phone),
		VehicleInfo: strings.TrimSpace(input.VehicleInfo),
		IsActive:    true,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		riderRepo := s.riderRepo.WithTx(tx)
		user := &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			FullName:     strings.TrimSpace(input.FullName),
		}
		if err := userRepo.Create(user); err != nil {
			return err
		}
		rider.UserID = user.ID
		return riderRepo.Create(rider)
	})
	if err != nil {
		return nil, err
	}
	return s.riderRepo.GetByID(rider.ID)
}

// UpdateRiderInput 更新骑手输入
type UpdateRiderInput struct {
	Phone       *string
	VehicleInfo *string
	IsActive    *bool
}

// UpdateRider 更新骑手资料
func (s *DeliveryService) UpdateRider(id uint, input UpdateRiderInput) (*models.Rider, error) {
	rider, err := s.riderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rider == nil {
		return nil, ErrRiderNotFound
	}
	if input.Phone != nil {
		rider.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.VehicleInfo != nil {
		rider.VehicleInfo = strings.TrimSpace(*input.VehicleInfo)
	}
	if input.IsActive != nil {
		rider.IsActive = *input.IsActive
	}
	if err := s.riderRepo.Update(rider); err != nil {
		return nil, err
	}
	return rider, nil
}

// ListRiders 分页查询骑手
func (s *DeliveryService) ListRiders(page, pageSize int, activeOnly bool) ([]models.Rider, int64, error) {
	return s.riderRepo.List(page, pageSize, activeOnly)
}

// GetRiderByUserID 按账号查询骑手
func (s *DeliveryService) GetRiderByUserID(userID uint) (*models.Rider, error) {
	rider, err := s.riderRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if rider == nil {
		return nil, ErrRiderNotFound
	}
	return rider, nil
}

// Assign 为订单指派骑手
func (s *DeliveryService) Assign(orderNo string, riderID uint, estimatedDelivery *time.Time) (*models.DeliveryAssignment, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPaid && order.Status != constants.OrderStatusShipped {
		return nil, ErrAssignmentStateError
	}

	rider, err := s.riderRepo.GetByID(riderID)
	if err != nil {
		return nil, err
	}
	if rider == nil || !rider.IsActive {
		return nil, ErrRiderNotFound
	}

	open, err := s.deliveryRepo.GetOpenByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrAssignmentConflict
	}

	now := time.Now()
	assignment := &models.DeliveryAssignment{
		AssignmentNo:      generateAssignmentNo(),
		OrderID:           order.ID,
		RiderID:           rider.ID,
		Status:            constants.AssignmentStatusAssigned,
		AssignedAt:        now,
		EstimatedDelivery: estimatedDelivery,
	}
	if err := s.deliveryRepo.Create(assignment); err != nil {
		return nil, err
	}
	return s.deliveryRepo.GetByAssignmentNo(assignment.AssignmentNo)
}

func (s *DeliveryService) getOwnedAssignment(assignmentNo string, riderID uint) (*models.DeliveryAssignment, error) {
	assignment, err := s.deliveryRepo.GetByAssignmentNo(assignmentNo)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if assignment.RiderID != riderID {
		return nil, ErrAssignmentNotOwned
	}
	return assignment, nil
}

// Accept 骑手接单
func (s *DeliveryService) Accept(assignmentNo string, riderID uint) (*models.DeliveryAssignment, error) {
	assignment, err := s.getOwnedAssignment(assignmentNo, riderID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != constants.AssignmentStatusAssigned {
		return nil, ErrAssignmentStateError
	}
	now := time.Now()
	assignment.Status = constants.AssignmentStatusAccepted
	assignment.AcceptedAt = &now
	if err := s.deliveryRepo.Update(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Reject 骑手拒单（记录原因，订单可重新指派）
func (s *DeliveryService) Reject(assignmentNo string, riderID uint, reason string) (*models.DeliveryAssignment, error) {
	assignment, err := s.getOwnedAssignment(assignmentNo, riderID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != constants.AssignmentStatusAssigned {
		return nil, ErrAssignmentStateError
	}
	now := time.Now()
	assignment.Status = constants.AssignmentStatusRejected
	assignment.RejectedAt = &now
	assignment.RejectionReason = strings.TrimSpace(reason)
	if err := s.deliveryRepo.Update(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Start 骑手取货出发，指派进入运送中
func (s *DeliveryService) Start(assignmentNo string, riderID uint) (*models.DeliveryAssignment, error) {
	assignment, err := s.getOwnedAssignment(assignmentNo, riderID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != constants.AssignmentStatusAccepted {
		return nil, ErrAssignmentStateError
	}
	assignment.Status = constants.AssignmentStatusInTransit
	if err := s.deliveryRepo.Update(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Deliver 骑手送达：指派与订单在同一事务内置为已送达
func (s *DeliveryService) Deliver(assignmentNo string, riderID uint) (*models.DeliveryAssignment, error) {
	assignment, err := s.getOwnedAssignment(assignmentNo, riderID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != constants.AssignmentStatusAccepted && assignment.Status != constants.AssignmentStatusInTransit {
		return nil, ErrAssignmentStateError
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		deliveryRepo := s.deliveryRepo.WithTx(tx)
		assignment.Status = constants.AssignmentStatusDelivered
		assignment.DeliveredAt = &now
		if err := deliveryRepo.Update(assignment); err != nil {
			return err
		}
		return s.orderService.markDelivered(tx, assignment.OrderID, now)
	})
	if err != nil {
		return nil, err
	}
	return s.deliveryRepo.GetByAssignmentNo(assignment.AssignmentNo)
}

// ListAssignments 分页查询指派记录
func (s *DeliveryService) ListAssignments(filter repository.AssignmentListFilter) ([]models.DeliveryAssignment, int64, error) {
	return s.deliveryRepo.List(filter)
}

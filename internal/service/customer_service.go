package service

import (
	"strings"
	"time"

	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"
)

// CustomerService 顾客资料服务
type CustomerService struct {
	customerRepo repository.CustomerRepository
	userRepo     repository.UserRepository
}

// NewCustomerService 创建顾客服务
func NewCustomerService(customerRepo repository.CustomerRepository, userRepo repository.UserRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, userRepo: userRepo}
}

// Get 获取顾客资料
func (s *CustomerService) Get(id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// UpdateProfileInput 更新顾客资料输入
type UpdateProfileInput struct {
	FullName  *string
	Phone     *string
	BirthDate *time.Time
}

// UpdateProfile 更新顾客资料
func (s *CustomerService) UpdateProfile(id uint, input UpdateProfileInput) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	if input.Phone != nil {
		customer.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.BirthDate != nil {
		customer.BirthDate = input.BirthDate
	}
	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user, err := s.userRepo.GetByID(customer.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			user.FullName = strings.TrimSpace(*input.FullName)
			if err := s.userRepo.Update(user); err != nil {
				return nil, err
			}
		}
	}
	return s.customerRepo.GetByID(id)
}

// List 管理端分页查询顾客
func (s *CustomerService) List(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	return s.customerRepo.List(filter)
}

package service

import (
	"strings"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"

	"gorm.io/gorm"
)

// PaymentMethodService 顾客支付方式服务
type PaymentMethodService struct {
	methodRepo repository.PaymentMethodRepository
}

// NewPaymentMethodService 创建支付方式服务
func NewPaymentMethodService(methodRepo repository.PaymentMethodRepository) *PaymentMethodService {
	return &PaymentMethodService{methodRepo: methodRepo}
}

// maskAccountNo 只保留末四位
func maskAccountNo(accountNo string) string {
	accountNo = strings.TrimSpace(accountNo)
	if len(accountNo) <= 4 {
		return accountNo
	}
	return strings.Repeat("*", len(accountNo)-4) + accountNo[len(accountNo)-4:]
}

// Create 新增支付方式
func (s *PaymentMethodService) Create(customerID uint, methodType, accountNo string, isDefault bool) (*models.PaymentMethod, error) {
	if !validMethodType(methodType) {
		return nil, ErrPaymentMethodInvalid
	}
	if methodType != constants.PaymentMethodTypeCOD && strings.TrimSpace(accountNo) == "" {
		return nil, ErrPaymentMethodInvalid
	}

	method := &models.PaymentMethod{
		CustomerID: customerID,
		Type:       methodType,
		AccountNo:  maskAccountNo(accountNo),
		IsDefault:  isDefault,
	}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		methodRepo := s.methodRepo.WithTx(tx)
		if isDefault {
			if err := methodRepo.UnsetDefault(customerID); err != nil {
				return err
			}
		}
		return methodRepo.Create(method)
	})
	if err != nil {
		return nil, err
	}
	return method, nil
}

// List 获取顾客全部支付方式
func (s *PaymentMethodService) List(customerID uint) ([]models.PaymentMethod, error) {
	return s.methodRepo.ListByCustomer(customerID)
}

// SetDefault 设置默认支付方式
func (s *PaymentMethodService) SetDefault(id, customerID uint) error {
	method, err := s.methodRepo.GetByIDAndCustomer(id, customerID)
	if err != nil {
		return err
	}
	if method == nil {
		return ErrPaymentMethodNotFound
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		methodRepo := s.methodRepo.WithTx(tx)
		if err := methodRepo.UnsetDefault(customerID); err != nil {
			return err
		}
		return methodRepo.SetDefault(id, customerID)
	})
}

// Delete 删除支付方式
func (s *PaymentMethodService) Delete(id, customerID uint) error {
	method, err := s.methodRepo.GetByIDAndCustomer(id, customerID)
	if err != nil {
		return err
	}
	if method == nil {
		return ErrPaymentMethodNotFound
	}
	return s.methodRepo.Delete(id, customerID)
}

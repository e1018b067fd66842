package service

import (
	"strings"

	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"

	"gorm.io/gorm"
)

// AddressService 收货地址服务
type AddressService struct {
	addressRepo repository.AddressRepository
}

// NewAddressService 创建地址服务
func NewAddressService(addressRepo repository.AddressRepository) *AddressService {
	return &AddressService{addressRepo: addressRepo}
}

// AddressInput 地址输入
type AddressInput struct {
	Line1      string
	Line2      string
	City       string
	Division   string
	PostalCode string
	Country    string
	IsDefault  bool
}

func (input *AddressInput) normalize() error {
	input.Line1 = strings.TrimSpace(input.Line1)
	input.Line2 = strings.TrimSpace(input.Line2)
	input.City = strings.TrimSpace(input.City)
	input.Division = strings.TrimSpace(input.Division)
	input.PostalCode = strings.TrimSpace(input.PostalCode)
	input.Country = strings.TrimSpace(input.Country)
	if input.Country == "" {
		input.Country = "Bangladesh"
	}
	if input.Line1 == "" || input.City == "" {
		return ErrAddressInvalid
	}
	return nil
}

// Create 新增地址（设为默认时取消原默认）
func (s *AddressService) Create(customerID uint, input AddressInput) (*models.Address, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	address := &models.Address{
		CustomerID: customerID,
		Line1:      input.Line1,
		Line2:      input.Line2,
		City:       input.City,
		Division:   input.Division,
		PostalCode: input.PostalCode,
		Country:    input.Country,
		IsDefault:  input.IsDefault,
	}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		addressRepo := s.addressRepo.WithTx(tx)
		if input.IsDefault {
			if err := addressRepo.UnsetDefault(customerID); err != nil {
				return err
			}
		}
		return addressRepo.Create(address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// Update 更新地址
func (s *AddressService) Update(id, customerID uint, input AddressInput) (*models.Address, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	address, err := s.addressRepo.GetByIDAndCustomer(id, customerID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	address.Line1 = input.Line1
	address.Line2 = input.Line2
	address.City = input.City
	address.Division = input.Division
	address.PostalCode = input.PostalCode
	address.Country = input.Country

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		addressRepo := s.addressRepo.WithTx(tx)
		if input.IsDefault && !address.IsDefault {
			if err := addressRepo.UnsetDefault(customerID); err != nil {
				return err
			}
			address.IsDefault = true
		}
		return addressRepo.Update(address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// SetDefault 设置默认地址
func (s *AddressService) SetDefault(id, customerID uint) error {
	address, err := s.addressRepo.GetByIDAndCustomer(id, customerID)
	if err != nil {
		return err
	}
	if address == nil {
		return ErrAddressNotFound
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		addressRepo := s.addressRepo.WithTx(tx)
		if err := addressRepo.UnsetDefault(customerID); err != nil {
			return err
		}
		return addressRepo.SetDefault(id, customerID)
	})
}

// List 获取顾客全部地址
func (s *AddressService) List(customerID uint) ([]models.Address, error) {
	return s.addressRepo.ListByCustomer(customerID)
}

// Delete 删除地址
func (s *AddressService) Delete(id, customerID uint) error {
	address, err := s.addressRepo.GetByIDAndCustomer(id, customerID)
	if err != nil {
		return err
	}
	if address == nil {
		return ErrAddressNotFound
	}
	return s.addressRepo.Delete(id, customerID)
}

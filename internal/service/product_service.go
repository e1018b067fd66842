package service

import (
	"strings"

	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"
)

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
	tagRepo     repository.TagRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, tagRepo repository.TagRepository) *ProductService {
	return &ProductService{productRepo: productRepo, tagRepo: tagRepo}
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	Name        string
	Description string
	Price       models.Money
	Stock       int
	ImageURL    string
	TagIDs      []uint
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProductInvalid
	}
	if input.Price.IsNegative() || input.Stock < 0 {
		return nil, ErrProductInvalid
	}

	product := &models.Product{
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    strings.TrimSpace(input.ImageURL),
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	for _, tagID := range input.TagIDs {
		tag, err := s.tagRepo.GetByID(tagID)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			return nil, ErrTagNotFound
		}
		if err := s.tagRepo.AttachProduct(product.ID, tagID); err != nil {
			return nil, err
		}
	}
	return s.Get(product.ID)
}

// UpdateProductInput 更新商品输入
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *models.Money
	Stock       *int
	ImageURL    *string
}

// Update 更新商品
func (s *ProductService) Update(id uint, input UpdateProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProductInvalid
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, ErrProductInvalid
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, ErrProductInvalid
		}
		product.Stock = *input.Stock
	}
	if input.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*input.ImageURL)
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return s.Get(product.ID)
}

// Get 获取商品详情（含标签）
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	tags, err := s.tagRepo.ListByProduct(product.ID)
	if err != nil {
		return nil, err
	}
	product.Tags = tags
	return product, nil
}

// List 分页查询商品（支持关键字、标签过滤与排序）
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	products, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		tags, err := s.tagRepo.ListByProduct(products[i].ID)
		if err != nil {
			return nil, 0, err
		}
		products[i].Tags = tags
	}
	return products, total, nil
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.productRepo.Delete(id)
}

// AttachTag 为商品绑定标签（重复绑定不报错）
func (s *ProductService) AttachTag(productID, tagID uint) error {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	tag, err := s.tagRepo.GetByID(tagID)
	if err != nil {
		return err
	}
	if tag == nil {
		return ErrTagNotFound
	}
	return s.tagRepo.AttachProduct(productID, tagID)
}

// DetachTag 解绑商品标签
func (s *ProductService) DetachTag(productID, tagID uint) error {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.tagRepo.DetachProduct(productID, tagID)
}

package service

import (
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"
)

// WishlistService 心愿单服务
type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

// NewWishlistService 创建心愿单服务
func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) *WishlistService {
	return &WishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

// Get 获取顾客心愿单（不存在则创建空单）
func (s *WishlistService) Get(customerID uint) (*models.Wishlist, error) {
	wishlist, err := s.wishlistRepo.GetByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if wishlist != nil {
		return wishlist, nil
	}
	wishlist = &models.Wishlist{CustomerID: customerID}
	if err := s.wishlistRepo.Create(wishlist); err != nil {
		return nil, err
	}
	return wishlist, nil
}

// AddItem 添加商品到心愿单（重复添加报错）
func (s *WishlistService) AddItem(customerID, productID uint) (*models.Wishlist, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	wishlist, err := s.Get(customerID)
	if err != nil {
		return nil, err
	}

	exists, err := s.wishlistRepo.HasItem(wishlist.ID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrWishlistItemExists
	}

	if err := s.wishlistRepo.AddItem(&models.WishlistItem{
		WishlistID: wishlist.ID,
		ProductID:  productID,
	}); err != nil {
		return nil, err
	}
	return s.wishlistRepo.GetByCustomer(customerID)
}

// RemoveItem 从心愿单移除商品
func (s *WishlistService) RemoveItem(customerID, productID uint) (*models.Wishlist, error) {
	wishlist, err := s.wishlistRepo.GetByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if wishlist == nil {
		return nil, ErrWishlistItemNotFound
	}

	exists, err := s.wishlistRepo.HasItem(wishlist.ID, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrWishlistItemNotFound
	}

	if err := s.wishlistRepo.RemoveItem(wishlist.ID, productID); err != nil {
		return nil, err
	}
	return s.wishlistRepo.GetByCustomer(customerID)
}

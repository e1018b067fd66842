package service

import (
	"github.com/shopspring/decimal"

	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"
)

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetOrCreate 获取顾客当前活跃购物车（不存在则创建空车）
func (s *CartService) GetOrCreate(customerID uint) (*models.Cart, error) {
	cart, err := s.cartRepo.GetActiveByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &models.Cart{CustomerID: customerID, IsActive: true}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem 添加商品到购物车（已存在则累加数量）
func (s *CartService) AddItem(customerID, productID uint, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, ErrQuantityInvalid
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	cart, err := s.GetOrCreate(customerID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetItem(cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := s.cartRepo.CreateItem(item); err != nil {
			return nil, err
		}
	} else {
		if err := s.cartRepo.UpdateItemQuantity(item.ID, item.Quantity+quantity); err != nil {
			return nil, err
		}
	}

	return s.cartRepo.GetActiveByCustomer(customerID)
}

// UpdateItem 修改购物车商品数量（数量为 0 表示移除）
func (s *CartService) UpdateItem(customerID, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, ErrQuantityInvalid
	}

	cart, err := s.cartRepo.GetActiveByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartItemNotFound
	}

	item, err := s.cartRepo.GetItem(cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}

	if quantity == 0 {
		if err := s.cartRepo.DeleteItem(cart.ID, productID); err != nil {
			return nil, err
		}
	} else {
		if err := s.cartRepo.UpdateItemQuantity(item.ID, quantity); err != nil {
			return nil, err
		}
	}

	return s.cartRepo.GetActiveByCustomer(customerID)
}

// RemoveItem 从购物车移除商品
func (s *CartService) RemoveItem(customerID, productID uint) (*models.Cart, error) {
	return s.UpdateItem(customerID, productID, 0)
}

// CartTotals 购物车合计（价格按商品当前售价实时计算）
type CartTotals struct {
	UniqueItems int          `json:"unique_items"`
	TotalUnits  int          `json:"total_units"`
	TotalPrice  models.Money `json:"total_price"`
}

// Totals 计算当前购物车合计
func (s *CartService) Totals(customerID uint) (*CartTotals, error) {
	cart, err := s.GetOrCreate(customerID)
	if err != nil {
		return nil, err
	}

	totals := &CartTotals{}
	sum := decimal.Zero
	for _, item := range cart.Items {
		if item.Product == nil {
			continue
		}
		totals.UniqueItems++
		totals.TotalUnits += item.Quantity
		sum = sum.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	totals.TotalPrice = models.NewMoneyFromDecimal(sum)
	return totals, nil
}

// Clear 清空购物车
func (s *CartService) Clear(customerID uint) error {
	cart, err := s.cartRepo.GetActiveByCustomer(customerID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	return s.cartRepo.ClearItems(cart.ID)
}

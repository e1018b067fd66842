package service

import (
	"strings"
	"time"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponService 优惠券服务
type CouponService struct {
	couponRepo repository.CouponRepository
	redeemRepo repository.CouponRedeemRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, redeemRepo repository.CouponRedeemRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo, redeemRepo: redeemRepo}
}

// CouponQuote 优惠券验证结果
type CouponQuote struct {
	Coupon   *models.Coupon
	Discount models.Money
}

// Validate 校验优惠券并计算可抵扣金额
// 校验顺序固定：启用 -> 时间窗口 -> 总量限制 -> 个人限制 -> 最低消费
func (s *CouponService) Validate(code string, customerID uint, subtotal models.Money) (*CouponQuote, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponNotFound
	}

	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}

	now := time.Now()
	if now.Before(coupon.ValidFrom) {
		return nil, ErrCouponNotStarted
	}
	if now.After(coupon.ValidTo) {
		return nil, ErrCouponExpired
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, ErrCouponUsageLimit
	}

	if coupon.PerUserLimit > 0 {
		used, err := s.redeemRepo.CountByCustomer(coupon.ID, customerID)
		if err != nil {
			return nil, err
		}
		if used >= int64(coupon.PerUserLimit) {
			return nil, ErrCouponPerUserLimit
		}
	}

	if coupon.MinAmount.IsPositive() && subtotal.LessThan(coupon.MinAmount.Decimal) {
		return nil, ErrCouponMinAmount
	}

	discount := calculateDiscount(coupon, subtotal)
	return &CouponQuote{Coupon: coupon, Discount: discount}, nil
}

// calculateDiscount 计算优惠金额（不超过订单原始金额）
func calculateDiscount(coupon *models.Coupon, subtotal models.Money) models.Money {
	var discount decimal.Decimal
	switch coupon.Type {
	case constants.CouponTypePercent:
		discount = subtotal.Mul(coupon.Value.Decimal).Div(decimal.NewFromInt(100)).Round(2)
		if coupon.MaxDiscount.IsPositive() && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
			discount = coupon.MaxDiscount.Decimal
		}
	case constants.CouponTypeFixed:
		discount = coupon.Value.Decimal
	default:
		return models.Money{}
	}
	if discount.GreaterThan(subtotal.Decimal) {
		discount = subtotal.Decimal
	}
	if discount.IsNegative() {
		return models.Money{}
	}
	return models.NewMoneyFromDecimal(discount)
}

// CreateCouponInput 创建优惠券输入
type CreateCouponInput struct {
	Code         string
	Type         string
	Value        models.Money
	MinAmount    models.Money
	MaxDiscount  models.Money
	UsageLimit   int
	PerUserLimit int
	ValidFrom    time.Time
	ValidTo      time.Time
	IsActive     bool
}

// Create 创建优惠券
func (s *CouponService) Create(input CreateCouponInput) (*models.Coupon, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrCouponInvalid
	}
	if input.Type != constants.CouponTypeFixed && input.Type != constants.CouponTypePercent {
		return nil, ErrCouponInvalid
	}
	if !input.Value.IsPositive() {
		return nil, ErrCouponInvalid
	}
	if !input.ValidTo.After(input.ValidFrom) {
		return nil, ErrCouponInvalid
	}

	existing, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCouponInvalid
	}

	coupon := &models.Coupon{
		Code:         code,
		Type:         input.Type,
		Value:        input.Value,
		MinAmount:    input.MinAmount,
		MaxDiscount:  input.MaxDiscount,
		UsageLimit:   input.UsageLimit,
		PerUserLimit: input.PerUserLimit,
		ValidFrom:    input.ValidFrom,
		ValidTo:      input.ValidTo,
		IsActive:     input.IsActive,
	}
	if err := s.couponRepo.Create(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// UpdateCouponInput 更新优惠券输入
type UpdateCouponInput struct {
	Value        *models.Money
	MinAmount    *models.Money
	MaxDiscount  *models.Money
	UsageLimit   *int
	PerUserLimit *int
	ValidFrom    *time.Time
	ValidTo      *time.Time
	IsActive     *bool
}

// Update 更新优惠券
func (s *CouponService) Update(id uint, input UpdateCouponInput) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	if input.Value != nil {
		if !input.Value.IsPositive() {
			return nil, ErrCouponInvalid
		}
		coupon.Value = *input.Value
	}
	if input.MinAmount != nil {
		coupon.MinAmount = *input.MinAmount
	}
	if input.MaxDiscount != nil {
		coupon.MaxDiscount = *input.MaxDiscount
	}
	if input.UsageLimit != nil {
		coupon.UsageLimit = *input.UsageLimit
	}
	if input.PerUserLimit != nil {
		coupon.PerUserLimit = *input.PerUserLimit
	}
	if input.ValidFrom != nil {
		coupon.ValidFrom = *input.ValidFrom
	}
	if input.ValidTo != nil {
		coupon.ValidTo = *input.ValidTo
	}
	if !coupon.ValidTo.After(coupon.ValidFrom) {
		return nil, ErrCouponInvalid
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}

	if err := s.couponRepo.Update(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Get 获取优惠券
func (s *CouponService) Get(id uint) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// List 分页获取优惠券
func (s *CouponService) List(page, pageSize int) ([]models.Coupon, int64, error) {
	return s.couponRepo.List(page, pageSize)
}

// Delete 删除优惠券
func (s *CouponService) Delete(id uint) error {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}
	return s.couponRepo.Delete(id)
}

// ListRedeems 分页获取核销记录
func (s *CouponService) ListRedeems(filter repository.CouponRedeemListFilter) ([]models.CouponRedeem, int64, error) {
	return s.redeemRepo.ListByCustomer(filter)
}

package service

import (
	"errors"
	"fmt"
)

// 认证与账号相关错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrRiderNotFound      = errors.New("rider not found")
	ErrRoleInvalid        = errors.New("invalid role")
	ErrForbidden          = errors.New("operation not permitted")
)

// 验证码相关错误
var (
	ErrCaptchaRequired = errors.New("captcha required")
	ErrCaptchaInvalid  = errors.New("captcha invalid")
)

// 商品与标签相关错误
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductInvalid     = errors.New("invalid product data")
	ErrTagNotFound        = errors.New("tag not found")
	ErrTagNameInvalid     = errors.New("invalid tag name")
	ErrTagNameTaken       = errors.New("tag name already exists")
	ErrTagCycleDetected   = errors.New("tag hierarchy cycle detected")
	ErrTagHasProducts     = errors.New("tag still attached to products")
	ErrReviewNotFound     = errors.New("review not found")
	ErrReviewNotEligible  = errors.New("review requires a delivered order containing the product")
	ErrReviewInvalid      = errors.New("invalid review data")
	ErrSearchQueryInvalid = errors.New("invalid search query")
)

// 购物车相关错误
var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrQuantityInvalid  = errors.New("quantity must be positive")
)

// 心愿单相关错误
var (
	ErrWishlistItemExists   = errors.New("product already in wishlist")
	ErrWishlistItemNotFound = errors.New("wishlist item not found")
)

// 地址与收款方式相关错误
var (
	ErrAddressNotFound       = errors.New("address not found")
	ErrAddressInvalid        = errors.New("invalid address data")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrPaymentMethodInvalid  = errors.New("invalid payment method data")
)

// 优惠券相关错误
var (
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponInvalid      = errors.New("coupon invalid")
	ErrCouponInactive     = errors.New("coupon inactive")
	ErrCouponNotStarted   = errors.New("coupon not started")
	ErrCouponExpired      = errors.New("coupon expired")
	ErrCouponMinAmount    = errors.New("order amount below coupon threshold")
	ErrCouponUsageLimit   = errors.New("coupon usage limit reached")
	ErrCouponPerUserLimit = errors.New("coupon per-customer limit reached")
)

// 订单与支付相关错误
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderCreateFailed    = errors.New("order create failed")
	ErrAddressNotOwned      = errors.New("address does not belong to customer")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentInvalid       = errors.New("invalid payment data")
	ErrPaymentUpdateFailed  = errors.New("payment update failed")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrCallbackSignInvalid  = errors.New("callback signature invalid")
	ErrQueueUnavailable     = errors.New("queue unavailable")
	ErrAssignmentNotFound   = errors.New("delivery assignment not found")
	ErrAssignmentConflict   = errors.New("order already has an open delivery assignment")
	ErrAssignmentNotOwned   = errors.New("delivery assignment does not belong to rider")
	ErrAssignmentStateError = errors.New("delivery assignment state does not allow this action")
)

// OutOfStockError 库存不足错误（携带商品与可用量）
type OutOfStockError struct {
	ProductID uint
	Available int
}

// Error 实现 error 接口
func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %d out of stock (available %d)", e.ProductID, e.Available)
}

// ErrOutOfStock 库存不足哨兵（用于 errors.Is 匹配）
var ErrOutOfStock = errors.New("out of stock")

// Is 支持 errors.Is(err, ErrOutOfStock)
func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

// IllegalTransitionError 非法状态流转错误
type IllegalTransitionError struct {
	From string
	To   string
}

// Error 实现 error 接口
func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition %s -> %s", e.From, e.To)
}

// ErrIllegalTransition 非法流转哨兵（用于 errors.Is 匹配）
var ErrIllegalTransition = errors.New("illegal status transition")

// Is 支持 errors.Is(err, ErrIllegalTransition)
func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

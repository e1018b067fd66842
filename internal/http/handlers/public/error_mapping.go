package public

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/service"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	status int
	detail string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackStatus int, fallbackDetail string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.status, rule.detail, nil)
			return
		}
	}
	respondError(c, fallbackStatus, fallbackDetail, err)
}

var couponErrorRules = []mappedHandlerError{
	{target: service.ErrCouponNotFound, status: http.StatusBadRequest, detail: "coupon not found"},
	{target: service.ErrCouponInactive, status: http.StatusBadRequest, detail: "coupon is not active"},
	{target: service.ErrCouponNotStarted, status: http.StatusBadRequest, detail: "coupon is not yet valid"},
	{target: service.ErrCouponExpired, status: http.StatusBadRequest, detail: "coupon has expired"},
	{target: service.ErrCouponUsageLimit, status: http.StatusBadRequest, detail: "coupon usage limit reached"},
	{target: service.ErrCouponPerUserLimit, status: http.StatusBadRequest, detail: "coupon per-customer limit reached"},
	{target: service.ErrCouponMinAmount, status: http.StatusBadRequest, detail: "order amount below coupon minimum"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrAddressNotFound, status: http.StatusBadRequest, detail: "address not found"},
	{target: service.ErrAddressNotOwned, status: http.StatusForbidden, detail: "address does not belong to you"},
	{target: service.ErrPaymentMethodNotFound, status: http.StatusBadRequest, detail: "payment method not found"},
	{target: service.ErrPaymentMethodInvalid, status: http.StatusBadRequest, detail: "invalid payment method"},
	{target: service.ErrCartEmpty, status: http.StatusBadRequest, detail: "cart is empty"},
	{target: service.ErrProductNotFound, status: http.StatusBadRequest, detail: "product no longer available"},
	{target: service.ErrQueueUnavailable, status: http.StatusServiceUnavailable, detail: "order processing temporarily unavailable, order was cancelled"},
	{target: service.ErrOrderCreateFailed, status: http.StatusInternalServerError, detail: "failed to create order"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, status: http.StatusBadRequest, detail: "product not found"},
	{target: service.ErrQuantityInvalid, status: http.StatusBadRequest, detail: "quantity must be positive"},
	{target: service.ErrCartItemNotFound, status: http.StatusNotFound, detail: "cart item not found"},
}

var reviewErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, status: http.StatusNotFound, detail: "product not found"},
	{target: service.ErrReviewInvalid, status: http.StatusBadRequest, detail: "rating must be between 1 and 5"},
	{target: service.ErrReviewNotEligible, status: http.StatusForbidden, detail: "reviews require a delivered order containing the product"},
	{target: service.ErrReviewNotFound, status: http.StatusNotFound, detail: "review not found"},
}

var searchErrorRules = []mappedHandlerError{
	{target: service.ErrSearchQueryInvalid, status: http.StatusBadRequest, detail: "search query is empty or too long"},
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, status: http.StatusUnauthorized, detail: "invalid credentials"},
	{target: service.ErrUsernameTaken, status: http.StatusConflict, detail: "username already taken"},
	{target: service.ErrEmailTaken, status: http.StatusConflict, detail: "email already taken"},
	{target: service.ErrRiderNotFound, status: http.StatusUnauthorized, detail: "invalid credentials"},
}

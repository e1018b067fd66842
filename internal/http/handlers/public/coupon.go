package public

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/http/response"
)

// ValidateCouponRequest 优惠券试算请求
type ValidateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidateCoupon 按当前购物车金额试算优惠券抵扣
func (h *Handler) ValidateCoupon(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	var req ValidateCouponRequest
	if !bindJSON(c, &req) {
		return
	}

	totals, err := h.CartService.Totals(customerID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to compute cart totals", err)
		return
	}

	quote, err := h.CouponService.Validate(req.Code, customerID, totals.TotalPrice)
	if err != nil {
		respondWithMappedError(c, err, couponErrorRules, http.StatusInternalServerError, "failed to validate coupon")
		return
	}

	response.Success(c, gin.H{
		"code":            quote.Coupon.Code,
		"discount_amount": quote.Discount,
		"cart_subtotal":   totals.TotalPrice,
	})
}

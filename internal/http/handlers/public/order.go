package public

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/repository"
	"github.com/haatbazar/internal/service"
)

// CheckoutRequest 下单请求
type CheckoutRequest struct {
	AddressID  uint   `json:"address_id" binding:"required"`
	CouponCode string `json:"coupon_code"`
	MethodType string `json:"method_type" binding:"required"`
	MethodID   *uint  `json:"method_id"`
}

// Checkout 购物车结算下单
func (h *Handler) Checkout(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.OrderService.Checkout(customerID, service.CheckoutInput{
		AddressID:  req.AddressID,
		CouponCode: req.CouponCode,
		MethodType: req.MethodType,
		MethodID:   req.MethodID,
	})
	if err != nil {
		var outOfStock *service.OutOfStockError
		if errors.As(err, &outOfStock) {
			response.Conflict(c, fmt.Sprintf("product %d out of stock, available %d", outOfStock.ProductID, outOfStock.Available))
			return
		}
		if errors.Is(err, service.ErrPaymentMethodInvalid) {
			response.BadRequest(c, "invalid payment method type")
			return
		}
		rules := append(append([]mappedHandlerError{}, checkoutErrorRules...), couponErrorRules...)
		respondWithMappedError(c, err, rules, http.StatusInternalServerError, "checkout failed")
		return
	}

	response.Created(c, order)
}

// ListOrders 当前顾客订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.QueryPagination(c)
	filter := repository.OrderListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: customerID,
		Status:     c.Query("status"),
	}

	orders, total, err := h.OrderService.ListForCustomer(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list orders", err)
		return
	}

	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 当前顾客订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.GetForCustomer(c.Param("order_no"), customerID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, "order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load order", err)
		return
	}

	response.Success(c, order)
}

// CancelOrder 顾客取消待支付订单
func (h *Handler) CancelOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.CancelByCustomer(c.Param("order_no"), customerID)
	if err != nil {
		var transition *service.IllegalTransitionError
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.As(err, &transition):
			response.Conflict(c, fmt.Sprintf("order in status %s cannot be cancelled", transition.From))
		default:
			respondError(c, http.StatusInternalServerError, "failed to cancel order", err)
		}
		return
	}

	response.Success(c, order)
}

package public

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/service"
)

// PaymentMethodRequest 收款方式请求
type PaymentMethodRequest struct {
	MethodType string `json:"method_type" binding:"required"`
	AccountNo  string `json:"account_no"`
	IsDefault  bool   `json:"is_default"`
}

func methodIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid payment method id")
		return 0, false
	}
	return uint(id), true
}

// ListPaymentMethods 收款方式列表
func (h *Handler) ListPaymentMethods(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	methods, err := h.PaymentMethodService.List(customerID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list payment methods", err)
		return
	}

	response.Success(c, methods)
}

// CreatePaymentMethod 新增收款方式
func (h *Handler) CreatePaymentMethod(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	var req PaymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}

	method, err := h.PaymentMethodService.Create(customerID, req.MethodType, req.AccountNo, req.IsDefault)
	if err != nil {
		if errors.Is(err, service.ErrPaymentMethodInvalid) {
			response.BadRequest(c, "invalid payment method type or account number")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to create payment method", err)
		return
	}

	response.Created(c, method)
}

// SetDefaultPaymentMethod 设为默认收款方式
func (h *Handler) SetDefaultPaymentMethod(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	id, ok := methodIDParam(c)
	if !ok {
		return
	}

	if err := h.PaymentMethodService.SetDefault(id, customerID); err != nil {
		if errors.Is(err, service.ErrPaymentMethodNotFound) {
			response.NotFound(c, "payment method not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to set default payment method", err)
		return
	}

	response.NoContent(c)
}

// DeletePaymentMethod 删除收款方式
func (h *Handler) DeletePaymentMethod(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	id, ok := methodIDParam(c)
	if !ok {
		return
	}

	if err := h.PaymentMethodService.Delete(id, customerID); err != nil {
		if errors.Is(err, service.ErrPaymentMethodNotFound) {
			response.NotFound(c, "payment method not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete payment method", err)
		return
	}

	response.NoContent(c)
}

package public

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/service"
)

// CreatePaymentSession 为待支付订单发起网关支付会话
func (h *Handler) CreatePaymentSession(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	result, err := h.PaymentService.InitiateSession(c.Request.Context(), c.Param("order_no"), customerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrPaymentNotFound):
			response.NotFound(c, "payment record not found")
		case errors.Is(err, service.ErrPaymentInvalid):
			response.BadRequest(c, "order is not awaiting payment")
		case errors.Is(err, service.ErrGatewayUnavailable):
			respondError(c, http.StatusServiceUnavailable, "payment gateway unavailable", err)
		default:
			respondError(c, http.StatusInternalServerError, "failed to create payment session", err)
		}
		return
	}

	response.Success(c, result)
}

// GetPayment 查询订单支付记录
func (h *Handler) GetPayment(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	payment, err := h.PaymentService.GetByOrder(c.Param("order_no"), customerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrPaymentNotFound):
			response.NotFound(c, "payment record not found")
		default:
			respondError(c, http.StatusInternalServerError, "failed to load payment", err)
		}
		return
	}

	response.Success(c, payment)
}

// PaymentIPN 网关异步通知（最终支付状态以该通知为准）
// 验签失败返回 4xx；其余异常（含未知订单）只记日志并回 200，避免网关重试风暴
func (h *Handler) PaymentIPN(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		response.BadRequest(c, "invalid notification payload")
		return
	}

	result, err := h.PaymentService.HandleIPN(c.Request.Context(), c.Request.PostForm)
	if err != nil {
		if errors.Is(err, service.ErrCallbackSignInvalid) {
			response.BadRequest(c, "invalid notification signature")
			return
		}
		requestLog(c).Warnw("payment_ipn_ignored",
			"tran_id", c.Request.PostForm.Get("tran_id"),
			"error", err,
		)
		response.Success(c, gin.H{"status": "ignored"})
		return
	}

	requestLog(c).Infow("payment_ipn_processed",
		"order_no", result.OrderNo,
		"order_status", result.OrderStatus,
		"payment_status", result.PaymentStatus,
	)
	response.Success(c, gin.H{"order_no": result.OrderNo, "status": result.PaymentStatus})
}

// PaymentSuccessReturn 网关浏览器回跳（成功页）：先幂等落账再跳转，最终状态以 IPN 为准
func (h *Handler) PaymentSuccessReturn(c *gin.Context) {
	h.applyReturnState(c)
	h.redirectToFrontend(c, h.Config.Gateway.FrontendSuccessURL)
}

// PaymentFailReturn 网关浏览器回跳（失败页）
func (h *Handler) PaymentFailReturn(c *gin.Context) {
	h.applyReturnState(c)
	h.redirectToFrontend(c, h.Config.Gateway.FrontendFailURL)
}

// PaymentCancelReturn 网关浏览器回跳（取消页）
func (h *Handler) PaymentCancelReturn(c *gin.Context) {
	h.applyReturnState(c)
	h.redirectToFrontend(c, h.Config.Gateway.FrontendCancelURL)
}

// applyReturnState 对浏览器回跳执行与 IPN 相同的验签与状态落地
// 回跳只影响用户去向，落账失败不阻断跳转
func (h *Handler) applyReturnState(c *gin.Context) {
	form := returnForm(c)
	if len(form) == 0 {
		return
	}
	result, err := h.PaymentService.HandleReturn(c.Request.Context(), form)
	if err != nil {
		requestLog(c).Warnw("payment_return_not_applied",
			"tran_id", form.Get("tran_id"),
			"error", err,
		)
		return
	}
	requestLog(c).Infow("payment_return_applied",
		"order_no", result.OrderNo,
		"order_status", result.OrderStatus,
		"payment_status", result.PaymentStatus,
	)
}

// returnForm 合并回跳请求的表单与查询参数（网关 POST 回跳，GET 供人工重放）
func returnForm(c *gin.Context) url.Values {
	_ = c.Request.ParseForm()
	form := url.Values{}
	for key, values := range c.Request.Form {
		form[key] = values
	}
	return form
}

func (h *Handler) redirectToFrontend(c *gin.Context, target string) {
	orderNo := c.PostForm("tran_id")
	if orderNo == "" {
		orderNo = c.Query("tran_id")
	}
	if target == "" {
		response.Success(c, gin.H{"order_no": orderNo})
		return
	}
	if orderNo != "" {
		if parsed, err := url.Parse(target); err == nil {
			query := parsed.Query()
			query.Set("order_no", orderNo)
			parsed.RawQuery = query.Encode()
			target = parsed.String()
		}
	}
	c.Redirect(http.StatusFound, target)
}

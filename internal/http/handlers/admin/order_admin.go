package admin

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/repository"
	"github.com/haatbazar/internal/service"
)

// OrderStatusRequest 订单状态流转请求
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ShippingRequest 配送信息请求
type ShippingRequest struct {
	CourierService    string     `json:"courier_service"`
	TrackingID        string     `json:"tracking_id"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	Notes             string     `json:"notes"`
}

// ListOrders 订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		OrderNo:  c.Query("order_no"),
	}
	if from := c.Query("created_from"); from != "" {
		if parsed, err := time.Parse(time.RFC3339, from); err == nil {
			filter.CreatedFrom = &parsed
		}
	}
	if to := c.Query("created_to"); to != "" {
		if parsed, err := time.Parse(time.RFC3339, to); err == nil {
			filter.CreatedTo = &parsed
		}
	}

	orders, total, err := h.OrderService.ListAdmin(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list orders", err)
		return
	}

	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.OrderService.Get(c.Param("order_no"))
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

// OrderTrail 订单状态轨迹
func (h *Handler) OrderTrail(c *gin.Context) {
	trail, err := h.OrderService.Trail(c.Param("order_no"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, "order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load order trail", err)
		return
	}

	response.Success(c, trail)
}

// UpdateOrderStatus 推进订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req OrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.OrderService.UpdateStatus(c.Param("order_no"), req.Status, adminID)
	if err != nil {
		var transition *service.IllegalTransitionError
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.As(err, &transition):
			response.Conflict(c, fmt.Sprintf("cannot transition order from %s to %s", transition.From, transition.To))
		default:
			respondError(c, http.StatusInternalServerError, "failed to update order status", err)
		}
		return
	}

	requestLog(c).Infow("order_status_updated",
		"order_no", order.OrderNo,
		"status", order.Status,
		"admin_id", adminID,
	)
	response.Success(c, order)
}

// UpsertShipping 登记或更新配送信息
func (h *Handler) UpsertShipping(c *gin.Context) {
	var req ShippingRequest
	if !bindJSON(c, &req) {
		return
	}

	shipping, err := h.OrderService.UpsertShipping(c.Param("order_no"), service.ShippingInput{
		CourierService:    req.CourierService,
		TrackingID:        req.TrackingID,
		EstimatedDelivery: req.EstimatedDelivery,
		Notes:             req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrIllegalTransition):
			response.Conflict(c, "shipping info only applies to paid or shipped orders")
		default:
			respondError(c, http.StatusInternalServerError, "failed to save shipping info", err)
		}
		return
	}

	response.Success(c, shipping)
}

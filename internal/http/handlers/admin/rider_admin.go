package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/repository"
	"github.com/haatbazar/internal/service"
)

// RiderCreateRequest 骑手创建请求
type RiderCreateRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	VehicleInfo string `json:"vehicle_info"`
}

// RiderUpdateRequest 骑手更新请求
type RiderUpdateRequest struct {
	Phone       *string `json:"phone"`
	VehicleInfo *string `json:"vehicle_info"`
	IsActive    *bool   `json:"is_active"`
}

// AssignmentRequest 配送指派请求
type AssignmentRequest struct {
	RiderID           uint       `json:"rider_id" binding:"required"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
}

// ListRiders 骑手列表
func (h *Handler) ListRiders(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	riders, total, err := h.DeliveryService.ListRiders(page, pageSize, c.Query("active") == "true")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list riders", err)
		return
	}

	response.SuccessWithPage(c, riders, response.NewPagination(page, pageSize, total))
}

// CreateRider 创建骑手账号
func (h *Handler) CreateRider(c *gin.Context) {
	var req RiderCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	rider, err := h.DeliveryService.CreateRider(service.CreateRiderInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Phone:       req.Phone,
		VehicleInfo: req.VehicleInfo,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.BadRequest(c, "username, email and password are required")
		case errors.Is(err, service.ErrUsernameTaken):
			response.Conflict(c, "username already taken")
		case errors.Is(err, service.ErrEmailTaken):
			response.Conflict(c, "email already taken")
		default:
			respondError(c, http.StatusInternalServerError, "failed to create rider", err)
		}
		return
	}

	response.Created(c, rider)
}

// UpdateRider 更新骑手资料
func (h *Handler) UpdateRider(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid rider id")
	if !ok {
		return
	}

	var req RiderUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	rider, err := h.DeliveryService.UpdateRider(id, service.UpdateRiderInput{
		Phone:       req.Phone,
		VehicleInfo: req.VehicleInfo,
		IsActive:    req.IsActive,
	})
	if err != nil {
		if errors.Is(err, service.ErrRiderNotFound) {
			response.NotFound(c, "rider not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to update rider", err)
		return
	}

	response.Success(c, rider)
}

// AssignOrder 为订单指派骑手
func (h *Handler) AssignOrder(c *gin.Context) {
	var req AssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.DeliveryService.Assign(c.Param("order_no"), req.RiderID, req.EstimatedDelivery)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrRiderNotFound):
			response.BadRequest(c, "rider not found or inactive")
		case errors.Is(err, service.ErrAssignmentStateError):
			response.Conflict(c, "order state does not allow assignment")
		case errors.Is(err, service.ErrAssignmentConflict):
			response.Conflict(c, "order already has an open assignment")
		default:
			respondError(c, http.StatusInternalServerError, "failed to assign rider", err)
		}
		return
	}

	response.Created(c, assignment)
}

// ListAssignments 配送指派列表
func (h *Handler) ListAssignments(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	riderID, _ := strconv.ParseUint(c.Query("rider_id"), 10, 64)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 64)

	assignments, total, err := h.DeliveryService.ListAssignments(repository.AssignmentListFilter{
		Page:     page,
		PageSize: pageSize,
		RiderID:  uint(riderID),
		OrderID:  uint(orderID),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list assignments", err)
		return
	}

	response.SuccessWithPage(c, assignments, response.NewPagination(page, pageSize, total))
}

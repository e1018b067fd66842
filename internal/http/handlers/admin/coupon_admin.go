package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"
	"github.com/haatbazar/internal/service"
)

// CouponCreateRequest 优惠券创建请求
type CouponCreateRequest struct {
	Code         string       `json:"code" binding:"required"`
	Type         string       `json:"type" binding:"required"`
	Value        models.Money `json:"value"`
	MinAmount    models.Money `json:"min_amount"`
	MaxDiscount  models.Money `json:"max_discount"`
	UsageLimit   int          `json:"usage_limit"`
	PerUserLimit int          `json:"per_user_limit"`
	ValidFrom    time.Time    `json:"valid_from" binding:"required"`
	ValidTo      time.Time    `json:"valid_to" binding:"required"`
	IsActive     bool         `json:"is_active"`
}

// CouponUpdateRequest 优惠券更新请求
type CouponUpdateRequest struct {
	Value        *models.Money `json:"value"`
	MinAmount    *models.Money `json:"min_amount"`
	MaxDiscount  *models.Money `json:"max_discount"`
	UsageLimit   *int          `json:"usage_limit"`
	PerUserLimit *int          `json:"per_user_limit"`
	ValidFrom    *time.Time    `json:"valid_from"`
	ValidTo      *time.Time    `json:"valid_to"`
	IsActive     *bool         `json:"is_active"`
}

// ListCoupons 优惠券列表
func (h *Handler) ListCoupons(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	coupons, total, err := h.CouponService.List(page, pageSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list coupons", err)
		return
	}

	response.SuccessWithPage(c, coupons, response.NewPagination(page, pageSize, total))
}

// GetCoupon 优惠券详情
func (h *Handler) GetCoupon(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid coupon id")
	if !ok {
		return
	}

	coupon, err := h.CouponService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			response.NotFound(c, "coupon not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load coupon", err)
		return
	}

	response.Success(c, coupon)
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CouponCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	coupon, err := h.CouponService.Create(service.CreateCouponInput{
		Code:         req.Code,
		Type:         req.Type,
		Value:        req.Value,
		MinAmount:    req.MinAmount,
		MaxDiscount:  req.MaxDiscount,
		UsageLimit:   req.UsageLimit,
		PerUserLimit: req.PerUserLimit,
		ValidFrom:    req.ValidFrom,
		ValidTo:      req.ValidTo,
		IsActive:     req.IsActive,
	})
	if err != nil {
		if errors.Is(err, service.ErrCouponInvalid) {
			response.BadRequest(c, "invalid coupon data")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to create coupon", err)
		return
	}

	response.Created(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid coupon id")
	if !ok {
		return
	}

	var req CouponUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	coupon, err := h.CouponService.Update(id, service.UpdateCouponInput{
		Value:        req.Value,
		MinAmount:    req.MinAmount,
		MaxDiscount:  req.MaxDiscount,
		UsageLimit:   req.UsageLimit,
		PerUserLimit: req.PerUserLimit,
		ValidFrom:    req.ValidFrom,
		ValidTo:      req.ValidTo,
		IsActive:     req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			response.NotFound(c, "coupon not found")
		case errors.Is(err, service.ErrCouponInvalid):
			response.BadRequest(c, "invalid coupon data")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update coupon", err)
		}
		return
	}

	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid coupon id")
	if !ok {
		return
	}

	if err := h.CouponService.Delete(id); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			response.NotFound(c, "coupon not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete coupon", err)
		return
	}

	response.NoContent(c)
}

// ListCouponRedeems 优惠券核销记录
func (h *Handler) ListCouponRedeems(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	couponID, _ := strconv.ParseUint(c.Query("coupon_id"), 10, 64)
	customerID, _ := strconv.ParseUint(c.Query("customer_id"), 10, 64)

	redeems, total, err := h.CouponService.ListRedeems(repository.CouponRedeemListFilter{
		Page:       page,
		PageSize:   pageSize,
		CouponID:   uint(couponID),
		CustomerID: uint(customerID),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list coupon redeems", err)
		return
	}

	response.SuccessWithPage(c, redeems, response.NewPagination(page, pageSize, total))
}

package public

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/service"
)

// WishlistItemRequest 心愿单项请求
type WishlistItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// GetWishlist 获取心愿单
func (h *Handler) GetWishlist(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	wishlist, err := h.WishlistService.Get(customerID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load wishlist", err)
		return
	}

	response.Success(c, wishlist)
}

// AddWishlistItem 加入心愿单
func (h *Handler) AddWishlistItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	var req WishlistItemRequest
	if !bindJSON(c, &req) {
		return
	}

	wishlist, err := h.WishlistService.AddItem(customerID, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.BadRequest(c, "product not found")
		case errors.Is(err, service.ErrWishlistItemExists):
			response.Conflict(c, "product already in wishlist")
		default:
			respondError(c, http.StatusInternalServerError, "failed to add wishlist item", err)
		}
		return
	}

	response.Success(c, wishlist)
}

// RemoveWishlistItem 移除心愿单项
func (h *Handler) RemoveWishlistItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		response.BadRequest(c, "invalid product id")
		return
	}

	wishlist, err := h.WishlistService.RemoveItem(customerID, uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrWishlistItemNotFound) {
			response.NotFound(c, "wishlist item not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to remove wishlist item", err)
		return
	}

	response.Success(c, wishlist)
}

package public

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/http/response"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CartQuantityRequest 购物车数量更新请求
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart 获取当前购物车
func (h *Handler) GetCart(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	cart, err := h.CartService.GetOrCreate(customerID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load cart", err)
		return
	}

	response.Success(c, cart)
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.CartService.AddItem(customerID, req.ProductID, req.Quantity)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, http.StatusInternalServerError, "failed to add cart item")
		return
	}

	response.Success(c, cart)
}

// UpdateCartItem 更新购物车项数量（0 表示移除）
func (h *Handler) UpdateCartItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		response.BadRequest(c, "invalid product id")
		return
	}

	var req CartQuantityRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.CartService.UpdateItem(customerID, uint(productID), req.Quantity)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, http.StatusInternalServerError, "failed to update cart item")
		return
	}

	response.Success(c, cart)
}

// RemoveCartItem 移除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		response.BadRequest(c, "invalid product id")
		return
	}

	cart, err := h.CartService.RemoveItem(customerID, uint(productID))
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, http.StatusInternalServerError, "failed to remove cart item")
		return
	}

	response.Success(c, cart)
}

// CartTotals 购物车合计
func (h *Handler) CartTotals(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	totals, err := h.CartService.Totals(customerID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to compute cart totals", err)
		return
	}

	response.Success(c, totals)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	if err := h.CartService.Clear(customerID); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to clear cart", err)
		return
	}

	response.NoContent(c)
}

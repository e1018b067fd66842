package public

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/service"
)

// AddressRequest 收货地址请求
type AddressRequest struct {
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	Division   string `json:"division"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default"`
}

func (r AddressRequest) toInput() service.AddressInput {
	return service.AddressInput{
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		Division:   r.Division,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		IsDefault:  r.IsDefault,
	}
}

func addressIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid address id")
		return 0, false
	}
	return uint(id), true
}

// ListAddresses 地址列表
func (h *Handler) ListAddresses(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	addresses, err := h.AddressService.List(customerID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list addresses", err)
		return
	}

	response.Success(c, addresses)
}

// CreateAddress 新增地址
func (h *Handler) CreateAddress(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	var req AddressRequest
	if !bindJSON(c, &req) {
		return
	}

	address, err := h.AddressService.Create(customerID, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrAddressInvalid) {
			response.BadRequest(c, "address line1 and city are required")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to create address", err)
		return
	}

	response.Created(c, address)
}

// UpdateAddress 更新地址
func (h *Handler) UpdateAddress(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	id, ok := addressIDParam(c)
	if !ok {
		return
	}

	var req AddressRequest
	if !bindJSON(c, &req) {
		return
	}

	address, err := h.AddressService.Update(id, customerID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAddressNotFound):
			response.NotFound(c, "address not found")
		case errors.Is(err, service.ErrAddressInvalid):
			response.BadRequest(c, "address line1 and city are required")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update address", err)
		}
		return
	}

	response.Success(c, address)
}

// SetDefaultAddress 设为默认地址
func (h *Handler) SetDefaultAddress(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	id, ok := addressIDParam(c)
	if !ok {
		return
	}

	if err := h.AddressService.SetDefault(id, customerID); err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			response.NotFound(c, "address not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to set default address", err)
		return
	}

	response.NoContent(c)
}

// DeleteAddress 删除地址
func (h *Handler) DeleteAddress(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	id, ok := addressIDParam(c)
	if !ok {
		return
	}

	if err := h.AddressService.Delete(id, customerID); err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			response.NotFound(c, "address not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete address", err)
		return
	}

	response.NoContent(c)
}

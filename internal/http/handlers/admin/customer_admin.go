package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/repository"
)

// ListCustomers 顾客列表
func (h *Handler) ListCustomers(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	customers, total, err := h.CustomerService.List(repository.CustomerListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("q"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list customers", err)
		return
	}

	response.SuccessWithPage(c, customers, response.NewPagination(page, pageSize, total))
}

// GetCustomer 顾客详情
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid customer id")
	if !ok {
		return
	}

	customer, err := h.CustomerService.Get(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load customer", err)
		return
	}
	if customer == nil {
		response.NotFound(c, "customer not found")
		return
	}

	response.Success(c, customer)
}

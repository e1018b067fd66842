package public

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/repository"
)

func productListFilter(c *gin.Context) repository.ProductListFilter {
	page, pageSize := handlershared.QueryPagination(c)
	tagID, _ := strconv.ParseUint(c.Query("tag_id"), 10, 64)
	return repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("q"),
		TagID:    uint(tagID),
		InStock:  c.Query("in_stock") == "true",
		OrderBy:  c.Query("order_by"),
	}
}

// ListProducts 商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	filter := productListFilter(c)
	products, total, err := h.ProductService.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list products", err)
		return
	}

	response.SuccessWithPage(c, products, response.NewPagination(filter.Page, filter.PageSize, total))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid product id")
		return
	}

	product, err := h.ProductService.Get(uint(id))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load product", err)
		return
	}
	if product == nil {
		response.NotFound(c, "product not found")
		return
	}

	response.Success(c, product)
}

// ListTags 标签列表
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.TagService.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list tags", err)
		return
	}

	response.Success(c, tags)
}

// SearchProducts 商品搜索（登录用户会记录搜索历史）
func (h *Handler) SearchProducts(c *gin.Context) {
	filter := productListFilter(c)
	customerID := optionalCustomerID(c)

	products, total, err := h.SearchService.Search(customerID, filter)
	if err != nil {
		respondWithMappedError(c, err, searchErrorRules, http.StatusInternalServerError, "search failed")
		return
	}

	response.SuccessWithPage(c, products, response.NewPagination(filter.Page, filter.PageSize, total))
}

// SearchHistoryList 搜索历史
func (h *Handler) SearchHistoryList(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.SearchService.History(customerID, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load search history", err)
		return
	}

	response.Success(c, entries)
}

// ClearSearchHistory 清空搜索历史
func (h *Handler) ClearSearchHistory(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	if err := h.SearchService.ClearHistory(customerID); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to clear search history", err)
		return
	}

	response.NoContent(c)
}

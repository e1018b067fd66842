package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"
	"github.com/haatbazar/internal/service"
)

// ProductCreateRequest 商品创建请求
type ProductCreateRequest struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Price       models.Money `json:"price"`
	Stock       int          `json:"stock"`
	ImageURL    string       `json:"image_url"`
	TagIDs      []uint       `json:"tag_ids"`
}

// ProductUpdateRequest 商品更新请求
type ProductUpdateRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Price       *models.Money `json:"price"`
	Stock       *int          `json:"stock"`
	ImageURL    *string       `json:"image_url"`
}

// ListProducts 商品列表（含库存筛选）
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	filter := repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("q"),
		InStock:  c.Query("in_stock") == "true",
		OrderBy:  c.Query("order_by"),
	}

	products, total, err := h.ProductService.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list products", err)
		return
	}

	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.ProductService.Create(service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductInvalid):
			response.BadRequest(c, "invalid product data")
		case errors.Is(err, service.ErrTagNotFound):
			response.BadRequest(c, "tag not found")
		default:
			respondError(c, http.StatusInternalServerError, "failed to create product", err)
		}
		return
	}

	response.Created(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid product id")
	if !ok {
		return
	}

	var req ProductUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.ProductService.Update(id, service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.NotFound(c, "product not found")
		case errors.Is(err, service.ErrProductInvalid):
			response.BadRequest(c, "invalid product data")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update product", err)
		}
		return
	}

	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid product id")
	if !ok {
		return
	}

	if err := h.ProductService.Delete(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, "product not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete product", err)
		return
	}

	response.NoContent(c)
}

// AttachProductTag 为商品附加标签
func (h *Handler) AttachProductTag(c *gin.Context) {
	productID, ok := uintParam(c, "id", "invalid product id")
	if !ok {
		return
	}
	tagID, ok := uintParam(c, "tag_id", "invalid tag id")
	if !ok {
		return
	}

	if err := h.ProductService.AttachTag(productID, tagID); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.NotFound(c, "product not found")
		case errors.Is(err, service.ErrTagNotFound):
			response.NotFound(c, "tag not found")
		default:
			respondError(c, http.StatusInternalServerError, "failed to attach tag", err)
		}
		return
	}

	response.NoContent(c)
}

// DetachProductTag 为商品移除标签
func (h *Handler) DetachProductTag(c *gin.Context) {
	productID, ok := uintParam(c, "id", "invalid product id")
	if !ok {
		return
	}
	tagID, ok := uintParam(c, "tag_id", "invalid tag id")
	if !ok {
		return
	}

	if err := h.ProductService.DetachTag(productID, tagID); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.NotFound(c, "product not found")
		case errors.Is(err, service.ErrTagNotFound):
			response.NotFound(c, "tag not found")
		default:
			respondError(c, http.StatusInternalServerError, "failed to detach tag", err)
		}
		return
	}

	response.NoContent(c)
}

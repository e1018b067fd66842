package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 错误响应结构
type ErrorBody struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// NewPagination 计算分页信息
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 无内容响应
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, items interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		Items:      items,
		Pagination: pagination,
	})
}

// Error 错误响应
func Error(c *gin.Context, status int, detail string) {
	c.JSON(status, ErrorBody{
		Detail:    detail,
		RequestID: requestID(c),
	})
}

// NotFound 404响应
func NotFound(c *gin.Context, detail string) {
	Error(c, http.StatusNotFound, detail)
}

// Unauthorized 401响应
func Unauthorized(c *gin.Context, detail string) {
	Error(c, http.StatusUnauthorized, detail)
}

// Forbidden 403响应
func Forbidden(c *gin.Context, detail string) {
	Error(c, http.StatusForbidden, detail)
}

// BadRequest 400响应
func BadRequest(c *gin.Context, detail string) {
	Error(c, http.StatusBadRequest, detail)
}

// Conflict 409响应
func Conflict(c *gin.Context, detail string) {
	Error(c, http.StatusConflict, detail)
}

// UnprocessableEntity 422响应
func UnprocessableEntity(c *gin.Context, detail string) {
	Error(c, http.StatusUnprocessableEntity, detail)
}

// Internal 500响应
func Internal(c *gin.Context, detail string) {
	Error(c, http.StatusInternalServerError, detail)
}

func requestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

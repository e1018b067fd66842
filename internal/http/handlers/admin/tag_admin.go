package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/service"
)

// TagCreateRequest 标签创建请求
type TagCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// TagUpdateRequest 标签更新请求
type TagUpdateRequest struct {
	Name        *string `json:"name"`
	ParentID    *uint   `json:"parent_id"`
	ClearParent bool    `json:"clear_parent"`
}

func respondTagError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTagNotFound):
		response.NotFound(c, "tag not found")
	case errors.Is(err, service.ErrTagNameInvalid):
		response.BadRequest(c, "invalid tag name")
	case errors.Is(err, service.ErrTagNameTaken):
		response.Conflict(c, "tag name already exists")
	case errors.Is(err, service.ErrTagCycleDetected):
		response.BadRequest(c, "tag hierarchy would form a cycle")
	case errors.Is(err, service.ErrTagHasProducts):
		response.Conflict(c, "tag still has products or child tags")
	default:
		respondError(c, http.StatusInternalServerError, fallback, err)
	}
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

// CreateTag 创建标签
func (h *Handler) CreateTag(c *gin.Context) {
	var req TagCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.TagService.Create(req.Name, req.ParentID)
	if err != nil {
		respondTagError(c, err, "failed to create tag")
		return
	}

	response.Created(c, tag)
}

// UpdateTag 更新标签
func (h *Handler) UpdateTag(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid tag id")
	if !ok {
		return
	}

	var req TagUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.TagService.Update(id, service.UpdateTagInput{
		Name:        req.Name,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
	})
	if err != nil {
		respondTagError(c, err, "failed to update tag")
		return
	}

	response.Success(c, tag)
}

// DeleteTag 删除标签
func (h *Handler) DeleteTag(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid tag id")
	if !ok {
		return
	}

	if err := h.TagService.Delete(id); err != nil {
		respondTagError(c, err, "failed to delete tag")
		return
	}

	response.NoContent(c)
}

package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/service"
)

// AdminCreateRequest 管理员创建请求
type AdminCreateRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
	Role     string `json:"role" binding:"required"`
}

// AdminRoleRequest 管理员角色调整请求
type AdminRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func respondAdminManageError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrRoleInvalid):
		response.BadRequest(c, "invalid admin role")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.BadRequest(c, "username, email and password are required")
	case errors.Is(err, service.ErrUsernameTaken):
		response.Conflict(c, "username already taken")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, "email already taken")
	case errors.Is(err, service.ErrAdminNotFound):
		response.NotFound(c, "admin not found")
	case errors.Is(err, service.ErrForbidden):
		response.Conflict(c, "cannot remove or demote the last superadmin")
	default:
		respondError(c, http.StatusInternalServerError, fallback, err)
	}
}

// ListAdmins 管理员列表
func (h *Handler) ListAdmins(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	admins, total, err := h.AdminService.List(page, pageSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list admins", err)
		return
	}

	response.SuccessWithPage(c, admins, response.NewPagination(page, pageSize, total))
}

// CreateAdmin 创建管理员账号
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req AdminCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.AdminService.Create(service.CreateAdminInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		respondAdminManageError(c, err, "failed to create admin")
		return
	}

	if h.Authz != nil {
		if err := h.Authz.SetAdminRole(created.ID, created.Role); err != nil {
			requestLog(c).Errorw("admin_role_grant_failed", "admin_id", created.ID, "role", created.Role, "error", err)
		}
	}

	response.Created(c, created)
}

// UpdateAdminRole 调整管理员角色
func (h *Handler) UpdateAdminRole(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid admin id")
	if !ok {
		return
	}

	var req AdminRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.AdminService.UpdateRole(id, req.Role)
	if err != nil {
		respondAdminManageError(c, err, "failed to update admin role")
		return
	}

	if h.Authz != nil {
		if err := h.Authz.SetAdminRole(updated.ID, updated.Role); err != nil {
			requestLog(c).Errorw("admin_role_update_failed", "admin_id", updated.ID, "role", updated.Role, "error", err)
		}
	}

	response.Success(c, updated)
}

// RemoveAdmin 移除管理员
func (h *Handler) RemoveAdmin(c *gin.Context) {
	id, ok := uintParam(c, "id", "invalid admin id")
	if !ok {
		return
	}

	if err := h.AdminService.Remove(id); err != nil {
		respondAdminManageError(c, err, "failed to remove admin")
		return
	}

	if h.Authz != nil {
		if err := h.Authz.RemoveAdmin(id); err != nil {
			requestLog(c).Errorw("admin_role_revoke_failed", "admin_id", id, "error", err)
		}
	}

	response.NoContent(c)
}

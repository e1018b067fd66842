package public

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/service"
)

// RegisterRequest 顾客注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Register 顾客注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.UserAuthService.RegisterCustomer(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, http.StatusInternalServerError, "registration failed")
		return
	}

	response.Created(c, customer)
}

// LoginCustomer 顾客登录
func (h *Handler) LoginCustomer(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.UserAuthService.LoginCustomer(req.Username, req.Password)
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, http.StatusInternalServerError, "login failed")
		return
	}

	response.Success(c, result)
}

// LoginRider 骑手登录
func (h *Handler) LoginRider(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.UserAuthService.LoginRider(req.Username, req.Password)
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, http.StatusInternalServerError, "login failed")
		return
	}

	response.Success(c, result)
}

// ChangePassword 修改登录密码
func (h *Handler) ChangePassword(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.UserAuthService.ChangePassword(uid, req.OldPassword, req.NewPassword); err != nil {
		respondWithMappedError(c, err, authErrorRules, http.StatusInternalServerError, "password change failed")
		return
	}

	response.NoContent(c)
}

// Profile 当前顾客资料
func (h *Handler) Profile(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	customer, err := h.CustomerService.Get(customerID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load profile", err)
		return
	}
	if customer == nil {
		response.NotFound(c, "customer not found")
		return
	}

	response.Success(c, customer)
}

// UpdateProfileRequest 更新资料请求
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
}

// UpdateProfile 更新当前顾客资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	input := service.UpdateProfileInput{
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if req.BirthDate != nil {
		birthDate, ok := parseDate(c, *req.BirthDate)
		if !ok {
			return
		}
		input.BirthDate = birthDate
	}

	customer, err := h.CustomerService.UpdateProfile(customerID, input)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update profile", err)
		return
	}

	response.Success(c, customer)
}

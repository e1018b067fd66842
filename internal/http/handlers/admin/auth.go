package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/service"
)

// AdminLoginRequest 管理员登录请求
type AdminLoginRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req AdminLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.AuthService.Login(service.LoginInput{
		Username:    req.Username,
		Password:    req.Password,
		CaptchaID:   req.CaptchaID,
		CaptchaCode: req.CaptchaCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaRequired):
			response.BadRequest(c, "captcha required")
		case errors.Is(err, service.ErrCaptchaInvalid):
			response.BadRequest(c, "captcha invalid")
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAdminNotFound):
			response.Unauthorized(c, "invalid credentials")
		default:
			respondError(c, http.StatusInternalServerError, "login failed", err)
		}
		return
	}

	response.Success(c, result)
}

// Captcha 生成登录图片验证码
func (h *Handler) Captcha(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to generate captcha", err)
		return
	}

	response.Success(c, challenge)
}

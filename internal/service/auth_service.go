package service

import (
	"strings"
	"time"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AdminClaims 管理端 JWT 载荷
type AdminClaims struct {
	UserID   uint   `json:"user_id"`
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService 管理端认证服务
type AuthService struct {
	userRepo       repository.UserRepository
	adminRepo      repository.AdminRepository
	captchaService *CaptchaService
	secretKey      string
	expireMinutes  int
}

// NewAuthService 创建管理端认证服务
func NewAuthService(userRepo repository.UserRepository, adminRepo repository.AdminRepository, captchaService *CaptchaService, secretKey string, expireMinutes int) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		adminRepo:      adminRepo,
		captchaService: captchaService,
		secretKey:      secretKey,
		expireMinutes:  expireMinutes,
	}
}

// GenerateToken 签发管理端 JWT
func (s *AuthService) GenerateToken(user *models.User, admin *models.Admin) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		UserID:   user.ID,
		AdminID:  admin.ID,
		Username: user.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expireMinutes) * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ParseToken 解析管理端 JWT
func (s *AuthService) ParseToken(tokenString string) (*AdminClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// LoginInput 管理端登录输入
type LoginInput struct {
	Username    string
	Password    string
	CaptchaID   string
	CaptchaCode string
}

// LoginResult 管理端登录结果
type LoginResult struct {
	Token string        `json:"token"`
	Admin *models.Admin `json:"admin"`
}

// Login 管理员登录
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	if s.captchaService != nil {
		if err := s.captchaService.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{
			CaptchaID:   input.CaptchaID,
			CaptchaCode: input.CaptchaCode,
		}); err != nil {
			return nil, err
		}
	}

	username := strings.TrimSpace(input.Username)
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.adminRepo.GetByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user, admin)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.TouchLastLogin(user.ID, time.Now()); err != nil {
		return nil, err
	}
	admin.User = user
	return &LoginResult{Token: token, Admin: admin}, nil
}

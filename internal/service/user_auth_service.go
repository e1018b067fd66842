package service

import (
	"net/mail"
	"strings"
	"time"

	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 用户侧 JWT 主体类型
const (
	ActorCustomer = "customer"
	ActorRider    = "rider"
)

// UserClaims 用户侧 JWT 载荷（顾客与骑手共用）
type UserClaims struct {
	UserID   uint   `json:"user_id"`
	ActorID  uint   `json:"actor_id"`
	Actor    string `json:"actor"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserAuthService 用户侧认证服务
type UserAuthService struct {
	userRepo      repository.UserRepository
	customerRepo  repository.CustomerRepository
	riderRepo     repository.RiderRepository
	secretKey     string
	expireMinutes int
}

// NewUserAuthService 创建用户侧认证服务
func NewUserAuthService(userRepo repository.UserRepository, customerRepo repository.CustomerRepository, riderRepo repository.RiderRepository, secretKey string, expireMinutes int) *UserAuthService {
	return &UserAuthService{
		userRepo:      userRepo,
		customerRepo:  customerRepo,
		riderRepo:     riderRepo,
		secretKey:     secretKey,
		expireMinutes: expireMinutes,
	}
}

func (s *UserAuthService) generateToken(user *models.User, actorID uint, actor string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:   user.ID,
		ActorID:  actorID,
		Actor:    actor,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expireMinutes) * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ParseToken 解析用户侧 JWT
func (s *UserAuthService) ParseToken(tokenString string) (*UserClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// RegisterInput 顾客注册输入
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
}

// RegisterCustomer 注册顾客账号
func (s *UserAuthService) RegisterCustomer(input RegisterInput) (*models.Customer, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || len(input.Password) < 6 {
		return nil, ErrInvalidCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{Phone: strings.TrimSpace(input.Phone)}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		customerRepo := s.customerRepo.WithTx(tx)
		user := &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			FullName:     strings.TrimSpace(input.FullName),
		}
		if err := userRepo.Create(user); err != nil {
			return err
		}
		customer.UserID = user.ID
		return customerRepo.Create(customer)
	})
	if err != nil {
		return nil, err
	}
	return s.customerRepo.GetByID(customer.ID)
}

// UserLoginResult 用户侧登录结果
type UserLoginResult struct {
	Token    string           `json:"token"`
	Customer *models.Customer `json:"customer,omitempty"`
	Rider    *models.Rider    `json:"rider,omitempty"`
}

func (s *UserAuthService) authenticate(username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// LoginCustomer 顾客登录
func (s *UserAuthService) LoginCustomer(username, password string) (*UserLoginResult, error) {
	user, err := s.authenticate(username, password)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user, customer.ID, ActorCustomer)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.TouchLastLogin(user.ID, time.Now()); err != nil {
		return nil, err
	}
	customer.User = user
	return &UserLoginResult{Token: token, Customer: customer}, nil
}

// LoginRider 骑手登录
func (s *UserAuthService) LoginRider(username, password string) (*UserLoginResult, error) {
	user, err := s.authenticate(username, password)
	if err != nil {
		return nil, err
	}
	rider, err := s.riderRepo.GetByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	if rider == nil || !rider.IsActive {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user, rider.ID, ActorRider)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.TouchLastLogin(user.ID, time.Now()); err != nil {
		return nil, err
	}
	rider.User = user
	return &UserLoginResult{Token: token, Rider: rider}, nil
}

// ChangePassword 修改登录密码
func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.userRepo.Update(user)
}

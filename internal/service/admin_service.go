package service

import (
	"strings"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminService 管理员账号管理服务
type AdminService struct {
	adminRepo repository.AdminRepository
	userRepo  repository.UserRepository
}

// NewAdminService 创建管理员管理服务
func NewAdminService(adminRepo repository.AdminRepository, userRepo repository.UserRepository) *AdminService {
	return &AdminService{adminRepo: adminRepo, userRepo: userRepo}
}

func validAdminRole(role string) bool {
	switch role {
	case constants.RoleSuperadmin, constants.RoleProduct, constants.RoleSales:
		return true
	}
	return false
}

// CreateAdminInput 创建管理员输入
type CreateAdminInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

// Create 创建管理员账号
func (s *AdminService) Create(input CreateAdminInput) (*models.Admin, error) {
	if !validAdminRole(input.Role) {
		return nil, ErrRoleInvalid
	}
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || len(input.Password) < 6 {
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

	admin := &models.Admin{Role: input.Role}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		adminRepo := s.adminRepo.WithTx(tx)
		user := &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			FullName:     strings.TrimSpace(input.FullName),
		}
		if err := userRepo.Create(user); err != nil {
			return err
		}
		admin.UserID = user.ID
		return adminRepo.Create(admin)
	})
	if err != nil {
		return nil, err
	}
	return s.adminRepo.GetByID(admin.ID)
}

// List 分页查询管理员
func (s *AdminService) List(page, pageSize int) ([]models.Admin, int64, error) {
	return s.adminRepo.List(page, pageSize)
}

// UpdateRole 调整管理员角色（最后一个超级管理员不可降级）
func (s *AdminService) UpdateRole(id uint, role string) (*models.Admin, error) {
	if !validAdminRole(role) {
		return nil, ErrRoleInvalid
	}
	admin, err := s.adminRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	if admin.IsSuper() && role != constants.RoleSuperadmin {
		if err := s.ensureAnotherSuper(admin.ID); err != nil {
			return nil, err
		}
	}
	if err := s.adminRepo.UpdateRole(id, role); err != nil {
		return nil, err
	}
	return s.adminRepo.GetByID(id)
}

// Remove 移除管理员（保留其账号）
func (s *AdminService) Remove(id uint) error {
	admin, err := s.adminRepo.GetByID(id)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrAdminNotFound
	}
	if admin.IsSuper() {
		if err := s.ensureAnotherSuper(admin.ID); err != nil {
			return err
		}
	}
	return s.adminRepo.Delete(id)
}

// ensureAnotherSuper 确认除指定管理员外仍有超级管理员
func (s *AdminService) ensureAnotherSuper(excludeID uint) error {
	admins, _, err := s.adminRepo.List(1, 1000)
	if err != nil {
		return err
	}
	for _, other := range admins {
		if other.ID != excludeID && other.IsSuper() {
			return nil
		}
	}
	return ErrForbidden
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/mowen-blog/internal/cache"
	"github.com/mowen-blog/internal/config"
	"github.com/mowen-blog/internal/constants"
	"github.com/mowen-blog/internal/models"
	"github.com/mowen-blog/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserService 用户管理服务，仅由超管路由调用（路由层做角色门禁）
type UserService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewUserService 创建用户管理服务
func NewUserService(cfg *config.Config, userRepo repository.UserRepository) *UserService {
	return &UserService{cfg: cfg, userRepo: userRepo}
}

// CreateUserInput 后台创建用户输入
type CreateUserInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
}

// UpdateUserInput 后台更新用户输入，nil 字段表示不修改
type UpdateUserInput struct {
	DisplayName *string
	Role        *string
	Status      *string
}

// List 用户列表
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// GetByID 获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Create 后台创建用户，可直接指定角色
func (s *UserService) Create(input CreateUserInput) (*models.User, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = constants.RoleSubscriber
	}
	if !isKnownRole(role) {
		return nil, ErrInvalidRole
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	nickname := strings.TrimSpace(input.DisplayName)
	if nickname == "" {
		nickname = resolveNicknameFromEmail(normalized)
	}
	user := &models.User{
		Email:        normalized,
		PasswordHash: string(hashedPassword),
		DisplayName:  nickname,
		Role:         role,
		Status:       constants.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update 更新用户角色、状态或昵称。
// 角色或状态变化会递增 token_version，使已签发 Token 全部失效。
func (s *UserService) Update(id uint, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	revoke := false
	if input.DisplayName != nil {
		if nickname := strings.TrimSpace(*input.DisplayName); nickname != "" {
			user.DisplayName = nickname
		}
	}
	if input.Role != nil {
		role := strings.TrimSpace(*input.Role)
		if !isKnownRole(role) {
			return nil, ErrInvalidRole
		}
		if role != user.Role {
			if user.Role == constants.RoleSuperAdmin {
				if err := s.ensureAnotherSuperAdmin(user.ID); err != nil {
					return nil, err
				}
			}
			user.Role = role
			revoke = true
		}
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
			return nil, ErrInvalidStatus
		}
		if status != user.Status {
			if status == constants.UserStatusDisabled && user.Role == constants.RoleSuperAdmin {
				if err := s.ensureAnotherSuperAdmin(user.ID); err != nil {
					return nil, err
				}
			}
			user.Status = status
			revoke = true
		}
	}

	now := time.Now()
	user.UpdatedAt = now
	if revoke {
		user.TokenVersion++
		user.TokenInvalidBefore = &now
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, nil
}

// Delete 删除用户（软删除）
func (s *UserService) Delete(id uint) error {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if user.Role == constants.RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(user.ID); err != nil {
			return err
		}
	}
	if err := s.userRepo.Delete(id); err != nil {
		return err
	}
	_ = cache.DelUserAuthState(context.Background(), id)
	return nil
}

// ensureAnotherSuperAdmin 确保除目标用户外仍有在用的超管
func (s *UserService) ensureAnotherSuperAdmin(excludeID uint) error {
	users, _, err := s.userRepo.List(repository.UserListFilter{
		Role:     constants.RoleSuperAdmin,
		Status:   constants.UserStatusActive,
		PageSize: constants.MaxPageSize,
	})
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID != excludeID {
			return nil
		}
	}
	return ErrLastSuperAdmin
}

func isKnownRole(role string) bool {
	switch role {
	case constants.RoleSubscriber, constants.RoleEditor, constants.RoleSuperAdmin:
		return true
	default:
		return false
	}
}

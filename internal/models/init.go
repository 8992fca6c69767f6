package models

import (
	"strings"

	"github.com/mowen-blog/internal/constants"
	"github.com/mowen-blog/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultSuperAdmin 初始化默认超级管理员账号
func InitDefaultSuperAdmin(email, password string) error {
	var count int64
	DB.Model(&User{}).Where("role = ?", constants.RoleSuperAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	if email == "" {
		email = "admin@mowen.local"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		DisplayName:  "admin",
		Role:         constants.RoleSuperAdmin,
		Status:       constants.UserStatusActive,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_super_admin_created_with_default_password", "email", admin.Email)
		logger.Warnw("default_super_admin_password_change_required", "email", admin.Email)
	} else {
		logger.Warnw("default_super_admin_created", "email", admin.Email, "password_hidden", true)
	}
	return nil
}

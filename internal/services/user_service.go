package services

import (
	"fmt"
	"time"

	"gymhub/internal/models"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Create 创建员工账号
func (s *UserService) Create(user *models.User, password string) (*models.User, error) {
	// 检查用户名和邮箱是否重复
	var count int64
	s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", user.Username, user.Email).
		Count(&count)
	if count > 0 {
		return nil, gorm.ErrDuplicatedKey
	}

	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("密码加密失败: %v", err)
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	err := s.db.Create(user).Error
	return user, err
}

// GetByID 根据ID获取员工
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	return &user, err
}

// GetByUsername 根据用户名获取员工
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	return &user, err
}

// Authenticate 校验用户名密码，成功后更新最后登录时间
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, fmt.Errorf("用户名或密码错误")
	}
	if !s.IsActive(user) {
		return nil, fmt.Errorf("账号已被禁用")
	}

	now := time.Now()
	user.LastLoginAt = &now
	s.db.Model(user).Update("last_login_at", now)

	return user, nil
}

// GetByGymWithPage 获取场馆员工（分页）
func (s *UserService) GetByGymWithPage(gymID uint, page, pageSize int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := s.db.Model(&models.User{}).Where("gym_id = ?", gymID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// IsActive 检查员工账号是否可用
func (s *UserService) IsActive(user *models.User) bool {
	return user.Status == models.UserStatusActive
}

// ResetPassword 重置密码
func (s *UserService) ResetPassword(id uint, newPassword string) error {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.db.Model(&user).Update("password_hash", user.PasswordHash).Error
}

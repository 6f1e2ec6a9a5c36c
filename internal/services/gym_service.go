package services

import (
	"fmt"
	"unicode/utf8"

	"gymhub/internal/models"

	"gorm.io/gorm"
)

type GymService struct {
	db *gorm.DB
}

// GymStats 场馆统计信息
type GymStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

func NewGymService(db *gorm.DB) *GymService {
	return &GymService{db: db}
}

// Create 创建场馆
func (s *GymService) Create(name, code string) (*models.Gym, error) {
	// 验证参数
	if err := s.ValidateCreateParams(name, code); err != nil {
		return nil, err
	}

	// 检查代码是否重复
	var count int64
	s.db.Model(&models.Gym{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		return nil, gorm.ErrDuplicatedKey
	}

	gym := &models.Gym{
		Name:   name,
		Code:   code,
		Status: models.GymStatusActive,
	}

	err := s.db.Create(gym).Error
	return gym, err
}

// GetByID 根据ID获取场馆
func (s *GymService) GetByID(id uint) (*models.Gym, error) {
	var gym models.Gym
	err := s.db.First(&gym, id).Error
	return &gym, err
}

// GetAllActive 获取所有激活的场馆
func (s *GymService) GetAllActive() ([]*models.Gym, error) {
	var gyms []*models.Gym
	err := s.db.Model(&models.Gym{}).
		Where("status = ?", models.GymStatusActive).
		Order("created_at DESC").
		Find(&gyms).Error

	// 统计每个场馆的会员数量
	for i := range gyms {
		var memberCount int64
		s.db.Model(&models.Member{}).Where("gym_id = ?", gyms[i].ID).Count(&memberCount)
		gyms[i].MemberCount = int(memberCount)
	}

	return gyms, err
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *GymService) GetWithFiltersAndPage(status, keyword string, page, pageSize int) ([]*models.Gym, int64, error) {
	var gyms []*models.Gym
	var total int64

	query := s.db.Model(&models.Gym{})

	// 添加过滤条件
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR code LIKE ?", searchPattern, searchPattern)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&gyms).Error
	if err != nil {
		return nil, 0, err
	}

	return gyms, total, nil
}

// Update 更新场馆
func (s *GymService) Update(id uint, name, status string) (*models.Gym, error) {
	var gym models.Gym
	err := s.db.First(&gym, id).Error
	if err != nil {
		return nil, err
	}

	if name != "" {
		if !s.ValidateName(name) {
			return nil, fmt.Errorf("场馆名称长度必须在2-50个字符之间")
		}
		gym.Name = name
	}
	if status != "" {
		if !s.IsValidStatus(status) {
			return nil, fmt.Errorf("状态只能是 active 或 inactive")
		}
		gym.Status = status
	}

	err = s.db.Save(&gym).Error
	return &gym, err
}

// Delete 删除场馆
func (s *GymService) Delete(id uint) error {
	return s.db.Delete(&models.Gym{}, id).Error
}

// Activate 激活场馆
func (s *GymService) Activate(id uint) (*models.Gym, error) {
	var gym models.Gym
	err := s.db.First(&gym, id).Error
	if err != nil {
		return nil, err
	}

	gym.Status = models.GymStatusActive
	err = s.db.Save(&gym).Error
	return &gym, err
}

// Deactivate 停用场馆
func (s *GymService) Deactivate(id uint) (*models.Gym, error) {
	var gym models.Gym
	err := s.db.First(&gym, id).Error
	if err != nil {
		return nil, err
	}

	gym.Status = models.GymStatusInactive
	err = s.db.Save(&gym).Error
	return &gym, err
}

// GetStats 获取场馆统计
func (s *GymService) GetStats() (*GymStats, error) {
	stats := &GymStats{}

	s.db.Model(&models.Gym{}).Count(&stats.Total)
	s.db.Model(&models.Gym{}).Where("status = ?", models.GymStatusActive).Count(&stats.Active)
	s.db.Model(&models.Gym{}).Where("status = ?", models.GymStatusInactive).Count(&stats.Inactive)

	return stats, nil
}

// IsValidStatus 检查场馆状态是否有效
func (s *GymService) IsValidStatus(status string) bool {
	switch status {
	case models.GymStatusActive, models.GymStatusInactive:
		return true
	default:
		return false
	}
}

// ========== 验证相关方法 ==========

// ValidateName 验证场馆名称长度（按字符数而非字节数）
func (s *GymService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 50
}

// ValidateCode 验证场馆代码
func (s *GymService) ValidateCode(code string) bool {
	if len(code) < 2 || len(code) > 20 {
		return false
	}
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// ValidateCreateParams 校验创建参数
func (s *GymService) ValidateCreateParams(name, code string) error {
	if !s.ValidateName(name) {
		return fmt.Errorf("场馆名称长度必须在2-50个字符之间")
	}
	if !s.ValidateCode(code) {
		return fmt.Errorf("场馆代码长度必须在2-20个字符之间，且只能包含字母和数字")
	}
	return nil
}

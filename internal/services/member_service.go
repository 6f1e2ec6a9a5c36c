package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gymhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberService struct {
	db *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

// GenerateMemberCode 生成会员编号（MEM + 8位大写十六进制）
func GenerateMemberCode() string {
	return "MEM" + strings.ToUpper(uuid.NewString()[:8])
}

// Create 创建会员，编号为空时自动生成
func (s *MemberService) Create(member *models.Member) (*models.Member, error) {
	if member.Code == "" {
		member.Code = GenerateMemberCode()
	}
	if member.Status == "" {
		member.Status = models.MemberStatusActive
	}
	if member.JoinedAt == nil {
		now := time.Now()
		member.JoinedAt = &now
	}

	// 检查编号在场馆内是否重复
	var count int64
	s.db.Model(&models.Member{}).
		Where("gym_id = ? AND code = ?", member.GymID, member.Code).
		Count(&count)
	if count > 0 {
		return nil, gorm.ErrDuplicatedKey
	}

	err := s.db.Create(member).Error
	return member, err
}

// GetByID 根据ID获取会员（限定场馆）
func (s *MemberService) GetByID(gymID, id uint) (*models.Member, error) {
	var member models.Member
	err := s.db.Where("gym_id = ?", gymID).First(&member, id).Error
	return &member, err
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *MemberService) GetWithFiltersAndPage(gymID uint, status, keyword string, page, pageSize int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	query := s.db.Model(&models.Member{}).Where("gym_id = ?", gymID)

	// 添加过滤条件
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR code LIKE ? OR phone LIKE ?", searchPattern, searchPattern, searchPattern)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&members).Error
	if err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// Update 更新会员基础信息
func (s *MemberService) Update(gymID, id uint, name string, phone, gender, note *string, status string) (*models.Member, error) {
	var member models.Member
	if err := s.db.Where("gym_id = ?", gymID).First(&member, id).Error; err != nil {
		return nil, err
	}

	if name != "" {
		member.Name = name
	}
	if phone != nil {
		member.Phone = phone
	}
	if gender != nil {
		member.Gender = gender
	}
	if note != nil {
		member.Note = note
	}
	if status != "" {
		if !s.IsValidStatus(status) {
			return nil, fmt.Errorf("状态只能是 active、inactive 或 suspended")
		}
		member.Status = status
	}

	err := s.db.Save(&member).Error
	return &member, err
}

// Delete 删除会员
func (s *MemberService) Delete(gymID, id uint) error {
	return s.db.Where("gym_id = ?", gymID).Delete(&models.Member{}, id).Error
}

// IsValidStatus 检查会员状态是否有效
func (s *MemberService) IsValidStatus(status string) bool {
	switch status {
	case models.MemberStatusActive, models.MemberStatusInactive, models.MemberStatusSuspended:
		return true
	default:
		return false
	}
}

// ========== 考勤引擎使用的目录查询 ==========

// FindByCode 按会员编号查找，不过滤状态。gymID为0时跨场馆查找，不存在返回nil
func (s *MemberService) FindByCode(gymID uint, code string) (*models.Member, error) {
	var member models.Member
	query := s.db.Where("code = ?", code)
	if gymID != 0 {
		query = query.Where("gym_id = ?", gymID)
	}
	err := query.First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindWithMemberships 按内部ID查找并预加载状态为active的会籍
func (s *MemberService) FindWithMemberships(memberID uint) (*models.Member, error) {
	var member models.Member
	err := s.db.
		Preload("Memberships", "status = ?", models.MembershipStatusActive).
		First(&member, memberID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

package services

import (
	"fmt"
	"time"

	"gymhub/internal/models"

	"gorm.io/gorm"
)

type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// Create 为会员开通会籍
func (s *MembershipService) Create(membership *models.Membership) (*models.Membership, error) {
	if membership.EndDate.Before(membership.StartDate) {
		return nil, fmt.Errorf("会籍结束日期不能早于开始日期")
	}
	if membership.Status == "" {
		membership.Status = models.MembershipStatusActive
	}

	// 确认会员存在且属于同一场馆
	var count int64
	s.db.Model(&models.Member{}).
		Where("id = ? AND gym_id = ?", membership.MemberID, membership.GymID).
		Count(&count)
	if count == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	err := s.db.Create(membership).Error
	return membership, err
}

// GetByID 根据ID获取会籍（限定场馆）
func (s *MembershipService) GetByID(gymID, id uint) (*models.Membership, error) {
	var membership models.Membership
	err := s.db.Where("gym_id = ?", gymID).First(&membership, id).Error
	return &membership, err
}

// GetByMember 获取会员的全部会籍（按开始日期降序）
func (s *MembershipService) GetByMember(gymID, memberID uint) ([]*models.Membership, error) {
	var memberships []*models.Membership
	err := s.db.
		Where("gym_id = ? AND member_id = ?", gymID, memberID).
		Order("start_date DESC").
		Find(&memberships).Error
	return memberships, err
}

// Update 更新会籍
func (s *MembershipService) Update(gymID, id uint, status string, endDate *time.Time) (*models.Membership, error) {
	var membership models.Membership
	if err := s.db.Where("gym_id = ?", gymID).First(&membership, id).Error; err != nil {
		return nil, err
	}

	if status != "" {
		if !s.IsValidStatus(status) {
			return nil, fmt.Errorf("状态只能是 active、trial、expired 或 cancelled")
		}
		membership.Status = status
	}
	if endDate != nil {
		if endDate.Before(membership.StartDate) {
			return nil, fmt.Errorf("会籍结束日期不能早于开始日期")
		}
		membership.EndDate = *endDate
	}

	err := s.db.Save(&membership).Error
	return &membership, err
}

// Delete 删除会籍
func (s *MembershipService) Delete(gymID, id uint) error {
	return s.db.Where("gym_id = ?", gymID).Delete(&models.Membership{}, id).Error
}

// IsValidStatus 检查会籍状态是否有效
func (s *MembershipService) IsValidStatus(status string) bool {
	switch status {
	case models.MembershipStatusActive, models.MembershipStatusTrial,
		models.MembershipStatusExpired, models.MembershipStatusCancelled:
		return true
	default:
		return false
	}
}

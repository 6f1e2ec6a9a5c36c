package services

import (
	"fmt"
	"time"

	"gymhub/internal/models"

	"gorm.io/gorm"
)

type InquiryService struct {
	db *gorm.DB
}

func NewInquiryService(db *gorm.DB) *InquiryService {
	return &InquiryService{db: db}
}

// Create 登记咨询
func (s *InquiryService) Create(inquiry *models.Inquiry) (*models.Inquiry, error) {
	if inquiry.Status == "" {
		inquiry.Status = models.InquiryStatusPending
	}
	err := s.db.Create(inquiry).Error
	return inquiry, err
}

// GetByID 根据ID获取咨询（限定场馆）
func (s *InquiryService) GetByID(gymID, id uint) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := s.db.Where("gym_id = ?", gymID).First(&inquiry, id).Error
	return &inquiry, err
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *InquiryService) GetWithFiltersAndPage(gymID uint, status, keyword string, page, pageSize int) ([]*models.Inquiry, int64, error) {
	var inquiries []*models.Inquiry
	var total int64

	query := s.db.Model(&models.Inquiry{}).Where("gym_id = ?", gymID)

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR phone LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&inquiries).Error
	if err != nil {
		return nil, 0, err
	}

	return inquiries, total, nil
}

// UpdateStatus 更新跟进状态和备注
func (s *InquiryService) UpdateStatus(gymID, id uint, status string, note *string, followUpAt *time.Time) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := s.db.Where("gym_id = ?", gymID).First(&inquiry, id).Error; err != nil {
		return nil, err
	}

	if !s.IsValidStatus(status) {
		return nil, fmt.Errorf("状态只能是 pending、contacted、converted 或 closed")
	}
	inquiry.Status = status
	if note != nil {
		inquiry.Note = note
	}
	if followUpAt != nil {
		inquiry.FollowUpAt = followUpAt
	}

	err := s.db.Save(&inquiry).Error
	return &inquiry, err
}

// Delete 删除咨询
func (s *InquiryService) Delete(gymID, id uint) error {
	return s.db.Where("gym_id = ?", gymID).Delete(&models.Inquiry{}, id).Error
}

// IsValidStatus 检查咨询状态是否有效
func (s *InquiryService) IsValidStatus(status string) bool {
	switch status {
	case models.InquiryStatusPending, models.InquiryStatusContacted,
		models.InquiryStatusConverted, models.InquiryStatusClosed:
		return true
	default:
		return false
	}
}

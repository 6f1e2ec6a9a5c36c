package services

import (
	"fmt"
	"time"

	"gymhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentService struct {
	db *gorm.DB
}

// PaymentSummary 收款汇总
type PaymentSummary struct {
	Total  float64 `json:"total"`
	Count  int64   `json:"count"`
	Method string  `json:"method"`
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// Create 创建收款记录，流水号自动生成
func (s *PaymentService) Create(payment *models.Payment) (*models.Payment, error) {
	if payment.Amount <= 0 {
		return nil, fmt.Errorf("收款金额必须大于0")
	}
	if !s.IsValidMethod(payment.Method) {
		return nil, fmt.Errorf("支付方式只能是 cash、card 或 transfer")
	}

	// 确认会员存在且属于同一场馆
	var count int64
	s.db.Model(&models.Member{}).
		Where("id = ? AND gym_id = ?", payment.MemberID, payment.GymID).
		Count(&count)
	if count == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	payment.TransactionNo = uuid.NewString()
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now()
	}

	err := s.db.Create(payment).Error
	return payment, err
}

// GetByID 根据ID获取收款记录（限定场馆）
func (s *PaymentService) GetByID(gymID, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Where("gym_id = ?", gymID).First(&payment, id).Error
	return &payment, err
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *PaymentService) GetWithFiltersAndPage(gymID uint, memberID uint, method string, page, pageSize int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := s.db.Model(&models.Payment{}).Where("gym_id = ?", gymID)

	if memberID != 0 {
		query = query.Where("member_id = ?", memberID)
	}
	if method != "" {
		query = query.Where("method = ?", method)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("paid_at DESC").Offset(offset).Limit(pageSize).Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// GetSummaryByMethod 按支付方式汇总指定时间段的收款
func (s *PaymentService) GetSummaryByMethod(gymID uint, from, to time.Time) ([]*PaymentSummary, error) {
	var results []*PaymentSummary
	err := s.db.Model(&models.Payment{}).
		Select("method, COUNT(*) as count, SUM(amount) as total").
		Where("gym_id = ? AND paid_at >= ? AND paid_at < ?", gymID, from, to).
		Group("method").
		Find(&results).Error
	return results, err
}

// IsValidMethod 检查支付方式是否有效
func (s *PaymentService) IsValidMethod(method string) bool {
	switch method {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodTransfer:
		return true
	default:
		return false
	}
}

package models

import "time"

// Payment 收款记录模型
type Payment struct {
	BaseModel
	GymID         uint      `json:"gym_id" gorm:"not null;index"`
	MemberID      uint      `json:"member_id" gorm:"not null;index"`
	MembershipID  *uint     `json:"membership_id"` // 购买会籍时关联
	Amount        float64   `json:"amount" gorm:"not null"`
	Method        string    `json:"method" gorm:"not null;size:20"`
	TransactionNo string    `json:"transaction_no" gorm:"unique;not null;size:64"`
	PaidAt        time.Time `json:"paid_at" gorm:"not null"`
	Note          *string   `json:"note" gorm:"size:500"`

	Member *Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
}

// TableName 表名
func (p *Payment) TableName() string {
	return "payments"
}

// 支付方式常量
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

package models

import "time"

// Inquiry 咨询/潜在客户模型
type Inquiry struct {
	BaseModel
	GymID      uint       `json:"gym_id" gorm:"not null;index"`
	Name       string     `json:"name" gorm:"not null;size:100"`
	Phone      string     `json:"phone" gorm:"not null;size:20"`
	Source     *string    `json:"source" gorm:"size:50"` // 来源渠道：walk_in、referral、online等
	Status     string     `json:"status" gorm:"default:'pending';size:20"`
	Note       *string    `json:"note" gorm:"size:500"`
	FollowUpAt *time.Time `json:"follow_up_at"` // 下次跟进时间
}

// TableName 表名
func (i *Inquiry) TableName() string {
	return "inquiries"
}

// 咨询状态常量
const (
	InquiryStatusPending   = "pending"
	InquiryStatusContacted = "contacted"
	InquiryStatusConverted = "converted"
	InquiryStatusClosed    = "closed"
)

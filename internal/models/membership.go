package models

import "time"

// Membership 会籍模型 - 一个会员可以持有多条历史会籍
type Membership struct {
	BaseModel
	GymID     uint      `json:"gym_id" gorm:"not null;index"`
	MemberID  uint      `json:"member_id" gorm:"not null;index"`
	PlanName  string    `json:"plan_name" gorm:"not null;size:100"`
	Status    string    `json:"status" gorm:"default:'active';size:20"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	Price     float64   `json:"price" gorm:"default:0"`
}

// TableName 表名
func (m *Membership) TableName() string {
	return "memberships"
}

// 会籍状态常量
const (
	MembershipStatusActive    = "active"
	MembershipStatusTrial     = "trial"
	MembershipStatusExpired   = "expired"
	MembershipStatusCancelled = "cancelled"
)

// IsValidOn 判断会籍在指定日期是否有效：状态为active且结束日期不早于该日期
func (m *Membership) IsValidOn(day time.Time) bool {
	if m.Status != MembershipStatusActive {
		return false
	}
	y1, mo1, d1 := m.EndDate.Date()
	y2, mo2, d2 := day.Date()
	end := time.Date(y1, mo1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, mo2, d2, 0, 0, 0, 0, time.UTC)
	return !end.Before(today)
}

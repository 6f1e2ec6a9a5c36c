package models

import "time"

// Member 会员模型
type Member struct {
	BaseModel
	GymID    uint       `json:"gym_id" gorm:"not null;index;uniqueIndex:idx_member_gym_code"`
	Code     string     `json:"member_id" gorm:"not null;size:50;uniqueIndex:idx_member_gym_code"` // 场馆内唯一的会员编号
	Name     string     `json:"name" gorm:"not null;size:100"`
	Phone    *string    `json:"phone" gorm:"size:20"`
	Gender   *string    `json:"gender" gorm:"size:10"`
	Status   string     `json:"status" gorm:"default:'active';size:20"`
	JoinedAt *time.Time `json:"joined_at"`
	Note     *string    `json:"note" gorm:"size:500"`

	Gym         *Gym         `json:"gym,omitempty" gorm:"foreignKey:GymID"`
	Memberships []Membership `json:"memberships,omitempty" gorm:"foreignKey:MemberID"`
}

// TableName 表名
func (m *Member) TableName() string {
	return "members"
}

// 会员状态常量
const (
	MemberStatusActive    = "active"
	MemberStatusInactive  = "inactive"
	MemberStatusSuspended = "suspended"
)

// FirstName 取姓名的第一段，用于签到问候语
func (m *Member) FirstName() string {
	for i, r := range m.Name {
		if r == ' ' {
			return m.Name[:i]
		}
	}
	return m.Name
}

package models

import "gorm.io/datatypes"

// Gym 场馆模型（租户）- 贫血模型，只包含数据结构
type Gym struct {
	BaseModel
	Name        string         `json:"name" gorm:"not null;size:100"`
	Code        string         `json:"code" gorm:"unique;not null;size:50;index"`
	Status      string         `json:"status" gorm:"default:'active';size:20"`
	Phone       *string        `json:"phone" gorm:"size:20"`
	Address     *string        `json:"address" gorm:"size:255"`
	Settings    datatypes.JSON `json:"settings"` // 营业时间等场馆配置
	MemberCount int            `json:"member_count" gorm:"-"` // 会员数量，不存储在数据库中
}

// TableName 表名
func (g *Gym) TableName() string {
	return "gyms"
}

// 场馆状态常量
const (
	GymStatusActive   = "active"
	GymStatusInactive = "inactive"
)

package models

import "time"

// AttendanceSession 考勤记录 - 每天每个会员一条进出记录
type AttendanceSession struct {
	BaseModel
	GymID        uint       `json:"gym_id" gorm:"not null;index"`
	MemberID     uint       `json:"member_id" gorm:"not null;index:idx_session_member_checkin"`
	MembershipID uint       `json:"membership_id" gorm:"not null"`
	CheckInTime  time.Time  `json:"check_in_time" gorm:"not null;index:idx_session_member_checkin"`
	CheckOutTime *time.Time `json:"check_out_time"` // null表示仍在馆内
	AutoCheckout bool       `json:"auto_checkout" gorm:"default:false"`
	Note         *string    `json:"note" gorm:"size:500"`

	Member *Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
}

// TableName 表名
func (s *AttendanceSession) TableName() string {
	return "attendance_sessions"
}

// IsOpen 是否为未签退的记录
func (s *AttendanceSession) IsOpen() bool {
	return s.CheckOutTime == nil
}

// 考勤动作常量
const (
	AttendanceActionCheckIn  = "check_in"
	AttendanceActionCheckOut = "check_out"
)

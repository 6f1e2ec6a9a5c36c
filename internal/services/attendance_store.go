package services

import (
	"errors"
	"time"

	"gymhub/internal/models"

	"gorm.io/gorm"
)

// AttendanceStore 考勤记录存储接口 - 抽出接口便于在服务层测试中替换
type AttendanceStore interface {
	// FindLatestSession 查询会员在[dayStart, dayEnd)内最近的一条考勤记录，没有返回nil
	FindLatestSession(memberID uint, dayStart, dayEnd time.Time) (*models.AttendanceSession, error)
	// InsertSession 插入新的签到记录
	InsertSession(session *models.AttendanceSession) error
	// CloseSession 条件更新：仅当记录仍未签退时写入签退时间，已签退返回gorm.ErrRecordNotFound
	CloseSession(id uint, checkOut time.Time) (*models.AttendanceSession, error)
	// FindOpenSessionsBefore 查询场馆内签到时间早于cutoff且未签退的记录
	FindOpenSessionsBefore(gymID uint, cutoff time.Time) ([]models.AttendanceSession, error)
	// BulkCloseSessions 批量签退：签退时间写为cutoff并标记auto_checkout
	BulkCloseSessions(ids []uint, cutoff time.Time) (int64, error)
}

type gormAttendanceStore struct {
	db *gorm.DB
}

// NewAttendanceStore 创建基于GORM的考勤存储
func NewAttendanceStore(db *gorm.DB) AttendanceStore {
	return &gormAttendanceStore{db: db}
}

func (s *gormAttendanceStore) FindLatestSession(memberID uint, dayStart, dayEnd time.Time) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	err := s.db.
		Where("member_id = ? AND check_in_time >= ? AND check_in_time < ?", memberID, dayStart, dayEnd).
		Order("check_in_time DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *gormAttendanceStore) InsertSession(session *models.AttendanceSession) error {
	return s.db.Create(session).Error
}

func (s *gormAttendanceStore) CloseSession(id uint, checkOut time.Time) (*models.AttendanceSession, error) {
	// 并发扫码时只有一个更新能命中仍未签退的行
	result := s.db.Model(&models.AttendanceSession{}).
		Where("id = ? AND check_out_time IS NULL", id).
		Updates(map[string]interface{}{
			"check_out_time": checkOut,
			"auto_checkout":  false,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var session models.AttendanceSession
	if err := s.db.First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *gormAttendanceStore) FindOpenSessionsBefore(gymID uint, cutoff time.Time) ([]models.AttendanceSession, error) {
	var sessions []models.AttendanceSession
	err := s.db.
		Where("gym_id = ? AND check_out_time IS NULL AND check_in_time < ?", gymID, cutoff).
		Find(&sessions).Error
	return sessions, err
}

func (s *gormAttendanceStore) BulkCloseSessions(ids []uint, cutoff time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	// 已签退的行不会再次匹配，重复执行是安全的
	result := s.db.Model(&models.AttendanceSession{}).
		Where("id IN ? AND check_out_time IS NULL", ids).
		Updates(map[string]interface{}{
			"check_out_time": cutoff,
			"auto_checkout":  true,
		})
	return result.RowsAffected, result.Error
}

package services

import (
	"errors"
	"fmt"
	"time"

	"gymhub/internal/models"
	"gymhub/pkg/config"
	apperrors "gymhub/pkg/errors"
	"gymhub/pkg/logger"
	"gymhub/pkg/queue"

	"gorm.io/gorm"
)

// MemberDirectory 会员目录接口 - 考勤引擎只依赖这两个查询
type MemberDirectory interface {
	// FindByCode 按会员编号查找（不过滤状态），gymID为0时跨场馆查找，不存在返回nil
	FindByCode(gymID uint, code string) (*models.Member, error)
	// FindWithMemberships 按内部ID查找并预加载状态为active的会籍
	FindWithMemberships(memberID uint) (*models.Member, error)
}

// AttendanceEventPublisher 考勤事件发布接口
type AttendanceEventPublisher interface {
	PublishEvent(event *queue.AttendanceEvent) error
}

// ProcessAttendanceResult 扫码处理结果 - 业务失败也通过该结构返回，不抛异常
type ProcessAttendanceResult struct {
	Success    bool                      `json:"success"`
	Action     string                    `json:"action,omitempty"` // check_in 或 check_out
	Member     *models.Member            `json:"member,omitempty"`
	Membership *models.Membership        `json:"membership,omitempty"`
	Session    *models.AttendanceSession `json:"session,omitempty"`
	Message    string                    `json:"message"`
	ErrorKind  string                    `json:"error_kind,omitempty"`
}

// AutoCheckoutResult 自动签退结果
type AutoCheckoutResult struct {
	Success bool   `json:"success"`
	Count   int64  `json:"count"`
	Message string `json:"message"`
}

// AttendanceService 考勤引擎：会员识别、资格校验、签到/签退切换、自动签退
type AttendanceService struct {
	db      *gorm.DB
	store   AttendanceStore
	members MemberDirectory
	events  AttendanceEventPublisher
	loc     *time.Location
	now     func() time.Time
}

// NewAttendanceService 创建考勤服务
func NewAttendanceService(db *gorm.DB, events *queue.RedisQueue) *AttendanceService {
	cfg := config.GetConfig()
	loc := time.Local
	if cfg.Attendance.Timezone != "" && cfg.Attendance.Timezone != "Local" {
		if parsed, err := time.LoadLocation(cfg.Attendance.Timezone); err == nil {
			loc = parsed
		} else {
			logger.GetLogger().Warnf("Invalid attendance timezone %q, falling back to local: %v", cfg.Attendance.Timezone, err)
		}
	}

	service := &AttendanceService{
		db:      db,
		store:   NewAttendanceStore(db),
		members: NewMemberService(db),
		loc:     loc,
		now:     time.Now,
	}
	if events != nil {
		service.events = events
	}
	return service
}

// ProcessAttendance 处理一次扫码/手工输入。
// gymID是扫码端所在场馆（平台管理员为0表示可见所有场馆）。
func (s *AttendanceService) ProcessAttendance(gymID uint, input string) *ProcessAttendanceResult {
	code, expectedGymID := DecodeScanInput(input)

	// 二维码归属其他场馆时直接拒绝，不查库。
	// 会员编号只在场馆内唯一，跨场馆查找在编号撞车时会取到别馆的人
	if expectedGymID != 0 && gymID != 0 && expectedGymID != gymID {
		return &ProcessAttendanceResult{
			ErrorKind: apperrors.KindTenantMismatch,
			Message:   "二维码归属其他场馆，请使用本馆发放的二维码",
		}
	}

	// 平台管理员按二维码归属的场馆查找，手工输入编号时才跨场馆
	scope := gymID
	if scope == 0 {
		scope = expectedGymID
	}

	// 先不过滤状态查找，区分"编号不存在"和"存在但不可用"
	member, err := s.members.FindByCode(scope, code)
	if err != nil {
		return s.persistenceFailure("查询会员失败", err)
	}
	if member == nil {
		return &ProcessAttendanceResult{
			ErrorKind: apperrors.KindMemberNotFound,
			Message:   fmt.Sprintf("未找到会员编号 %s，请确认后重试", code),
		}
	}

	if member.Status != models.MemberStatusActive {
		return &ProcessAttendanceResult{
			Member:    member,
			ErrorKind: apperrors.KindMemberInactive,
			Message:   fmt.Sprintf("会员状态为 %s，暂时无法入场，请联系前台", member.Status),
		}
	}

	// 第二次查询拿到带会籍的完整记录
	enriched, err := s.members.FindWithMemberships(member.ID)
	if err != nil {
		return s.persistenceFailure("查询会籍失败", err)
	}

	now := s.now().In(s.loc)
	membership := selectValidMembership(enriched.Memberships, now)
	if membership == nil {
		return &ProcessAttendanceResult{
			Member:    enriched,
			ErrorKind: apperrors.KindNoActiveMembership,
			Message:   "当前没有有效会籍，请联系前台办理或续费",
		}
	}

	return s.toggleSession(enriched, membership, now)
}

// toggleSession 按当天最近一条记录决定是签到还是签退
func (s *AttendanceService) toggleSession(member *models.Member, membership *models.Membership, now time.Time) *ProcessAttendanceResult {
	year, month, day := now.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	latest, err := s.store.FindLatestSession(member.ID, dayStart, dayEnd)
	if err != nil {
		return s.persistenceFailure("查询考勤记录失败", err)
	}

	if latest != nil && latest.IsOpen() {
		// 签退：仅当记录仍未签退时更新
		closed, err := s.store.CloseSession(latest.ID, now)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.persistenceFailure("该记录已被签退，请重新扫码", err)
		}
		if err != nil {
			return s.persistenceFailure("签退失败", err)
		}

		result := &ProcessAttendanceResult{
			Success:    true,
			Action:     models.AttendanceActionCheckOut,
			Member:     member,
			Membership: membership,
			Session:    closed,
			Message:    fmt.Sprintf("%s 已签退，下次再见", member.FirstName()),
		}
		s.publishEvent(member, result)
		return result
	}

	// 签到：当天没有记录，或最近一条已签退
	session := &models.AttendanceSession{
		GymID:        member.GymID,
		MemberID:     member.ID,
		MembershipID: membership.ID,
		CheckInTime:  now,
	}
	if err := s.store.InsertSession(session); err != nil {
		return s.persistenceFailure("签到失败", err)
	}

	result := &ProcessAttendanceResult{
		Success:    true,
		Action:     models.AttendanceActionCheckIn,
		Member:     member,
		Membership: membership,
		Session:    session,
		Message:    fmt.Sprintf("欢迎回来，%s，签到成功", member.FirstName()),
	}
	s.publishEvent(member, result)
	return result
}

// AutoCheckout 自动签退：把签到时间早于昨天结束时刻且仍未签退的记录，
// 签退时间统一写为昨天23:59:59.999（归属到实际应离场的那天，而不是执行时刻）
func (s *AttendanceService) AutoCheckout(gymID uint) *AutoCheckoutResult {
	now := s.now().In(s.loc)
	year, month, day := now.Date()
	cutoff := time.Date(year, month, day, 0, 0, 0, 0, s.loc).Add(-time.Millisecond)

	sessions, err := s.store.FindOpenSessionsBefore(gymID, cutoff)
	if err != nil {
		return &AutoCheckoutResult{Message: fmt.Sprintf("查询超时记录失败: %v", err)}
	}

	if len(sessions) == 0 {
		return &AutoCheckoutResult{Success: true, Count: 0, Message: "没有需要自动签退的记录"}
	}

	ids := make([]uint, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}

	count, err := s.store.BulkCloseSessions(ids, cutoff)
	if err != nil {
		// 报告失败前已关闭的行数，不留下无声的部分状态
		return &AutoCheckoutResult{Count: count, Message: fmt.Sprintf("批量签退失败（已关闭 %d 条）: %v", count, err)}
	}

	return &AutoCheckoutResult{
		Success: true,
		Count:   count,
		Message: fmt.Sprintf("已自动签退 %d 条超时记录", count),
	}
}

// GetSessionsWithPage 查询场馆的考勤记录（分页），可按会员和日期过滤
func (s *AttendanceService) GetSessionsWithPage(gymID, memberID uint, date string, page, pageSize int) ([]*models.AttendanceSession, int64, error) {
	var sessions []*models.AttendanceSession
	var total int64

	query := s.db.Model(&models.AttendanceSession{}).Where("gym_id = ?", gymID)

	if memberID != 0 {
		query = query.Where("member_id = ?", memberID)
	}
	if date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, s.loc)
		if err != nil {
			return nil, 0, fmt.Errorf("日期格式错误，应为 YYYY-MM-DD")
		}
		query = query.Where("check_in_time >= ? AND check_in_time < ?", day, day.AddDate(0, 0, 1))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Member").Order("check_in_time DESC").Offset(offset).Limit(pageSize).Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// selectValidMembership 选出当前有效的会籍。
// 同时有效的多条会籍按start_date最晚者优先，保证结果与存储顺序无关。
func selectValidMembership(memberships []models.Membership, day time.Time) *models.Membership {
	var selected *models.Membership
	for i := range memberships {
		m := &memberships[i]
		if !m.IsValidOn(day) {
			continue
		}
		if selected == nil || m.StartDate.After(selected.StartDate) {
			selected = m
		}
	}
	return selected
}

func (s *AttendanceService) persistenceFailure(message string, err error) *ProcessAttendanceResult {
	logger.GetLogger().Errorf("attendance persistence failure: %s: %v", message, err)
	return &ProcessAttendanceResult{
		ErrorKind: apperrors.KindPersistenceFailure,
		Message:   fmt.Sprintf("%s，请重试或联系前台", message),
	}
}

// publishEvent 尽力发布考勤事件，Redis不可用只记日志，不影响签到结果
func (s *AttendanceService) publishEvent(member *models.Member, result *ProcessAttendanceResult) {
	if s.events == nil {
		return
	}
	event := &queue.AttendanceEvent{
		GymID:      member.GymID,
		MemberID:   member.ID,
		MemberCode: member.Code,
		MemberName: member.Name,
		Action:     result.Action,
		SessionID:  result.Session.ID,
		OccurredAt: s.now().Unix(),
	}
	if err := s.events.PublishEvent(event); err != nil {
		logger.GetLogger().Warnf("Failed to publish attendance event: %v", err)
	}
}

package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gymhub/internal/models"
	apperrors "gymhub/pkg/errors"
	"gymhub/pkg/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockAttendanceStore AttendanceStore的mock实现
type MockAttendanceStore struct {
	mock.Mock
}

func (m *MockAttendanceStore) FindLatestSession(memberID uint, dayStart, dayEnd time.Time) (*models.AttendanceSession, error) {
	args := m.Called(memberID, dayStart, dayEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttendanceSession), args.Error(1)
}

func (m *MockAttendanceStore) InsertSession(session *models.AttendanceSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockAttendanceStore) CloseSession(id uint, checkOut time.Time) (*models.AttendanceSession, error) {
	args := m.Called(id, checkOut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttendanceSession), args.Error(1)
}

func (m *MockAttendanceStore) FindOpenSessionsBefore(gymID uint, cutoff time.Time) ([]models.AttendanceSession, error) {
	args := m.Called(gymID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AttendanceSession), args.Error(1)
}

func (m *MockAttendanceStore) BulkCloseSessions(ids []uint, cutoff time.Time) (int64, error) {
	args := m.Called(ids, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockMemberDirectory MemberDirectory的mock实现
type MockMemberDirectory struct {
	mock.Mock
}

func (m *MockMemberDirectory) FindByCode(gymID uint, code string) (*models.Member, error) {
	args := m.Called(gymID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberDirectory) FindWithMemberships(memberID uint) (*models.Member, error) {
	args := m.Called(memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

// MockEventPublisher AttendanceEventPublisher的mock实现
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(event *queue.AttendanceEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// 固定时钟：2026-03-10 14:30 UTC
var testNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func newTestService(store *MockAttendanceStore, members *MockMemberDirectory, events *MockEventPublisher) *AttendanceService {
	service := &AttendanceService{
		store:   store,
		members: members,
		loc:     time.UTC,
		now:     func() time.Time { return testNow },
	}
	if events != nil {
		service.events = events
	}
	return service
}

func activeMember(id uint, gymID uint, code, name string) *models.Member {
	return &models.Member{
		BaseModel: models.BaseModel{ID: id},
		GymID:     gymID,
		Code:      code,
		Name:      name,
		Status:    models.MemberStatusActive,
	}
}

func validMembership(id uint, memberID uint, start, end time.Time) models.Membership {
	return models.Membership{
		BaseModel: models.BaseModel{ID: id},
		GymID:     1,
		MemberID:  memberID,
		PlanName:  "月卡",
		Status:    models.MembershipStatusActive,
		StartDate: start,
		EndDate:   end,
	}
}

func qrInput(code string, gymID string) string {
	payload := QRPayload{
		Type:        QRPayloadType,
		MemberID:    code,
		GymID:       gymID,
		Name:        "张 伟",
		GeneratedAt: testNow.Format(time.RFC3339),
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestProcessAttendance_MemberNotFound(t *testing.T) {
	store := new(MockAttendanceStore)
	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM404").Return(nil, nil)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(1, "MEM404")

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindMemberNotFound, result.ErrorKind)
	assert.Contains(t, result.Message, "MEM404")
	members.AssertExpectations(t)
	store.AssertNotCalled(t, "InsertSession", mock.Anything)
}

func TestProcessAttendance_MemberInactive(t *testing.T) {
	member := activeMember(7, 1, "MEM001", "张 伟")
	member.Status = models.MemberStatusSuspended

	store := new(MockAttendanceStore)
	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM001").Return(member, nil)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(1, "MEM001")

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindMemberInactive, result.ErrorKind)
	assert.Equal(t, member, result.Member)
	members.AssertNotCalled(t, "FindWithMemberships", mock.Anything)
}

func TestProcessAttendance_TenantMismatch(t *testing.T) {
	// A馆会员的二维码在B馆扫：直接按归属不符拒绝，不查库
	store := new(MockAttendanceStore)
	members := new(MockMemberDirectory)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(2, qrInput("MEM001", "1"))

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindTenantMismatch, result.ErrorKind)
	members.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
}

func TestProcessAttendance_QRMatchingGymPasses(t *testing.T) {
	member := activeMember(7, 1, "MEM001", "张 伟")
	enriched := activeMember(7, 1, "MEM001", "张 伟")
	enriched.Memberships = []models.Membership{
		validMembership(11, 7, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0)),
	}

	store := new(MockAttendanceStore)
	store.On("FindLatestSession", uint(7), mock.Anything, mock.Anything).Return(nil, nil)
	store.On("InsertSession", mock.Anything).Return(nil)

	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM001").Return(member, nil)
	members.On("FindWithMemberships", uint(7)).Return(enriched, nil)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(1, qrInput("MEM001", "1"))

	assert.True(t, result.Success)
	assert.Equal(t, models.AttendanceActionCheckIn, result.Action)
}

func TestProcessAttendance_CodeCollisionResolvesWithinScannerGym(t *testing.T) {
	// 两个场馆都有MEM001：查找限定在扫码端场馆内，
	// 本馆二维码不会因为别馆的同名编号被误判归属不符
	member := activeMember(7, 1, "MEM001", "张 伟")
	enriched := activeMember(7, 1, "MEM001", "张 伟")
	enriched.Memberships = []models.Membership{
		validMembership(11, 7, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0)),
	}

	store := new(MockAttendanceStore)
	store.On("FindLatestSession", uint(7), mock.Anything, mock.Anything).Return(nil, nil)
	store.On("InsertSession", mock.Anything).Return(nil)

	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM001").Return(member, nil)
	members.On("FindWithMemberships", uint(7)).Return(enriched, nil)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(1, qrInput("MEM001", "1"))

	assert.True(t, result.Success)
	assert.Empty(t, result.ErrorKind)
	members.AssertNotCalled(t, "FindByCode", uint(0), "MEM001")
}

func TestProcessAttendance_AdminScanScopedToQRGym(t *testing.T) {
	// 平台管理员扫码时按二维码归属的场馆查找
	member := activeMember(7, 3, "MEM001", "张 伟")
	enriched := activeMember(7, 3, "MEM001", "张 伟")
	enriched.Memberships = []models.Membership{
		validMembership(11, 7, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0)),
	}

	store := new(MockAttendanceStore)
	store.On("FindLatestSession", uint(7), mock.Anything, mock.Anything).Return(nil, nil)
	store.On("InsertSession", mock.Anything).Return(nil)

	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(3), "MEM001").Return(member, nil)
	members.On("FindWithMemberships", uint(7)).Return(enriched, nil)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(0, qrInput("MEM001", "3"))

	assert.True(t, result.Success)
	members.AssertExpectations(t)
}

func TestProcessAttendance_RawCodeScopedToGym(t *testing.T) {
	// 手工输入的编号只在本场馆内查找
	store := new(MockAttendanceStore)
	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(3), "MEM001").Return(nil, nil)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(3, "  MEM001  ")

	assert.Equal(t, apperrors.KindMemberNotFound, result.ErrorKind)
	members.AssertExpectations(t)
}

func TestProcessAttendance_NoActiveMembership(t *testing.T) {
	member := activeMember(7, 1, "MEM001", "张 伟")
	enriched := activeMember(7, 1, "MEM001", "张 伟")
	expired := validMembership(11, 7, testNow.AddDate(-1, 0, 0), testNow.AddDate(0, 0, -2))
	enriched.Memberships = []models.Membership{expired}

	store := new(MockAttendanceStore)
	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM001").Return(member, nil)
	members.On("FindWithMemberships", uint(7)).Return(enriched, nil)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(1, "MEM001")

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindNoActiveMembership, result.ErrorKind)
	store.AssertNotCalled(t, "FindLatestSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessAttendance_MembershipEndingTodayStillValid(t *testing.T) {
	// 结束日期等于当天仍然有效
	member := activeMember(7, 1, "MEM001", "张 伟")
	enriched := activeMember(7, 1, "MEM001", "张 伟")
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	enriched.Memberships = []models.Membership{
		validMembership(11, 7, today.AddDate(0, -1, 0), today),
	}

	store := new(MockAttendanceStore)
	store.On("FindLatestSession", uint(7), mock.Anything, mock.Anything).Return(nil, nil)
	store.On("InsertSession", mock.Anything).Return(nil)

	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM001").Return(member, nil)
	members.On("FindWithMemberships", uint(7)).Return(enriched, nil)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(1, "MEM001")

	assert.True(t, result.Success)
	assert.Equal(t, models.AttendanceActionCheckIn, result.Action)
}

func TestProcessAttendance_CheckIn(t *testing.T) {
	member := activeMember(7, 1, "MEM001", "张 伟")
	enriched := activeMember(7, 1, "MEM001", "张 伟")
	membership := validMembership(11, 7, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0))
	enriched.Memberships = []models.Membership{membership}

	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	store := new(MockAttendanceStore)
	store.On("FindLatestSession", uint(7), dayStart, dayEnd).Return(nil, nil)
	store.On("InsertSession", mock.MatchedBy(func(s *models.AttendanceSession) bool {
		return s.GymID == 1 && s.MemberID == 7 && s.MembershipID == 11 && s.CheckInTime.Equal(testNow)
	})).Return(nil)

	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM001").Return(member, nil)
	members.On("FindWithMemberships", uint(7)).Return(enriched, nil)

	events := new(MockEventPublisher)
	events.On("PublishEvent", mock.MatchedBy(func(e *queue.AttendanceEvent) bool {
		return e.Action == models.AttendanceActionCheckIn && e.MemberCode == "MEM001" && e.GymID == 1
	})).Return(nil)

	service := newTestService(store, members, events)
	result := service.ProcessAttendance(1, "MEM001")

	assert.True(t, result.Success)
	assert.Equal(t, models.AttendanceActionCheckIn, result.Action)
	assert.Equal(t, uint(11), result.Membership.ID)
	assert.Contains(t, result.Message, "张")
	store.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProcessAttendance_CheckOut(t *testing.T) {
	member := activeMember(7, 1, "MEM001", "张 伟")
	enriched := activeMember(7, 1, "MEM001", "张 伟")
	enriched.Memberships = []models.Membership{
		validMembership(11, 7, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0)),
	}

	open := &models.AttendanceSession{
		BaseModel:   models.BaseModel{ID: 42},
		GymID:       1,
		MemberID:    7,
		CheckInTime: testNow.Add(-2 * time.Hour),
	}
	checkOut := testNow
	closed := &models.AttendanceSession{
		BaseModel:    models.BaseModel{ID: 42},
		GymID:        1,
		MemberID:     7,
		CheckInTime:  open.CheckInTime,
		CheckOutTime: &checkOut,
	}

	store := new(MockAttendanceStore)
	store.On("FindLatestSession", uint(7), mock.Anything, mock.Anything).Return(open, nil)
	store.On("CloseSession", uint(42), testNow).Return(closed, nil)

	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM001").Return(member, nil)
	members.On("FindWithMemberships", uint(7)).Return(enriched, nil)

	events := new(MockEventPublisher)
	events.On("PublishEvent", mock.MatchedBy(func(e *queue.AttendanceEvent) bool {
		return e.Action == models.AttendanceActionCheckOut && e.SessionID == 42
	})).Return(nil)

	service := newTestService(store, members, events)
	result := service.ProcessAttendance(1, "MEM001")

	assert.True(t, result.Success)
	assert.Equal(t, models.AttendanceActionCheckOut, result.Action)
	assert.NotNil(t, result.Session.CheckOutTime)
	store.AssertNotCalled(t, "InsertSession", mock.Anything)
	events.AssertExpectations(t)
}

func TestProcessAttendance_NewCycleAfterCheckout(t *testing.T) {
	// 当天已完成一次进出后再次扫码，开启新的签到
	member := activeMember(7, 1, "MEM001", "张 伟")
	enriched := activeMember(7, 1, "MEM001", "张 伟")
	enriched.Memberships = []models.Membership{
		validMembership(11, 7, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0)),
	}

	earlier := testNow.Add(-3 * time.Hour)
	closedAt := testNow.Add(-1 * time.Hour)
	latest := &models.AttendanceSession{
		BaseModel:    models.BaseModel{ID: 42},
		GymID:        1,
		MemberID:     7,
		CheckInTime:  earlier,
		CheckOutTime: &closedAt,
	}

	store := new(MockAttendanceStore)
	store.On("FindLatestSession", uint(7), mock.Anything, mock.Anything).Return(latest, nil)
	store.On("InsertSession", mock.Anything).Return(nil)

	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM001").Return(member, nil)
	members.On("FindWithMemberships", uint(7)).Return(enriched, nil)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(1, "MEM001")

	assert.True(t, result.Success)
	assert.Equal(t, models.AttendanceActionCheckIn, result.Action)
	store.AssertNotCalled(t, "CloseSession", mock.Anything, mock.Anything)
}

func TestProcessAttendance_CheckOutRaceLost(t *testing.T) {
	// 并发签退时条件更新未命中，报持久化失败而不是假装成功
	member := activeMember(7, 1, "MEM001", "张 伟")
	enriched := activeMember(7, 1, "MEM001", "张 伟")
	enriched.Memberships = []models.Membership{
		validMembership(11, 7, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0)),
	}

	open := &models.AttendanceSession{
		BaseModel:   models.BaseModel{ID: 42},
		MemberID:    7,
		CheckInTime: testNow.Add(-time.Hour),
	}

	store := new(MockAttendanceStore)
	store.On("FindLatestSession", uint(7), mock.Anything, mock.Anything).Return(open, nil)
	store.On("CloseSession", uint(42), testNow).Return(nil, gorm.ErrRecordNotFound)

	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM001").Return(member, nil)
	members.On("FindWithMemberships", uint(7)).Return(enriched, nil)

	service := newTestService(store, members, nil)
	result := service.ProcessAttendance(1, "MEM001")

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindPersistenceFailure, result.ErrorKind)
}

func TestProcessAttendance_PublishFailureDoesNotFailToggle(t *testing.T) {
	member := activeMember(7, 1, "MEM001", "张 伟")
	enriched := activeMember(7, 1, "MEM001", "张 伟")
	enriched.Memberships = []models.Membership{
		validMembership(11, 7, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0)),
	}

	store := new(MockAttendanceStore)
	store.On("FindLatestSession", uint(7), mock.Anything, mock.Anything).Return(nil, nil)
	store.On("InsertSession", mock.Anything).Return(nil)

	members := new(MockMemberDirectory)
	members.On("FindByCode", uint(1), "MEM001").Return(member, nil)
	members.On("FindWithMemberships", uint(7)).Return(enriched, nil)

	events := new(MockEventPublisher)
	events.On("PublishEvent", mock.Anything).Return(errors.New("redis unavailable"))

	service := newTestService(store, members, events)
	result := service.ProcessAttendance(1, "MEM001")

	assert.True(t, result.Success)
	assert.Equal(t, models.AttendanceActionCheckIn, result.Action)
}

func TestSelectValidMembership_TieBreakLatestStartDate(t *testing.T) {
	older := validMembership(1, 7, testNow.AddDate(0, -6, 0), testNow.AddDate(0, 6, 0))
	newer := validMembership(2, 7, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 2, 0))

	// 与存储顺序无关
	selected := selectValidMembership([]models.Membership{older, newer}, testNow)
	assert.Equal(t, uint(2), selected.ID)

	selected = selectValidMembership([]models.Membership{newer, older}, testNow)
	assert.Equal(t, uint(2), selected.ID)
}

func TestSelectValidMembership_SkipsInvalid(t *testing.T) {
	cancelled := validMembership(1, 7, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0))
	cancelled.Status = models.MembershipStatusCancelled
	expired := validMembership(2, 7, testNow.AddDate(-1, 0, 0), testNow.AddDate(0, 0, -1))

	assert.Nil(t, selectValidMembership([]models.Membership{cancelled, expired}, testNow))
	assert.Nil(t, selectValidMembership(nil, testNow))
}

func TestAutoCheckout_ClosesAtYesterdayEnd(t *testing.T) {
	// 签退时间写为昨天23:59:59.999，不是执行时刻
	cutoff := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).Add(-time.Millisecond)

	stale := []models.AttendanceSession{
		{BaseModel: models.BaseModel{ID: 42}},
		{BaseModel: models.BaseModel{ID: 43}},
	}

	store := new(MockAttendanceStore)
	store.On("FindOpenSessionsBefore", uint(1), cutoff).Return(stale, nil)
	store.On("BulkCloseSessions", []uint{42, 43}, cutoff).Return(int64(2), nil)

	service := newTestService(store, new(MockMemberDirectory), nil)
	result := service.AutoCheckout(1)

	assert.True(t, result.Success)
	assert.Equal(t, int64(2), result.Count)
	store.AssertExpectations(t)
}

func TestAutoCheckout_NothingToClose(t *testing.T) {
	store := new(MockAttendanceStore)
	store.On("FindOpenSessionsBefore", uint(1), mock.Anything).Return([]models.AttendanceSession{}, nil)

	service := newTestService(store, new(MockMemberDirectory), nil)
	result := service.AutoCheckout(1)

	assert.True(t, result.Success)
	assert.Equal(t, int64(0), result.Count)
	store.AssertNotCalled(t, "BulkCloseSessions", mock.Anything, mock.Anything)
}

func TestAutoCheckout_PartialFailureReportsCount(t *testing.T) {
	stale := []models.AttendanceSession{{BaseModel: models.BaseModel{ID: 42}}}

	store := new(MockAttendanceStore)
	store.On("FindOpenSessionsBefore", uint(1), mock.Anything).Return(stale, nil)
	store.On("BulkCloseSessions", []uint{42}, mock.Anything).Return(int64(0), errors.New("connection reset"))

	service := newTestService(store, new(MockMemberDirectory), nil)
	result := service.AutoCheckout(1)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "批量签退失败")
}

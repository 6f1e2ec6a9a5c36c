package services

import (
	"sync"

	"gymhub/pkg/config"
	"gymhub/pkg/logger"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// AutoCheckoutScheduler 自动签退调度器 - 按cron表达式对所有激活场馆执行超时签退
type AutoCheckoutScheduler struct {
	db                *gorm.DB
	cron              *cron.Cron
	attendanceService *AttendanceService
	gymService        *GymService
	entryID           cron.EntryID
	mu                sync.Mutex
	running           bool
}

// NewAutoCheckoutScheduler 创建自动签退调度器
func NewAutoCheckoutScheduler(db *gorm.DB, attendanceService *AttendanceService) *AutoCheckoutScheduler {
	return &AutoCheckoutScheduler{
		db:                db,
		cron:              cron.New(),
		attendanceService: attendanceService,
		gymService:        NewGymService(db),
	}
}

// Start 启动调度器
func (s *AutoCheckoutScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	log := logger.GetLogger()
	cronExpr := config.GetConfig().Attendance.AutoCheckoutCron

	entryID, err := s.cron.AddFunc(cronExpr, s.runSweep)
	if err != nil {
		return err
	}
	s.entryID = entryID

	s.cron.Start()
	s.running = true

	log.Infof("自动签退调度器启动成功，cron表达式: %s", cronExpr)
	return nil
}

// Stop 停止调度器
func (s *AutoCheckoutScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	log := logger.GetLogger()
	log.Info("停止自动签退调度器")

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.running = false
}

// runSweep 对所有激活的场馆执行一轮自动签退
func (s *AutoCheckoutScheduler) runSweep() {
	log := logger.GetLogger()

	gyms, err := s.gymService.GetAllActive()
	if err != nil {
		log.Errorf("自动签退查询场馆失败: %v", err)
		return
	}

	var total int64
	for _, gym := range gyms {
		result := s.attendanceService.AutoCheckout(gym.ID)
		if !result.Success {
			log.Errorf("场馆 %s 自动签退失败: %s", gym.Name, result.Message)
			continue
		}
		if result.Count > 0 {
			log.Infof("场馆 %s 自动签退 %d 条记录", gym.Name, result.Count)
		}
		total += result.Count
	}

	log.Infof("自动签退完成，共关闭 %d 条超时记录", total)
}

// 全局调度器实例，供处理器手动触发后查询状态
var globalAutoCheckoutScheduler *AutoCheckoutScheduler

// SetGlobalAutoCheckoutScheduler 设置全局调度器实例
func SetGlobalAutoCheckoutScheduler(scheduler *AutoCheckoutScheduler) {
	globalAutoCheckoutScheduler = scheduler
}

// GetGlobalAutoCheckoutScheduler 获取全局调度器实例
func GetGlobalAutoCheckoutScheduler() *AutoCheckoutScheduler {
	return globalAutoCheckoutScheduler
}

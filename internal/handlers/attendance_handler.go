package handlers

import (
	"strconv"

	"gymhub/internal/middleware"
	"gymhub/internal/services"
	"gymhub/pkg/pagination"
	"gymhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// ScanRequest 扫码/手工输入请求
type ScanRequest struct {
	Input string `json:"input" binding:"required"`
}

type AttendanceHandler struct {
	service *services.AttendanceService
}

func NewAttendanceHandler(service *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
	}
}

// Scan 处理一次扫码：根据当天状态签到或签退。
// 业务失败（会员不存在、无有效会籍等）也返回200，由error_kind区分
func (h *AttendanceHandler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	gymID := middleware.GetGymID(c)
	result := h.service.ProcessAttendance(gymID, req.Input)

	// 统一结果形状，前端按success和error_kind渲染对应提示
	response.SuccessWithMessage(c, result.Message, result)
}

// AutoCheckout 手动触发自动签退（运营操作）
func (h *AttendanceHandler) AutoCheckout(c *gin.Context) {
	gymID := middleware.GetGymID(c)
	if gymID == 0 {
		// 平台管理员没有所属场馆，全馆扫荡由调度器负责
		response.Forbidden(c, "平台管理员没有所属场馆，无法执行该操作")
		return
	}

	result := h.service.AutoCheckout(gymID)
	if !result.Success {
		response.ServerError(c, result.Message)
		return
	}

	response.SuccessWithMessage(c, result.Message, result)
}

// ListSessions 查询考勤记录
func (h *AttendanceHandler) ListSessions(c *gin.Context) {
	gymID := middleware.GetGymID(c)
	pageParams := pagination.ParsePageParams(c)

	var memberID uint
	if memberIDStr := c.Query("member_id"); memberIDStr != "" {
		id, err := strconv.ParseUint(memberIDStr, 10, 32)
		if err != nil {
			response.BadRequest(c, "member_id格式错误")
			return
		}
		memberID = uint(id)
	}
	date := c.Query("date")

	sessions, total, err := h.service.GetSessionsWithPage(gymID, memberID, date, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, sessions, pageInfo)
}

package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gymhub/internal/middleware"
	"gymhub/internal/models"
	"gymhub/internal/services"
	"gymhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateMembershipRequest 开通会籍请求
type CreateMembershipRequest struct {
	MemberID  uint    `json:"member_id" binding:"required"`
	PlanName  string  `json:"plan_name" binding:"required"`
	Status    string  `json:"status"`
	StartDate string  `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string  `json:"end_date" binding:"required"`   // YYYY-MM-DD
	Price     float64 `json:"price"`
}

// UpdateMembershipRequest 更新会籍请求
type UpdateMembershipRequest struct {
	Status  string  `json:"status"`
	EndDate *string `json:"end_date"` // YYYY-MM-DD
}

type MembershipHandler struct {
	service *services.MembershipService
}

func NewMembershipHandler(service *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		service: service,
	}
}

// Create 开通会籍
func (h *MembershipHandler) Create(c *gin.Context) {
	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		response.BadRequest(c, "开始日期格式错误，应为 YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		response.BadRequest(c, "结束日期格式错误，应为 YYYY-MM-DD")
		return
	}

	membership := &models.Membership{
		GymID:     middleware.GetGymID(c),
		MemberID:  req.MemberID,
		PlanName:  req.PlanName,
		Status:    req.Status,
		StartDate: startDate,
		EndDate:   endDate,
		Price:     req.Price,
	}

	created, err := h.service.Create(membership)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "会员不存在")
			return
		}
		if strings.Contains(err.Error(), "结束日期") {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "开通失败")
		return
	}

	response.Success(c, created)
}

// GetByMember 获取会员的全部会籍
func (h *MembershipHandler) GetByMember(c *gin.Context) {
	memberID, err := strconv.ParseUint(c.Param("member_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	memberships, err := h.service.GetByMember(middleware.GetGymID(c), uint(memberID))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, memberships)
}

// Update 更新会籍
func (h *MembershipHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			response.BadRequest(c, "结束日期格式错误，应为 YYYY-MM-DD")
			return
		}
		endDate = &parsed
	}

	membership, err := h.service.Update(middleware.GetGymID(c), uint(id), req.Status, endDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "会籍不存在")
			return
		}
		errMsg := err.Error()
		if strings.Contains(errMsg, "状态只能") || strings.Contains(errMsg, "结束日期") {
			response.BadRequest(c, errMsg)
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, membership)
}

// Delete 删除会籍
func (h *MembershipHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.Delete(middleware.GetGymID(c), uint(id)); err != nil {
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

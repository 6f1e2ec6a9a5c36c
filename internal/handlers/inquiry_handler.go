package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gymhub/internal/middleware"
	"gymhub/internal/models"
	"gymhub/internal/services"
	"gymhub/pkg/pagination"
	"gymhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateInquiryRequest 登记咨询请求
type CreateInquiryRequest struct {
	Name   string  `json:"name" binding:"required"`
	Phone  string  `json:"phone" binding:"required"`
	Source *string `json:"source"`
	Note   *string `json:"note"`
}

// UpdateInquiryStatusRequest 更新跟进状态请求
type UpdateInquiryStatusRequest struct {
	Status     string  `json:"status" binding:"required"`
	Note       *string `json:"note"`
	FollowUpAt *string `json:"follow_up_at"` // RFC3339
}

type InquiryHandler struct {
	service *services.InquiryService
}

func NewInquiryHandler(service *services.InquiryService) *InquiryHandler {
	return &InquiryHandler{
		service: service,
	}
}

// Create 登记咨询
func (h *InquiryHandler) Create(c *gin.Context) {
	var req CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	inquiry := &models.Inquiry{
		GymID:  middleware.GetGymID(c),
		Name:   req.Name,
		Phone:  req.Phone,
		Source: req.Source,
		Note:   req.Note,
	}

	created, err := h.service.Create(inquiry)
	if err != nil {
		response.ServerError(c, "创建失败")
		return
	}

	response.Success(c, created)
}

// GetAll 咨询列表（分页）
func (h *InquiryHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	status := c.Query("status")
	keyword := c.Query("keyword")

	inquiries, total, err := h.service.GetWithFiltersAndPage(
		middleware.GetGymID(c), status, keyword, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, inquiries, pageInfo)
}

// UpdateStatus 更新跟进状态
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateInquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	var followUpAt *time.Time
	if req.FollowUpAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.FollowUpAt)
		if err != nil {
			response.BadRequest(c, "跟进时间格式错误，应为RFC3339")
			return
		}
		followUpAt = &parsed
	}

	inquiry, err := h.service.UpdateStatus(middleware.GetGymID(c), uint(id), req.Status, req.Note, followUpAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "咨询记录不存在")
			return
		}
		if strings.Contains(err.Error(), "状态只能") {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, inquiry)
}

// Delete 删除咨询
func (h *InquiryHandler) Delete(c *gin.Context) {
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

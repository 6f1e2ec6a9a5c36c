package handlers

import (
	"errors"
	"strconv"
	"strings"

	"gymhub/internal/middleware"
	"gymhub/internal/models"
	"gymhub/internal/services"
	"gymhub/pkg/pagination"
	"gymhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateMemberRequest 创建会员请求
type CreateMemberRequest struct {
	Code   string  `json:"code"` // 留空自动生成
	Name   string  `json:"name" binding:"required"`
	Phone  *string `json:"phone"`
	Gender *string `json:"gender"`
	Note   *string `json:"note"`
}

// UpdateMemberRequest 更新会员请求
type UpdateMemberRequest struct {
	Name   string  `json:"name"`
	Phone  *string `json:"phone"`
	Gender *string `json:"gender"`
	Note   *string `json:"note"`
	Status string  `json:"status"`
}

type MemberHandler struct {
	service   *services.MemberService
	qrService *services.QRCodeService
}

func NewMemberHandler(service *services.MemberService, qrService *services.QRCodeService) *MemberHandler {
	return &MemberHandler{
		service:   service,
		qrService: qrService,
	}
}

// Create 创建会员
func (h *MemberHandler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	member := &models.Member{
		GymID:  middleware.GetGymID(c),
		Code:   req.Code,
		Name:   req.Name,
		Phone:  req.Phone,
		Gender: req.Gender,
		Note:   req.Note,
	}

	created, err := h.service.Create(member)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.BadRequest(c, "会员编号已存在")
			return
		}
		response.ServerError(c, "创建失败")
		return
	}

	response.Success(c, created)
}

// GetByID 获取会员
func (h *MemberHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	member, err := h.service.GetByID(middleware.GetGymID(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "会员不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, member)
}

// GetAll 会员列表（分页，支持状态筛选和关键词搜索）
func (h *MemberHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	status := c.Query("status")
	keyword := c.Query("keyword")

	members, total, err := h.service.GetWithFiltersAndPage(
		middleware.GetGymID(c), status, keyword, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, members, pageInfo)
}

// Update 更新会员
func (h *MemberHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	member, err := h.service.Update(middleware.GetGymID(c), uint(id), req.Name, req.Phone, req.Gender, req.Note, req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "会员不存在")
			return
		}
		if strings.Contains(err.Error(), "状态只能") {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, member)
}

// Delete 删除会员
func (h *MemberHandler) Delete(c *gin.Context) {
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

// GetQRCode 生成会员考勤二维码
func (h *MemberHandler) GetQRCode(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	member, err := h.service.GetByID(middleware.GetGymID(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "会员不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	qrCode, err := h.qrService.Encode(member)
	if err != nil {
		response.ServerError(c, "生成二维码失败")
		return
	}

	response.Success(c, qrCode)
}

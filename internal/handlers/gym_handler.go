package handlers

import (
	"errors"
	"strconv"
	"strings"

	"gymhub/internal/services"
	"gymhub/pkg/pagination"
	"gymhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateGymRequest 创建场馆请求
type CreateGymRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// UpdateGymRequest 更新场馆请求
type UpdateGymRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type GymHandler struct {
	service *services.GymService
}

func NewGymHandler(service *services.GymService) *GymHandler {
	return &GymHandler{
		service: service,
	}
}

// Create 创建场馆
func (h *GymHandler) Create(c *gin.Context) {
	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	gym, err := h.service.Create(req.Name, req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.BadRequest(c, "场馆代码已存在")
			return
		}

		errMsg := err.Error()
		if strings.Contains(errMsg, "场馆名称长度") || strings.Contains(errMsg, "场馆代码长度") {
			response.BadRequest(c, errMsg)
			return
		}

		response.ServerError(c, "创建失败")
		return
	}

	response.Success(c, gym)
}

// GetByID 获取场馆
func (h *GymHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	gym, err := h.service.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "场馆不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, gym)
}

// GetAll 场馆列表（分页）
func (h *GymHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	status := c.Query("status")
	keyword := c.Query("keyword")

	gyms, total, err := h.service.GetWithFiltersAndPage(status, keyword, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, gyms, pageInfo)
}

// Update 更新场馆
func (h *GymHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	gym, err := h.service.Update(uint(id), req.Name, req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "场馆不存在")
			return
		}

		errMsg := err.Error()
		if strings.Contains(errMsg, "场馆名称长度") || strings.Contains(errMsg, "状态只能") {
			response.BadRequest(c, errMsg)
			return
		}

		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, gym)
}

// Delete 删除场馆
func (h *GymHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.Delete(uint(id)); err != nil {
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

// Activate 激活场馆
func (h *GymHandler) Activate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	gym, err := h.service.Activate(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "场馆不存在")
			return
		}
		response.ServerError(c, "激活失败")
		return
	}

	response.SuccessWithMessage(c, "场馆激活成功", gym)
}

// Deactivate 停用场馆
func (h *GymHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	gym, err := h.service.Deactivate(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "场馆不存在")
			return
		}
		response.ServerError(c, "停用失败")
		return
	}

	response.SuccessWithMessage(c, "场馆停用成功", gym)
}

// GetStats 获取场馆统计
func (h *GymHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats()
	if err != nil {
		response.ServerError(c, "获取统计失败")
		return
	}

	response.Success(c, stats)
}

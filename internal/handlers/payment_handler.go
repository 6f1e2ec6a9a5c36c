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

// CreatePaymentRequest 创建收款请求
type CreatePaymentRequest struct {
	MemberID     uint    `json:"member_id" binding:"required"`
	MembershipID *uint   `json:"membership_id"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	Method       string  `json:"method" binding:"required"`
	Note         *string `json:"note"`
}

type PaymentHandler struct {
	service *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service: service,
	}
}

// Create 创建收款记录
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	payment := &models.Payment{
		GymID:        middleware.GetGymID(c),
		MemberID:     req.MemberID,
		MembershipID: req.MembershipID,
		Amount:       req.Amount,
		Method:       req.Method,
		Note:         req.Note,
	}

	created, err := h.service.Create(payment)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "会员不存在")
			return
		}
		errMsg := err.Error()
		if strings.Contains(errMsg, "金额") || strings.Contains(errMsg, "支付方式") {
			response.BadRequest(c, errMsg)
			return
		}
		response.ServerError(c, "创建失败")
		return
	}

	response.Success(c, created)
}

// GetAll 收款记录列表（分页）
func (h *PaymentHandler) GetAll(c *gin.Context) {
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
	method := c.Query("method")

	payments, total, err := h.service.GetWithFiltersAndPage(
		middleware.GetGymID(c), memberID, method, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, payments, pageInfo)
}

// GetSummary 按支付方式汇总收款
func (h *PaymentHandler) GetSummary(c *gin.Context) {
	fromStr := c.DefaultQuery("from", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	toStr := c.DefaultQuery("to", time.Now().AddDate(0, 0, 1).Format("2006-01-02"))

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		response.BadRequest(c, "from日期格式错误，应为 YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		response.BadRequest(c, "to日期格式错误，应为 YYYY-MM-DD")
		return
	}

	summary, err := h.service.GetSummaryByMethod(middleware.GetGymID(c), from, to)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, summary)
}

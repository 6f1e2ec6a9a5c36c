package router

import (
	"time"

	"gymhub/internal/database"
	"gymhub/internal/handlers"
	"gymhub/internal/middleware"
	"gymhub/internal/services"
	"gymhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	db := database.GetDB()

	userService := services.NewUserService(db)
	auth := middleware.NewAuthMiddleware(userService)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// JWT认证路由（登录无需认证）
		authHandler := handlers.NewAuthHandler(userService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.RefreshToken)
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// 考勤路由（扫码入口）
		attendanceService := services.NewAttendanceService(db, database.GetRedisQueue())
		attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
		attendance := api.Group("/attendance", auth.RequireLogin())
		{
			attendance.POST("/scan", attendanceHandler.Scan)
			attendance.POST("/auto-checkout", attendanceHandler.AutoCheckout)
			attendance.GET("/sessions", attendanceHandler.ListSessions)
		}

		// 会员路由
		memberHandler := handlers.NewMemberHandler(services.NewMemberService(db), services.NewQRCodeService())
		members := api.Group("/members", auth.RequireLogin())
		{
			members.POST("", memberHandler.Create)
			members.GET("", memberHandler.GetAll)
			members.GET("/:id", memberHandler.GetByID)
			members.PUT("/:id", memberHandler.Update)
			members.DELETE("/:id", memberHandler.Delete)

			// 会员考勤二维码
			members.GET("/:id/qrcode", memberHandler.GetQRCode)
		}

		// 会籍路由
		membershipHandler := handlers.NewMembershipHandler(services.NewMembershipService(db))
		memberships := api.Group("/memberships", auth.RequireLogin())
		{
			memberships.POST("", membershipHandler.Create)
			memberships.GET("/member/:member_id", membershipHandler.GetByMember)
			memberships.PUT("/:id", membershipHandler.Update)
			memberships.DELETE("/:id", membershipHandler.Delete)
		}

		// 收款路由
		paymentHandler := handlers.NewPaymentHandler(services.NewPaymentService(db))
		payments := api.Group("/payments", auth.RequireLogin())
		{
			payments.POST("", paymentHandler.Create)
			payments.GET("", paymentHandler.GetAll)
			payments.GET("/summary", paymentHandler.GetSummary)
		}

		// 咨询路由
		inquiryHandler := handlers.NewInquiryHandler(services.NewInquiryService(db))
		inquiries := api.Group("/inquiries", auth.RequireLogin())
		{
			inquiries.POST("", inquiryHandler.Create)
			inquiries.GET("", inquiryHandler.GetAll)
			inquiries.PUT("/:id/status", inquiryHandler.UpdateStatus)
			inquiries.DELETE("/:id", inquiryHandler.Delete)
		}

		// 员工路由
		userHandler := handlers.NewUserHandler(userService)
		users := api.Group("/users", auth.RequireLogin())
		{
			users.POST("", userHandler.Create)
			users.GET("", userHandler.GetAll)
			users.POST("/:id/reset-password", userHandler.ResetPassword)
		}

		// 场馆路由（平台管理员专用）
		gymHandler := handlers.NewGymHandler(services.NewGymService(db))
		gyms := api.Group("/gyms", auth.RequireLogin(), auth.RequirePlatformAdmin())
		{
			gyms.POST("", gymHandler.Create)
			gyms.GET("", gymHandler.GetAll)
			gyms.GET("/stats", gymHandler.GetStats)
			gyms.GET("/:id", gymHandler.GetByID)
			gyms.PUT("/:id", gymHandler.Update)
			gyms.DELETE("/:id", gymHandler.Delete)
			gyms.POST("/:id/activate", gymHandler.Activate)
			gyms.POST("/:id/deactivate", gymHandler.Deactivate)
		}

		// WebSocket路由（考勤实时推送）
		wsHandler := handlers.NewWebSocketHandler()
		ws := api.Group("/ws")
		{
			// WebSocket连接不能使用常规的中间件，认证通过query参数处理
			ws.GET("/attendance", wsHandler.AttendanceFeed)
		}
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "GymHub",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}

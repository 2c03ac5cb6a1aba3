package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/laporwarga/backend/internal/middleware"
	"github.com/laporwarga/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine. The
// returned limiters must be stopped on shutdown.
func registerRoutes(r *gin.Engine, svc *appServices) []*middleware.RateLimiter {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.Server.CORSOrigins...))
	r.MaxMultipartMemory = 8 << 20

	authLimiter := middleware.PerMinute(20)
	otpLimiter := middleware.PerMinute(5)
	chatLimiter := middleware.PerMinute(30)

	r.GET("/health", svc.healthHandler.CheckHealth)

	// Locally stored uploads; a remote image host serves its own URLs.
	if svc.cfg.Upload.RemoteEndpoint == "" {
		r.Static("/uploads", svc.cfg.Upload.Dir)
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
			auth.POST("/otp/verify", otpLimiter.Middleware(), svc.authHandler.VerifyOTP)
			auth.POST("/otp/resend", otpLimiter.Middleware(), svc.authHandler.ResendOTP)
		}

		// Public reading
		api.GET("/news", svc.newsHandler.List)
		api.GET("/news/:id", svc.newsHandler.Get)
		api.GET("/news/:id/comments", svc.newsHandler.ListComments)
		api.GET("/news-categories", svc.newsHandler.Categories)
		api.GET("/complaint-categories", svc.complaintHandler.Categories)

		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			protected.POST("/uploads", svc.uploadHandler.Upload)

			protected.GET("/complaints", svc.complaintHandler.List)
			protected.GET("/complaints/me", svc.complaintHandler.Mine)
			protected.GET("/complaints/:id", svc.complaintHandler.Get)

			protected.GET("/profile", svc.userHandler.Profile)
			protected.PUT("/profile", svc.userHandler.UpdateProfile)
			protected.POST("/profile/password", svc.userHandler.ChangePassword)

			protected.GET("/chatbot/topics", svc.chatbotHandler.Topics)
		}

		citizen := protected.Group("", middleware.UserRequired())
		{
			citizen.POST("/complaints", svc.complaintHandler.Create)
			citizen.POST("/news/:id/comments", svc.newsHandler.CreateComment)
			citizen.POST("/chatbot", chatLimiter.Middleware(), svc.chatbotHandler.Ask)
			citizen.GET("/chatbot/me", svc.chatbotHandler.MyResponses)
		}

		admin := protected.Group("", middleware.AdminRequired(), middleware.AuditLog())
		{
			admin.GET("/dashboard/stats", svc.dashboardHandler.GetStats)

			admin.DELETE("/complaints", svc.complaintHandler.BulkDelete)
			admin.POST("/complaints/:id/feedback", svc.complaintHandler.CreateFeedback)
			admin.PUT("/complaints/:id/feedback/:feedback_id", svc.complaintHandler.UpdateFeedback)
			admin.PUT("/complaints/:id/status", svc.complaintHandler.UpdateStatus)

			admin.POST("/news", svc.newsHandler.Create)
			admin.PUT("/news/:id", svc.newsHandler.Update)
			admin.DELETE("/news", svc.newsHandler.BulkDelete)
			admin.DELETE("/comments", svc.newsHandler.DeleteComments)

			admin.GET("/users", svc.userHandler.List)
			admin.GET("/users/:id", svc.userHandler.Get)
			admin.PUT("/users/:id", svc.userHandler.Update)
			admin.DELETE("/users/:id", svc.userHandler.Delete)

			admin.POST("/chatbot/suggestions", chatLimiter.Middleware(), svc.chatbotHandler.AddSuggestion)
			admin.GET("/chatbot/suggestions/:complaint_id", svc.chatbotHandler.ListSuggestions)
			admin.GET("/chatbot/history/:complaint_id", svc.chatbotHandler.ListHistory)

			admin.GET("/system-logs", svc.systemLogHandler.List)
			admin.GET("/system-logs/modules", svc.systemLogHandler.GetModules)

			admin.GET("/llm-configs", svc.llmConfigHandler.List)
			admin.GET("/llm-configs/:id", svc.llmConfigHandler.GetByID)
			admin.POST("/llm-configs", svc.llmConfigHandler.Create)
			admin.PUT("/llm-configs/:id", svc.llmConfigHandler.Update)
			admin.DELETE("/llm-configs/:id", svc.llmConfigHandler.Delete)

			admin.GET("/system-config/:group", svc.configHandler.GetGroup)
			admin.PUT("/system-config/:group", svc.configHandler.UpdateGroup)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(404, gin.H{"code": 404, "message": "endpoint tidak ditemukan"})
			return
		}
		c.Status(404)
	})

	return []*middleware.RateLimiter{authLimiter, otpLimiter, chatLimiter}
}

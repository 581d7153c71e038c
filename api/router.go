package api

import (
	"net/http"
	"time"

	"github.com/PiGomoku/pi-gomoku-backend/internal/admin"
	"github.com/PiGomoku/pi-gomoku-backend/internal/game"
	"github.com/PiGomoku/pi-gomoku-backend/internal/leaderboard"
	"github.com/PiGomoku/pi-gomoku-backend/internal/payment"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/database"
	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"uptime":       time.Since(startedAt).String(),
			"userCount":    user.UserCount(),
			"redisHealthy": database.IsRedisHealthy(),
		})
	})

	api := router.Group("/api")
	{
		// 身份与用户相关的路由
		api.POST("/auth/login", user.LoginHandler)
		userRoutes := api.Group("/users")
		{
			userRoutes.GET("/stats", user.GetStatsHandler)
			userRoutes.GET("/profile", user.GetProfileHandler)
		}

		// 对局上报
		api.POST("/games/record", game.RecordGameHandler)

		// 排行榜相关的路由组
		leaderboardRoutes := api.Group("/leaderboard")
		{
			leaderboardRoutes.GET("", leaderboard.GetLeaderboardHandler)
			leaderboardRoutes.GET("/rank", leaderboard.GetRankHandler)
		}

		// 支付相关的路由组
		paymentRoutes := api.Group("/payment")
		{
			paymentRoutes.POST("/create", payment.CreateHandler)
			paymentRoutes.POST("/approve", payment.ApproveHandler)
			paymentRoutes.POST("/complete", payment.CompleteHandler)
			paymentRoutes.POST("/consume", payment.ConsumeHandler)
			paymentRoutes.GET("/balance", payment.GetBalanceHandler)
		}

		// 管理相关的路由组，整组走密钥校验
		adminRoutes := api.Group("/admin", admin.RequireAdminKey())
		{
			adminRoutes.POST("/reset/monthly", admin.TriggerMonthlyResetHandler)
			adminRoutes.GET("/reset/status", admin.ResetStatusHandler)
			adminRoutes.POST("/cleanup", admin.CleanupHandler)
			adminRoutes.POST("/complete-reset", admin.CompleteResetHandler)
			adminRoutes.POST("/fix-user-data", admin.FixUserDataHandler)
			adminRoutes.GET("/stats", admin.SystemStatsHandler)
		}
	}
}

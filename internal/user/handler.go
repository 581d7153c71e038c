package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- API请求/响应模型 ---

type LoginRequest struct {
	AccessToken string `json:"accessToken" binding:"required"`
	Username    string `json:"username"`
}

// LoginHandler 处理 POST /api/auth/login
func LoginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "无效的请求体"})
		return
	}

	result, err := Login(req.AccessToken, req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "身份校验失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    result.Profile,
		"isNew":   result.IsNew,
	})
}

// GetStatsHandler 处理 GET /api/users/stats?userId=...
// 未知用户按零统计创建后返回，小程序前端不需要区分"还没玩过"和"不存在"。
func GetStatsHandler(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID = c.Query("uid")
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "缺少userId参数"})
		return
	}

	GetOrCreateUser(userID, "")
	view, _ := GetStats(userID)
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": view})
}

// GetProfileHandler 处理 GET /api/users/profile?userId=...
// 与stats不同，它返回包含余额与对局历史的完整档案，且不隐式创建。
func GetProfileHandler(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "缺少userId参数"})
		return
	}

	profile, ok := GetUser(userID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "用户不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

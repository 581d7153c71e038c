package leaderboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetLeaderboardHandler 处理 GET /api/leaderboard?limit=...
func GetLeaderboardHandler(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "无效的limit参数"})
			return
		}
		limit = parsed
	}

	entries := GetLeaderboard(limit)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"leaderboard": entries,
		"total":       len(entries),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}

// GetRankHandler 处理 GET /api/leaderboard/rank?userId=...
// rank为0表示用户未上榜（不存在或无资格）。
func GetRankHandler(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "缺少userId参数"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"rank":      GetRank(userID),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

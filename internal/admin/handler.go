package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/PiGomoku/pi-gomoku-backend/internal/game"
	"github.com/PiGomoku/pi-gomoku-backend/internal/leaderboard"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/config"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/database"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/metadata"
	"github.com/PiGomoku/pi-gomoku-backend/internal/reset"
	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// completeResetConfirmToken 是完整重置的确认口令，防止误触
const completeResetConfirmToken = "CONFIRM_COMPLETE_RESET"

// TriggerMonthlyResetHandler 处理 POST /api/admin/reset/monthly
// 立即执行一次月度重置，不等月份翻转。
func TriggerMonthlyResetHandler(c *gin.Context) {
	if err := reset.TriggerResetNow(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "月度重置已执行"})
}

// ResetStatusHandler 处理 GET /api/admin/reset/status
func ResetStatusHandler(c *gin.Context) {
	state, lastRunAt, lastRunInfo := reset.Status()
	lastMonth, err := metadata.GetLastResetMonth(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取重置基线"})
		return
	}
	resp := gin.H{
		"state":          state,
		"lastResetMonth": lastMonth,
		"currentMonth":   time.Now().Format("2006-01"),
	}
	if !lastRunAt.IsZero() {
		resp["lastRunAt"] = lastRunAt
		resp["lastRunInfo"] = lastRunInfo
	}
	c.JSON(http.StatusOK, resp)
}

// CleanupHandler 处理 POST /api/admin/cleanup
// 先按用户名去重，再清除测试/演示用户，最后清排行榜缓存。
func CleanupHandler(c *gin.Context) {
	deduped := user.DeduplicateByUsername()
	purged := user.PurgeSynthetic(
		config.Cfg.Leaderboard.SyntheticIDPrefixes,
		config.Cfg.Leaderboard.UsernameBlocklist,
	)
	leaderboard.InvalidateCache()

	fmt.Printf("管理端清理: 去重删除 %d，合成用户删除 %d。\n", deduped, purged)
	c.JSON(http.StatusOK, gin.H{
		"deduplicated": deduped,
		"purged":       purged,
		"remaining":    user.UserCount(),
	})
}

type CompleteResetRequest struct {
	Confirm string `json:"confirm" binding:"required"`
}

// CompleteResetHandler 处理 POST /api/admin/complete-reset
// 删除全部用户与对局记录。必须携带确认口令，不可逆。
func CompleteResetHandler(c *gin.Context) {
	var req CompleteResetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirm != completeResetConfirmToken {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少或错误的确认口令"})
		return
	}

	removedUsers := user.ClearAllUsers()
	removedGames, err := game.ClearAllRecords()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	leaderboard.InvalidateCache()

	fmt.Printf("管理端完整重置: 删除 %d 个用户，%d 条对局记录。\n", removedUsers, removedGames)
	c.JSON(http.StatusOK, gin.H{
		"removedUsers": removedUsers,
		"removedGames": removedGames,
	})
}

// FixUserDataHandler 处理 POST /api/admin/fix-user-data
// 对全体用户重算派生统计值，修复历史数据中胜率与计数不一致的记录。
func FixUserDataHandler(c *gin.Context) {
	fixed := 0
	for _, p := range user.SnapshotProfiles() {
		current := p.Current
		lifetime := p.Lifetime
		if _, ok := user.UpdateUser(p.ID, user.UpdateFields{
			Current:  &current,
			Lifetime: &lifetime,
		}); ok {
			fixed++
		}
	}
	leaderboard.InvalidateCache()
	c.JSON(http.StatusOK, gin.H{"fixed": fixed})
}

// SystemStatsHandler 处理 GET /api/admin/stats
func SystemStatsHandler(c *gin.Context) {
	lastSnapshotAt, err := metadata.GetLastSnapshotAt(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取快照元数据"})
		return
	}
	resp := gin.H{
		"userCount":    user.UserCount(),
		"pendingGames": game.PendingCount(),
		"redisHealthy": database.IsRedisHealthy(),
	}
	if !lastSnapshotAt.IsZero() {
		resp["lastSnapshotAt"] = lastSnapshotAt
	}
	c.JSON(http.StatusOK, resp)
}

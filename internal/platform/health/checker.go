package health

import (
	"context"
	"fmt"
	"time"

	"github.com/PiGomoku/pi-gomoku-backend/internal/leaderboard"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/database"
	"github.com/PiGomoku/pi-gomoku-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// PerformCheck 执行一次健康检查并更新全局状态。
// Redis从故障恢复时缓存内容已不可信，清掉让下一次请求重建。
func PerformCheck() {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()

	err := database.RDB.Ping(ctx).Err()
	recovered := database.UpdateRedisStatus(err == nil) && err == nil
	if recovered {
		fmt.Println("健康检查: Redis已恢复，正在清除排行榜缓存...")
		leaderboard.InvalidateCache()
	}
}

// StartRedisHealthCheck 启动后台Goroutine定期检查Redis可用性。
func StartRedisHealthCheck(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("Redis健康检查器已启动。")

	for {
		if err := handle.Sleep(checkInterval); err != nil {
			fmt.Println("健康检查器: 收到停机信号，正在关闭...")
			return
		}
		PerformCheck()
	}
}

package leaderboard

import (
	"encoding/json"
	"fmt"

	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/config"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/database"
	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
)

// CacheKey 是排行榜在Redis中的缓存键
const CacheKey = "leaderboard:top"

// filterFromConfig 从配置构造上榜资格规则
func filterFromConfig() Filter {
	return Filter{
		RealUserPrefix:    config.Cfg.Leaderboard.RealUserPrefix,
		UsernameBlocklist: config.Cfg.Leaderboard.UsernameBlocklist,
	}
}

// GetLeaderboard 返回前limit名的榜单。
// 缓存的是完整榜单，按请求截断，因此不同limit的请求共享同一份缓存；
// Redis不可用时直接从内存计算，功能不降级。
func GetLeaderboard(limit int) []Entry {
	if limit <= 0 {
		limit = config.Cfg.Leaderboard.DefaultLimit
		if limit <= 0 {
			limit = 100
		}
	}

	if database.IsRedisHealthy() {
		if cached, err := database.RDB.Get(database.Ctx, CacheKey).Result(); err == nil {
			var entries []Entry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				if len(entries) > limit {
					entries = entries[:limit]
				}
				return entries
			}
		}
	}

	full := BuildLeaderboard(user.SnapshotProfiles(), filterFromConfig(), 0)

	if database.IsRedisHealthy() {
		if payload, err := json.Marshal(full); err == nil {
			ttl := config.Cfg.Leaderboard.CacheTTL()
			if err := database.RDB.Set(database.Ctx, CacheKey, payload, ttl).Err(); err != nil {
				fmt.Printf("警告: 无法写入排行榜缓存: %v\n", err)
			}
		}
	}

	if len(full) > limit {
		full = full[:limit]
	}
	return full
}

// GetRank 返回用户在完整榜单中的名次，无资格或不存在时为0。
// 名次总是基于当前内存状态实时计算，不走缓存。
func GetRank(userID string) int {
	return ComputeRank(user.SnapshotProfiles(), filterFromConfig(), userID)
}

// InvalidateCache 使排行榜缓存失效。
// 在月度重置、管理端清理等批量变更后调用，下一次请求会重新计算。
func InvalidateCache() {
	if !database.IsRedisHealthy() {
		return
	}
	if err := database.RDB.Del(database.Ctx, CacheKey).Err(); err != nil {
		fmt.Printf("警告: 无法清除排行榜缓存: %v\n", err)
	}
}

package database

import (
	"context"
	"fmt"

	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB 是全局的Redis客户端实例，仅作为排行榜等读路径的缓存层
var RDB *redis.Client

// Ctx 是一个全局的上下文，用于Redis操作
var Ctx = context.Background()

// InitRedis 初始化与Redis的连接。
// Redis在本系统中只承担缓存职责，连接失败不阻止进程启动，
// 只会将健康状态标记为不可用，读路径自动降级为内存计算。
func InitRedis(cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		fmt.Printf("警告: 无法连接到Redis (%v)，排行榜缓存将被禁用。\n", err)
		UpdateRedisStatus(false)
		return
	}

	UpdateRedisStatus(true)
	fmt.Println("Redis 连接成功！")
}

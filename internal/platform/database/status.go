package database

import (
	"fmt"
	"sync"
)

// statusManager 负责线程安全地管理和提供Redis缓存层的健康状态。
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
}

// 全局的状态管理器实例
var globalStatus = &statusManager{}

// IsRedisHealthy 返回当前Redis的健康状态。
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// UpdateRedisStatus 用于线程安全地更新健康状态。
// 返回状态是否发生了翻转，供调用方决定是否需要恢复动作。
func UpdateRedisStatus(isHealthy bool) bool {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	if globalStatus.isRedisHealthy == isHealthy {
		return false
	}
	globalStatus.isRedisHealthy = isHealthy
	if isHealthy {
		fmt.Println("健康检查: Redis服务状态已更新为 [可用]")
	} else {
		fmt.Println("健康检查警告: Redis服务状态已更新为 [不可用]")
	}
	return true
}

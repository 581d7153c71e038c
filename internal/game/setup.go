package game

import (
	"fmt"

	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/database"
)

// PrimeDB 负责初始化game模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("无法迁移对局记录表: %w", err)
	}
	fmt.Println("对局记录数据库表迁移成功。")
	return nil
}

// ClearAllRecords 删除全部对局记录（包括待落盘队列），供管理端完整重置使用。
// 返回快照库中删除的行数。
func ClearAllRecords() (int64, error) {
	queueMutex.Lock()
	queue = nil
	queueMutex.Unlock()

	result := database.DB.Where("1 = 1").Delete(&Record{})
	if result.Error != nil {
		return 0, fmt.Errorf("无法清空对局记录表: %w", result.Error)
	}
	return result.RowsAffected, nil
}

package game

import (
	"time"

	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
)

// Record 定义了单局对局记录的持久化模型。
// 记录只增不改，作为统计数据的审计来源。
type Record struct {
	// ID 是UUIDv7格式的对局ID，按时间有序
	ID string `gorm:"primarykey;type:varchar(36)"`

	UserID   string          `gorm:"index;type:varchar(64)"`
	Username string
	Result   user.GameResult `gorm:"type:varchar(8)"`

	// PayloadJSON 保存客户端上报的对局细节（落子数、用时等），原样存储
	PayloadJSON string `gorm:"type:text"`

	Timestamp time.Time
}

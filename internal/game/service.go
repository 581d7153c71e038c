package game

import (
	"fmt"
	"time"

	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
	"github.com/google/uuid"
)

// RecordResult 是一次对局上报的处理结果
type RecordResult struct {
	GameID string
	Stats  user.Stats
}

// RecordGame 处理一局对局结果的上报：
// 校验结果合法性，生成按时间有序的对局ID，把结果记入用户统计，
// 并将对局记录入队等待批量落盘。
func RecordGame(userID, username string, result user.GameResult, payloadJSON string) (RecordResult, error) {
	if userID == "" {
		return RecordResult{}, fmt.Errorf("缺少用户ID")
	}
	if !user.IsValidResult(result) {
		return RecordResult{}, fmt.Errorf("无效的对局结果: %s", result)
	}

	gameID, err := uuid.NewV7()
	if err != nil {
		return RecordResult{}, fmt.Errorf("无法生成对局ID: %w", err)
	}

	stats, err := user.ApplyGameResult(userID, username, result, gameID.String())
	if err != nil {
		return RecordResult{}, err
	}

	enqueue(Record{
		ID:          gameID.String(),
		UserID:      userID,
		Username:    username,
		Result:      result,
		PayloadJSON: payloadJSON,
		Timestamp:   time.Now(),
	})

	return RecordResult{GameID: gameID.String(), Stats: stats}, nil
}

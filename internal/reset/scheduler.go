package reset

import (
	"fmt"
	"sync"
	"time"

	"github.com/PiGomoku/pi-gomoku-backend/internal/leaderboard"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/config"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/database"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/metadata"
	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
	"github.com/PiGomoku/pi-gomoku-backend/pkg/lifecycle"
)

// monthLabel 是月份标签的格式，如 "2025-09"
const monthLabel = "2006-01"

// State 是调度器对外可见的状态
type State string

const (
	StateIdle      State = "idle"
	StateResetting State = "resetting"
)

var (
	stateMutex  sync.Mutex
	state       = StateIdle
	lastRunAt   time.Time
	lastRunInfo string
)

// Status 返回调度器当前状态，供管理端查询
func Status() (State, time.Time, string) {
	stateMutex.Lock()
	defer stateMutex.Unlock()
	return state, lastRunAt, lastRunInfo
}

// StartScheduler 启动月度重置调度器。
// 启动后先延迟一小段时间（让启动期的流量先落定），随后按固定间隔
// 检查月份是否翻转。重置完成与否以持久化的标签为准，重启后不会重复执行。
func StartScheduler(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("月度重置调度器已启动。")

	if err := handle.Sleep(config.Cfg.Reset.StartupDelay()); err != nil {
		fmt.Println("月度重置调度器: 休眠被中断，正在关闭...")
		return
	}

	for {
		if err := CheckAndRunReset(); err != nil {
			fmt.Printf("月度重置调度器错误: %v\n", err)
		}
		if err := handle.Sleep(config.Cfg.Reset.CheckInterval()); err != nil {
			fmt.Println("月度重置调度器: 休眠被中断，正在关闭...")
			return
		}
	}
}

// CheckAndRunReset 比较持久化的上次重置月份与当前月份，翻转了才执行重置。
// 月份粒度的幂等：同一个月内无论调用多少次，重置只发生一次。
func CheckAndRunReset() error {
	currentMonth := time.Now().Format(monthLabel)

	lastMonth, err := metadata.GetLastResetMonth(database.DB)
	if err != nil {
		return fmt.Errorf("无法读取上次重置月份: %w", err)
	}

	if lastMonth == "" {
		// 首次启动：只登记基线，不重置
		if err := metadata.SetLastResetMonth(database.DB, currentMonth); err != nil {
			return fmt.Errorf("无法登记重置基线: %w", err)
		}
		fmt.Printf("月度重置: 基线已登记为 %s。\n", currentMonth)
		return nil
	}

	if lastMonth == currentMonth {
		return nil
	}

	// 归档标签是刚结束的那个周期；宕机跨越多月时合并为一次归档
	return RunResetPass(lastMonth, currentMonth)
}

// RunResetPass 对全体用户执行一次重置，归档标签为archiveLabel，
// 完成后把持久化基线推进到newMonth。
func RunResetPass(archiveLabel, newMonth string) error {
	stateMutex.Lock()
	if state == StateResetting {
		stateMutex.Unlock()
		return fmt.Errorf("重置已在进行中")
	}
	state = StateResetting
	stateMutex.Unlock()

	defer func() {
		stateMutex.Lock()
		state = StateIdle
		stateMutex.Unlock()
	}()

	fmt.Printf("月度重置: 开始归档 %s 并开启 %s。\n", archiveLabel, newMonth)
	resetAt := time.Now()
	processed, failed := user.ApplyMonthlyReset(archiveLabel, resetAt)

	// 先推进基线再清缓存：基线是幂等判定的唯一依据
	if err := metadata.SetLastResetMonth(database.DB, newMonth); err != nil {
		return fmt.Errorf("重置已应用但无法推进基线，下一轮检查会重复归档: %w", err)
	}
	leaderboard.InvalidateCache()

	stateMutex.Lock()
	lastRunAt = resetAt
	lastRunInfo = fmt.Sprintf("归档%s: 成功%d, 失败%d", archiveLabel, processed, failed)
	stateMutex.Unlock()

	fmt.Printf("月度重置: 完成。处理 %d 个用户，失败 %d 个。\n", processed, failed)
	return nil
}

// TriggerResetNow 立即执行一次重置，不等月份翻转。供管理端手动触发。
// 归档标签取当前月份，基线同步推进到当前月份，因此本月的自动重置不会再次触发。
func TriggerResetNow() error {
	currentMonth := time.Now().Format(monthLabel)
	return RunResetPass(currentMonth, currentMonth)
}

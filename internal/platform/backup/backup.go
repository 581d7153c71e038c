package backup

import (
	"fmt"
	"sync"
	"time"

	"github.com/PiGomoku/pi-gomoku-backend/internal/game"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/config"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/database"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/metadata"
	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
	"github.com/PiGomoku/pi-gomoku-backend/pkg/lifecycle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var backupMutex sync.Mutex // 避免意外竞态

// StartBackupScheduler 启动快照调度器。
// 两种触发方式：任一模块发出变更信号后经过一个去抖窗口触发增量快照；
// 即使没有信号，也按固定间隔做一次兜底快照。
func StartBackupScheduler(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("快照调度器已启动。")

	interval := config.Cfg.Backup.Interval()
	debounce := config.Cfg.Backup.Debounce()

	userSignal := user.FlushSignal()
	gameSignal := game.FlushSignal()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-handle.Ctx().Done():
			fmt.Println("快照调度器: 收到停机信号，正在关闭...")
			return
		case <-userSignal:
		case <-gameSignal:
		case <-timer.C:
			timer.Reset(interval)
			if err := CreateSnapshotInDB(); err != nil {
				fmt.Printf("快照调度器错误: 定时快照失败: %v\n", err)
			}
			continue
		}

		// 信号触发：等一个去抖窗口，把密集变更合并成一次落盘
		if err := handle.Sleep(debounce); err != nil {
			// 停机前把已有增量落盘
			if err := CreateSnapshotInDB(); err != nil {
				fmt.Printf("快照调度器错误: 停机前快照失败: %v\n", err)
			}
			fmt.Println("快照调度器: 收到停机信号，正在关闭...")
			return
		}
		drainSignals(userSignal, gameSignal)

		if err := CreateSnapshotInDB(); err != nil {
			fmt.Printf("快照调度器错误: 增量快照失败: %v\n", err)
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(interval)
	}
}

// drainSignals 吸收去抖窗口内累计的重复信号
func drainSignals(userSignal, gameSignal <-chan struct{}) {
	for {
		select {
		case <-userSignal:
		case <-gameSignal:
		default:
			return
		}
	}
}

// CreateSnapshotInDB 把内存中的待落盘增量写入快照库。
// 用户覆写、用户删除、对局插入和快照时间戳在同一个事务里提交；
// 事务失败时把增量归还给各模块，等待下一轮重试。
func CreateSnapshotInDB() error {
	backupMutex.Lock()
	defer backupMutex.Unlock()

	changes := user.CollectPendingChanges()
	records := game.CollectPendingRecords()
	if changes.Empty() && len(records) == 0 {
		return nil
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if len(changes.Upserts) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&changes.Upserts).Error; err != nil {
				return fmt.Errorf("无法写入用户快照: %w", err)
			}
		}
		if len(changes.RemovedIDs) > 0 {
			if err := tx.Where("id IN ?", changes.RemovedIDs).Delete(&user.User{}).Error; err != nil {
				return fmt.Errorf("无法清除已删除用户: %w", err)
			}
		}
		if len(records) > 0 {
			if err := tx.Create(&records).Error; err != nil {
				return fmt.Errorf("无法写入对局记录: %w", err)
			}
		}
		return metadata.SetLastSnapshotAt(tx, time.Now())
	})
	if err != nil {
		user.RestorePendingChanges(changes)
		game.RestorePendingRecords(records)
		return err
	}

	fmt.Printf("快照: 用户覆写 %d，用户删除 %d，对局写入 %d。\n",
		len(changes.Upserts), len(changes.RemovedIDs), len(records))
	return nil
}

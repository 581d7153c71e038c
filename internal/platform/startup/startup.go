package startup

import (
	"fmt"

	"github.com/PiGomoku/pi-gomoku-backend/internal/game"
	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/metadata"
	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口。
// 调用前提：数据库已连接，user模块的内存仓库已创建。
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := user.PrimeCachedDB(); err != nil {
		return err
	}
	if err := game.PrimeDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

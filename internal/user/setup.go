package user

import (
	"fmt"

	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/database"
)

// PrimeCachedDB 负责初始化user模块：迁移表结构并把快照库中的全部用户加载进内存仓库。
// 必须在 InitializeRepository 之后、HTTP服务启动之前调用。
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := loadUsersFromDB(); err != nil {
		return err
	}
	return nil
}

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移user表: %w", err)
	}
	fmt.Println("User数据库表迁移成功。")
	return nil
}

// loadUsersFromDB 从快照库恢复内存仓库。
// 启动期单线程执行，直接写map，不经过dirty标记——刚加载的数据没有待落盘增量。
func loadUsersFromDB() error {
	var usersInDB []User
	if err := database.DB.Find(&usersInDB).Error; err != nil {
		return fmt.Errorf("无法从快照库读取用户数据: %w", err)
	}

	repoMutex.Lock()
	defer repoMutex.Unlock()
	for i := range usersInDB {
		p := usersInDB[i].toProfile()
		globalRepository.users[p.ID] = p
	}
	fmt.Printf("已从快照库加载 %d 个用户。\n", len(usersInDB))
	return nil
}

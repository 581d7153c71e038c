package user

import "time"

// 本文件是user模块对外的门面：
// 所有跨模块调用都走这里的包级函数，内部转发给全局仓库实例。

// GetUser 按ID查找用户，返回深拷贝；不存在时第二个返回值为false。
func GetUser(id string) (Profile, bool) {
	return globalRepository.getUser(id)
}

// GetOrCreateUser 查找用户，不存在时以给定用户名创建。
// 第二个返回值表示用户是否是本次新建的。
func GetOrCreateUser(id, username string) (Profile, bool) {
	return globalRepository.getOrCreate(id, username)
}

// UpdateUser 按字段浅合并更新用户；用户不存在时返回false。
func UpdateUser(id string, fields UpdateFields) (Profile, bool) {
	return globalRepository.updateUser(id, fields)
}

// TouchLogin 刷新用户的最后登录时间。
func TouchLogin(id string) {
	globalRepository.touchLogin(id)
}

// ApplyGameResult 将一局结果记入用户统计，必要时隐式创建用户。
func ApplyGameResult(userID, username string, result GameResult, gameID string) (Stats, error) {
	return globalRepository.applyGameResult(userID, username, result, gameID)
}

// AdjustBalance 给余额加上带符号的增量，返回新余额；用户不存在时返回false。
func AdjustBalance(id string, delta float64) (float64, bool) {
	return globalRepository.adjustBalance(id, delta)
}

// DebitBalance 原子地检查并扣减余额；余额不足或用户不存在时返回错误。
func DebitBalance(id string, amount float64) (float64, error) {
	return globalRepository.debitBalance(id, amount)
}

// SnapshotProfiles 返回全部用户的一致性拷贝，供排行榜等只读消费方使用。
func SnapshotProfiles() []Profile {
	return globalRepository.snapshotProfiles()
}

// UserCount 返回当前用户总数。
func UserCount() int {
	return globalRepository.userCount()
}

// PurgeSynthetic 删除测试/演示用户，返回删除数量。
func PurgeSynthetic(idPrefixes, usernameBlocklist []string) int {
	return globalRepository.purgeSynthetic(idPrefixes, usernameBlocklist)
}

// DeduplicateByUsername 按用户名去重，返回删除数量。重复执行是幂等的。
func DeduplicateByUsername() int {
	return globalRepository.deduplicateByUsername()
}

// ClearAllUsers 删除所有用户，返回删除数量。不可逆。
func ClearAllUsers() int {
	return globalRepository.clearAllUsers()
}

// ApplyMonthlyReset 对全体用户执行月度重置，label是刚结束的那个月（"YYYY-MM"）。
// 返回成功与失败的用户数。
func ApplyMonthlyReset(label string, resetAt time.Time) (processed, failed int) {
	return globalRepository.applyMonthlyReset(label, resetAt)
}

package user

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// repoMutex 保护仓库的全部内存状态。
// 读多写少（排行榜、查询走读锁），月度重置等全量遍历独占写锁。
var repoMutex sync.RWMutex

// repository 是user模块的中央数据仓库。
// 内存中的users map是权威状态；dirty/removed 记录自上次快照以来的增量，
// 供备份调度器做去抖的持久化。
type repository struct {
	users map[string]*Profile

	// dirty 记录统计数据发生变化、尚未落盘的用户ID
	dirty map[string]struct{}
	// removed 记录已删除、尚未从快照库清除的用户ID
	removed map[string]struct{}

	startingScore int

	// flushSignal 在任何一次变更后收到非阻塞通知，备份调度器据此去抖
	flushSignal chan struct{}
}

// globalRepository 是仓库的私有单例实例，由 InitializeRepository 显式创建
var globalRepository *repository

// newRepository 就地构造一个空仓库
func newRepository(startingScore int) *repository {
	return &repository{
		users:         make(map[string]*Profile),
		dirty:         make(map[string]struct{}),
		removed:       make(map[string]struct{}),
		startingScore: startingScore,
		flushSignal:   make(chan struct{}, 1),
	}
}

// InitializeRepository 创建全局仓库实例。
// 应该在应用启动时且仅调用一次，早于任何数据加载。
func InitializeRepository(startingScore int) {
	globalRepository = newRepository(startingScore)
}

// FlushSignal 返回变更通知channel，仅供备份调度器消费。
func FlushSignal() <-chan struct{} {
	return globalRepository.flushSignal
}

// markDirtyLocked 在已持有写锁的前提下标记用户待落盘，并通知备份调度器。
func (r *repository) markDirtyLocked(id string) {
	r.dirty[id] = struct{}{}
	select {
	case r.flushSignal <- struct{}{}:
	default:
	}
}

// --- 读操作 ---

// getUser 返回用户的深拷贝；不存在时第二个返回值为false。无副作用。
func (r *repository) getUser(id string) (Profile, bool) {
	repoMutex.RLock()
	defer repoMutex.RUnlock()
	p, ok := r.users[id]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// snapshotProfiles 在读锁下对全部用户做一致性拷贝。
// 返回的切片与仓库不共享任何可变状态，之后的变更不会影响它。
func (r *repository) snapshotProfiles() []Profile {
	repoMutex.RLock()
	defer repoMutex.RUnlock()
	profiles := make([]Profile, 0, len(r.users))
	for _, p := range r.users {
		profiles = append(profiles, p.clone())
	}
	return profiles
}

// userCount 返回当前用户总数
func (r *repository) userCount() int {
	repoMutex.RLock()
	defer repoMutex.RUnlock()
	return len(r.users)
}

// --- 写操作 ---

// createLocked 在已持有写锁的前提下创建新用户。调用方必须保证id不存在。
func (r *repository) createLocked(id, username string, now time.Time) *Profile {
	if username == "" {
		username = fmt.Sprintf("User_%s", idTail(id, 6))
	}
	p := &Profile{
		ID:            id,
		Username:      username,
		Balance:       0,
		Current:       zeroStats(r.startingScore),
		Lifetime:      CareerStats{},
		GameHistory:   []string{},
		Archive:       []MonthlySnapshot{},
		CreatedAt:     now,
		LastLoginAt:   now,
		LastUpdatedAt: now,
	}
	r.users[id] = p
	delete(r.removed, id)
	r.markDirtyLocked(id)
	return p
}

// getOrCreate 查找用户，不存在则创建。
// 对外只暴露这一个创建入口，从根上避免"create撞已有id"一类的冲突。
// 返回的bool表示用户是否是本次新建的。
func (r *repository) getOrCreate(id, username string) (Profile, bool) {
	repoMutex.Lock()
	defer repoMutex.Unlock()
	if p, ok := r.users[id]; ok {
		return p.clone(), false
	}
	p := r.createLocked(id, username, time.Now())
	return p.clone(), true
}

// UpdateFields 描述一次浅合并更新。nil字段不修改；
// 嵌套的统计对象整体替换，不做深合并——调用方必须提供完整对象。
type UpdateFields struct {
	Username      *string
	WalletAddress *string
	Balance       *float64
	Current       *Stats
	Lifetime      *CareerStats
	LastLoginAt   *time.Time
}

// updateUser 将给定字段浅合并进现有记录。
// 用户不存在时返回false，绝不隐式创建。
func (r *repository) updateUser(id string, fields UpdateFields) (Profile, bool) {
	repoMutex.Lock()
	defer repoMutex.Unlock()
	p, ok := r.users[id]
	if !ok {
		return Profile{}, false
	}
	if fields.Username != nil {
		p.Username = *fields.Username
	}
	if fields.WalletAddress != nil {
		p.WalletAddress = *fields.WalletAddress
	}
	if fields.Balance != nil {
		p.Balance = *fields.Balance
	}
	if fields.Current != nil {
		s := *fields.Current
		// 派生值永远以计数为准
		s.WinRate = computeWinRate(s.Wins, s.TotalGames)
		p.Current = s
	}
	if fields.Lifetime != nil {
		c := *fields.Lifetime
		c.WinRate = computeWinRate(c.Wins, c.TotalGames)
		p.Lifetime = c
	}
	if fields.LastLoginAt != nil {
		p.LastLoginAt = *fields.LastLoginAt
	}
	p.LastUpdatedAt = time.Now()
	r.markDirtyLocked(id)
	return p.clone(), true
}

// touchLogin 刷新用户的最后登录时间
func (r *repository) touchLogin(id string) {
	now := time.Now()
	r.updateUser(id, UpdateFields{LastLoginAt: &now})
}

// applyGameResult 将一局结果记入用户统计。
// 用户不存在时先用传入的username隐式创建；username与存量不同时同步更新。
// 赛季与生涯两套计数同时叠加，各自重算胜率，对局ID追加到历史。
func (r *repository) applyGameResult(userID, username string, result GameResult, gameID string) (Stats, error) {
	if !IsValidResult(result) {
		return Stats{}, fmt.Errorf("无效的对局结果: %s", result)
	}

	repoMutex.Lock()
	defer repoMutex.Unlock()

	now := time.Now()
	p, ok := r.users[userID]
	if !ok {
		p = r.createLocked(userID, username, now)
	} else if username != "" && username != p.Username {
		p.Username = username
	}

	p.Current = applyResultToStats(p.Current, result, r.startingScore)
	p.Lifetime = applyResultToCareer(p.Lifetime, result)
	p.GameHistory = append(p.GameHistory, gameID)
	p.LastUpdatedAt = now
	r.markDirtyLocked(userID)

	return p.Current, nil
}

// adjustBalance 给余额加上带符号的增量，返回新余额。
// 仓库本身不钳制负数结果——余额充足性由调用方在扣减前检查。
func (r *repository) adjustBalance(id string, delta float64) (float64, bool) {
	repoMutex.Lock()
	defer repoMutex.Unlock()
	p, ok := r.users[id]
	if !ok {
		return 0, false
	}
	p.Balance += delta
	p.LastUpdatedAt = time.Now()
	r.markDirtyLocked(id)
	return p.Balance, true
}

// debitBalance 在余额充足的前提下扣减。
// 检查与扣减在同一个临界区内完成，并发扣减不会把余额打成负数。
// 返回扣减后的余额；余额不足时不做任何修改并返回当前余额。
func (r *repository) debitBalance(id string, amount float64) (float64, error) {
	repoMutex.Lock()
	defer repoMutex.Unlock()
	p, ok := r.users[id]
	if !ok {
		return 0, fmt.Errorf("用户不存在: %s", id)
	}
	if p.Balance < amount {
		return p.Balance, fmt.Errorf("余额不足: 当前 %.4f，需要 %.4f", p.Balance, amount)
	}
	p.Balance -= amount
	p.LastUpdatedAt = time.Now()
	r.markDirtyLocked(id)
	return p.Balance, nil
}

// --- 维护操作 ---

// deleteLocked 在已持有写锁的前提下删除用户并登记到removed集合
func (r *repository) deleteLocked(id string) {
	delete(r.users, id)
	delete(r.dirty, id)
	r.removed[id] = struct{}{}
	select {
	case r.flushSignal <- struct{}{}:
	default:
	}
}

// purgeSynthetic 删除测试/演示用户：ID前缀命中或用户名包含黑名单子串。
// 返回删除的数量。
func (r *repository) purgeSynthetic(idPrefixes, usernameBlocklist []string) int {
	repoMutex.Lock()
	defer repoMutex.Unlock()

	removed := 0
	for id, p := range r.users {
		if isSyntheticLocked(id, p.Username, idPrefixes, usernameBlocklist) {
			r.deleteLocked(id)
			removed++
		}
	}
	return removed
}

func isSyntheticLocked(id, username string, idPrefixes, usernameBlocklist []string) bool {
	for _, prefix := range idPrefixes {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	for _, needle := range usernameBlocklist {
		if needle != "" && strings.Contains(username, needle) {
			return true
		}
	}
	return false
}

// deduplicateByUsername 按用户名去重。
// 历史上身份令牌轮换会让同一个人派生出多个ID（见pinet.DeriveUserID），
// 用户名碰撞是重复的现实信号。每组只保留一个幸存者：
// 赛季局数多者胜，局数相同时最后登录时间晚者胜。返回删除的数量。
func (r *repository) deduplicateByUsername() int {
	repoMutex.Lock()
	defer repoMutex.Unlock()

	byName := make(map[string][]*Profile)
	for _, p := range r.users {
		byName[p.Username] = append(byName[p.Username], p)
	}

	removed := 0
	for _, group := range byName {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if group[i].Current.TotalGames != group[j].Current.TotalGames {
				return group[i].Current.TotalGames > group[j].Current.TotalGames
			}
			return group[i].LastLoginAt.After(group[j].LastLoginAt)
		})
		for _, loser := range group[1:] {
			r.deleteLocked(loser.ID)
			removed++
		}
	}
	return removed
}

// clearAllUsers 删除所有用户。不可逆。返回删除的数量。
func (r *repository) clearAllUsers() int {
	repoMutex.Lock()
	defer repoMutex.Unlock()

	removed := len(r.users)
	for id := range r.users {
		r.removed[id] = struct{}{}
	}
	r.users = make(map[string]*Profile)
	r.dirty = make(map[string]struct{})
	select {
	case r.flushSignal <- struct{}{}:
	default:
	}
	return removed
}

// applyMonthlyReset 对每个用户执行月度重置：
// 把当前赛季统计以label为标签归档（最多保留12个月，最旧的淘汰），
// 然后归零赛季统计（积分恢复初始值），生涯统计不动。
// 单个用户处理失败只记录并跳过，不中断整个遍历。
// 整个遍历持有写锁，与请求侧的变更互不交错。
func (r *repository) applyMonthlyReset(label string, resetAt time.Time) (processed, failed int) {
	repoMutex.Lock()
	defer repoMutex.Unlock()

	for id, p := range r.users {
		err := func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("重置用户时panic: %v", rec)
				}
			}()
			if p == nil {
				return fmt.Errorf("用户记录为空")
			}
			p.Archive = append(p.Archive, MonthlySnapshot{
				PeriodLabel: label,
				Stats:       p.Current,
				ResetAt:     resetAt,
			})
			if len(p.Archive) > maxArchiveMonths {
				p.Archive = p.Archive[len(p.Archive)-maxArchiveMonths:]
			}
			p.Current = zeroStats(r.startingScore)
			p.LastUpdatedAt = resetAt
			r.markDirtyLocked(id)
			return nil
		}()
		if err != nil {
			fmt.Printf("月度重置: 处理用户 %s 失败，已跳过: %v\n", id, err)
			failed++
			continue
		}
		processed++
	}
	return processed, failed
}

// idTail 返回ID的最后n位，用于生成占位用户名
func idTail(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}

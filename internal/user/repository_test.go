package user

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *repository {
	t.Helper()
	return newRepository(100)
}

func TestGetOrCreate(t *testing.T) {
	r := newTestRepo(t)

	p, isNew := r.getOrCreate("pi_user_u1", "Alice")
	require.True(t, isNew)
	assert.Equal(t, "pi_user_u1", p.ID)
	assert.Equal(t, "Alice", p.Username)
	assert.Equal(t, 100, p.Current.Score)
	assert.Equal(t, 0, p.Current.TotalGames)
	assert.Equal(t, float64(0), p.Balance)
	assert.Empty(t, p.GameHistory)
	assert.Empty(t, p.Archive)

	// 重复获取返回原记录，不重建
	p2, isNew := r.getOrCreate("pi_user_u1", "Bob")
	assert.False(t, isNew)
	assert.Equal(t, "Alice", p2.Username, "已有用户的用户名不应被getOrCreate覆盖")

	// 未提供用户名时生成占位名
	p3, isNew := r.getOrCreate("pi_user_u2", "")
	require.True(t, isNew)
	assert.NotEmpty(t, p3.Username)
}

func TestGetUserCopySemantics(t *testing.T) {
	r := newTestRepo(t)
	r.getOrCreate("pi_user_u1", "Alice")

	p, ok := r.getUser("pi_user_u1")
	require.True(t, ok)
	p.Username = "Mallory"
	p.GameHistory = append(p.GameHistory, "g1")

	p2, ok := r.getUser("pi_user_u1")
	require.True(t, ok)
	assert.Equal(t, "Alice", p2.Username, "返回的拷贝被修改不应影响仓库")
	assert.Empty(t, p2.GameHistory)

	_, ok = r.getUser("no_such_user")
	assert.False(t, ok)
}

func TestApplyGameResultFreshUser(t *testing.T) {
	r := newTestRepo(t)

	// 未知用户上报对局时隐式创建
	stats, err := r.applyGameResult("pi_user_u1", "Alice", ResultWin, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalGames)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 0, stats.Losses)
	assert.Equal(t, 0, stats.Draws)
	assert.Equal(t, 100, stats.WinRate)
	assert.Equal(t, 110, stats.Score)

	p, ok := r.getUser("pi_user_u1")
	require.True(t, ok)
	assert.Equal(t, []string{"g1"}, p.GameHistory)
	assert.Equal(t, 1, p.Lifetime.TotalGames)
	assert.Equal(t, 1, p.Lifetime.Wins)
}

func TestApplyGameResultInvalid(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.applyGameResult("pi_user_u1", "Alice", "victory", "g1")
	assert.Error(t, err)
	_, ok := r.getUser("pi_user_u1")
	assert.False(t, ok, "非法结果不应创建用户")
}

func TestApplyGameResultRefreshesUsername(t *testing.T) {
	r := newTestRepo(t)
	r.getOrCreate("pi_user_u1", "Alice")

	_, err := r.applyGameResult("pi_user_u1", "Alicia", ResultDraw, "g1")
	require.NoError(t, err)

	p, _ := r.getUser("pi_user_u1")
	assert.Equal(t, "Alicia", p.Username)
}

func TestUpdateUser(t *testing.T) {
	r := newTestRepo(t)
	r.getOrCreate("pi_user_u1", "Alice")

	wallet := "GABC123"
	newStats := Stats{TotalGames: 4, Wins: 3, Losses: 1, Score: 125}
	p, ok := r.updateUser("pi_user_u1", UpdateFields{
		WalletAddress: &wallet,
		Current:       &newStats,
	})
	require.True(t, ok)
	assert.Equal(t, "GABC123", p.WalletAddress)
	assert.Equal(t, "Alice", p.Username, "未指定的字段不应改变")
	assert.Equal(t, 75, p.Current.WinRate, "替换统计时应重算胜率")

	_, ok = r.updateUser("no_such_user", UpdateFields{WalletAddress: &wallet})
	assert.False(t, ok, "更新不存在的用户不应隐式创建")
	_, ok = r.getUser("no_such_user")
	assert.False(t, ok)
}

func TestAdjustBalance(t *testing.T) {
	r := newTestRepo(t)
	r.getOrCreate("pi_user_u1", "Alice")

	balance, ok := r.adjustBalance("pi_user_u1", 3.14)
	require.True(t, ok)
	assert.InDelta(t, 3.14, balance, 1e-9)

	// 仓库层不钳制负数，充足性检查在payment层
	balance, ok = r.adjustBalance("pi_user_u1", -5)
	require.True(t, ok)
	assert.InDelta(t, -1.86, balance, 1e-9)

	_, ok = r.adjustBalance("no_such_user", 1)
	assert.False(t, ok)
}

func TestDebitBalance(t *testing.T) {
	r := newTestRepo(t)
	r.getOrCreate("pi_user_u1", "Alice")
	r.adjustBalance("pi_user_u1", 5)

	balance, err := r.debitBalance("pi_user_u1", 3)
	require.NoError(t, err)
	assert.InDelta(t, 2, balance, 1e-9)

	// 余额不足时整体拒绝，余额保持不变
	balance, err = r.debitBalance("pi_user_u1", 10)
	assert.Error(t, err)
	assert.InDelta(t, 2, balance, 1e-9)
	p, _ := r.getUser("pi_user_u1")
	assert.InDelta(t, 2, p.Balance, 1e-9)

	_, err = r.debitBalance("no_such_user", 1)
	assert.Error(t, err)
}

func TestDebitBalanceConcurrent(t *testing.T) {
	r := newTestRepo(t)
	r.getOrCreate("pi_user_u1", "Alice")
	r.adjustBalance("pi_user_u1", 5)

	// 并发扣减只允许一笔成功，余额绝不为负
	var wg sync.WaitGroup
	var succeeded int64
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.debitBalance("pi_user_u1", 4); err == nil {
				atomic.AddInt64(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), succeeded)
	p, _ := r.getUser("pi_user_u1")
	assert.InDelta(t, 1, p.Balance, 1e-9)
	assert.GreaterOrEqual(t, p.Balance, float64(0))
}

func TestDeduplicateByUsername(t *testing.T) {
	r := newTestRepo(t)

	// Bob有两个账户：局数多的应当幸存
	r.getOrCreate("pi_user_bob1", "Bob")
	for i := 0; i < 10; i++ {
		_, err := r.applyGameResult("pi_user_bob1", "Bob", ResultWin, "g")
		require.NoError(t, err)
	}
	r.getOrCreate("pi_user_bob2", "Bob")
	_, err := r.applyGameResult("pi_user_bob2", "Bob", ResultWin, "g")
	require.NoError(t, err)

	r.getOrCreate("pi_user_alice", "Alice")

	removed := r.deduplicateByUsername()
	assert.Equal(t, 1, removed)

	survivor, ok := r.getUser("pi_user_bob1")
	require.True(t, ok)
	assert.Equal(t, 10, survivor.Current.TotalGames)
	_, ok = r.getUser("pi_user_bob2")
	assert.False(t, ok)
	_, ok = r.getUser("pi_user_alice")
	assert.True(t, ok, "无重复的用户不应受影响")

	// 幂等：再跑一次不应再删任何人
	assert.Equal(t, 0, r.deduplicateByUsername())
}

func TestDeduplicateTieBreakByLastLogin(t *testing.T) {
	r := newTestRepo(t)
	r.getOrCreate("pi_user_c1", "Carol")
	r.getOrCreate("pi_user_c2", "Carol")

	// 局数相同，登录时间晚者幸存
	later := time.Now().Add(time.Hour)
	r.updateUser("pi_user_c2", UpdateFields{LastLoginAt: &later})

	removed := r.deduplicateByUsername()
	assert.Equal(t, 1, removed)
	_, ok := r.getUser("pi_user_c2")
	assert.True(t, ok)
	_, ok = r.getUser("pi_user_c1")
	assert.False(t, ok)
}

func TestPurgeSynthetic(t *testing.T) {
	r := newTestRepo(t)
	r.getOrCreate("pi_user_real", "Alice")
	r.getOrCreate("test_user_1", "Tester")
	r.getOrCreate("pi_user_bot9", "gomoku_bot")

	removed := r.purgeSynthetic([]string{"test_user_"}, []string{"bot"})
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, r.userCount())
	_, ok := r.getUser("pi_user_real")
	assert.True(t, ok)
}

func TestClearAllUsers(t *testing.T) {
	r := newTestRepo(t)
	r.getOrCreate("pi_user_u1", "Alice")
	r.getOrCreate("pi_user_u2", "Bob")

	assert.Equal(t, 2, r.clearAllUsers())
	assert.Equal(t, 0, r.userCount())

	// 清空后可以重新创建同ID用户
	p, isNew := r.getOrCreate("pi_user_u1", "Alice")
	assert.True(t, isNew)
	assert.Equal(t, 0, p.Current.TotalGames)
}

func TestApplyMonthlyReset(t *testing.T) {
	r := newTestRepo(t)
	for i := 0; i < 3; i++ {
		_, err := r.applyGameResult("pi_user_u1", "Alice", ResultWin, "g")
		require.NoError(t, err)
	}
	_, err := r.applyGameResult("pi_user_u1", "Alice", ResultLoss, "g")
	require.NoError(t, err)

	before, _ := r.getUser("pi_user_u1")
	resetAt := time.Now()
	processed, failed := r.applyMonthlyReset("2025-08", resetAt)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 0, failed)

	after, ok := r.getUser("pi_user_u1")
	require.True(t, ok)

	// 赛季统计归零，积分恢复初始值
	assert.Equal(t, 0, after.Current.TotalGames)
	assert.Equal(t, 100, after.Current.Score)
	// 生涯统计不受影响
	assert.Equal(t, before.Lifetime, after.Lifetime)
	// 重置前的赛季统计完整归档
	require.Len(t, after.Archive, 1)
	assert.Equal(t, "2025-08", after.Archive[0].PeriodLabel)
	assert.Equal(t, before.Current, after.Archive[0].Stats)
}

func TestApplyMonthlyResetArchiveTrim(t *testing.T) {
	r := newTestRepo(t)
	r.getOrCreate("pi_user_u1", "Alice")

	for i := 0; i < 15; i++ {
		r.applyMonthlyReset("2024-01", time.Now())
	}

	p, _ := r.getUser("pi_user_u1")
	assert.Len(t, p.Archive, maxArchiveMonths, "归档不应超过保留上限")
}

func TestCollectAndRestorePendingChanges(t *testing.T) {
	InitializeRepository(100)
	GetOrCreateUser("pi_user_u1", "Alice")
	GetOrCreateUser("pi_user_u2", "Bob")
	ClearAllUsers()
	GetOrCreateUser("pi_user_u3", "Carol")

	changes := CollectPendingChanges()
	assert.Len(t, changes.Upserts, 1)
	assert.Equal(t, "pi_user_u3", changes.Upserts[0].ID)
	assert.ElementsMatch(t, []string{"pi_user_u1", "pi_user_u2"}, changes.RemovedIDs)

	// 取走后增量应为空
	emptied := CollectPendingChanges()
	assert.True(t, emptied.Empty())

	// 失败归还后能再次取到同样的增量
	RestorePendingChanges(changes)
	again := CollectPendingChanges()
	assert.Len(t, again.Upserts, 1)
	assert.ElementsMatch(t, changes.RemovedIDs, again.RemovedIDs)
}

package leaderboard

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeProfile(id, username string, wins, losses, draws int) user.Profile {
	total := wins + losses + draws
	winRate := 0
	if total > 0 {
		winRate = (wins*200 + total) / (2 * total)
	}
	return user.Profile{
		ID:       id,
		Username: username,
		Current: user.Stats{
			TotalGames: total,
			Wins:       wins,
			Losses:     losses,
			Draws:      draws,
			WinRate:    winRate,
			Score:      100,
		},
		LastLoginAt: time.Now(),
	}
}

var testFilter = Filter{
	RealUserPrefix:    "pi_user_",
	UsernameBlocklist: []string{"test", "bot"},
}

func TestBuildLeaderboardOrdering(t *testing.T) {
	profiles := []user.Profile{
		makeProfile("pi_user_a", "a", 3, 2, 0), // 胜率60
		makeProfile("pi_user_b", "b", 3, 1, 0), // 胜率75
		makeProfile("pi_user_c", "c", 0, 0, 0), // 没有对局
	}

	entries := BuildLeaderboard(profiles, testFilter, 10)
	require.Len(t, entries, 3)

	assert.Equal(t, "pi_user_b", entries[0].ID)
	assert.Equal(t, 75, entries[0].WinRate)
	assert.Equal(t, 1, entries[0].Rank)

	assert.Equal(t, "pi_user_a", entries[1].ID)
	assert.Equal(t, 60, entries[1].WinRate)
	assert.Equal(t, 2, entries[1].Rank)

	// 零局用户照样上榜，排在最后
	assert.Equal(t, "pi_user_c", entries[2].ID)
	assert.Equal(t, 0, entries[2].WinRate)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestBuildLeaderboardTieBreakers(t *testing.T) {
	profiles := []user.Profile{
		// 胜率都是50：胜场多者在前
		makeProfile("pi_user_x", "x", 2, 2, 0),
		makeProfile("pi_user_y", "y", 4, 4, 0),
		// 胜率和胜场都是0：总局数多者在前
		makeProfile("pi_user_v", "v", 0, 5, 0),
		makeProfile("pi_user_w", "w", 0, 2, 0),
	}

	entries := BuildLeaderboard(profiles, testFilter, 10)
	require.Len(t, entries, 4)
	assert.Equal(t, "pi_user_y", entries[0].ID, "同胜率时胜场多者在前")
	assert.Equal(t, "pi_user_x", entries[1].ID)
	assert.Equal(t, "pi_user_v", entries[2].ID, "同胜率同胜场时总局数多者在前")
	assert.Equal(t, "pi_user_w", entries[3].ID)
}

func TestBuildLeaderboardDeterministic(t *testing.T) {
	// 完全相同的战绩只能靠ID定序
	profiles := []user.Profile{
		makeProfile("pi_user_b", "beta", 1, 1, 0),
		makeProfile("pi_user_a", "alpha", 1, 1, 0),
	}

	for i := 0; i < 5; i++ {
		entries := BuildLeaderboard(profiles, testFilter, 10)
		require.Len(t, entries, 2)
		assert.Equal(t, "pi_user_a", entries[0].ID)
		assert.Equal(t, "pi_user_b", entries[1].ID)
	}
}

func TestBuildLeaderboardEligibility(t *testing.T) {
	profiles := []user.Profile{
		makeProfile("pi_user_a", "Alice", 5, 0, 0),
		makeProfile("demo_user_1", "Demo", 9, 0, 0),     // 前缀不符
		makeProfile("pi_user_t", "best_tester", 9, 0, 0), // 用户名命中黑名单
	}

	entries := BuildLeaderboard(profiles, testFilter, 10)
	require.Len(t, entries, 1)
	assert.Equal(t, "pi_user_a", entries[0].ID)
}

func TestBuildLeaderboardSharedUsername(t *testing.T) {
	// 尚未被清理任务合并的同名账户各自独立上榜，排名路径不做合并
	older := makeProfile("pi_user_old", "Alice", 9, 0, 0)
	older.LastLoginAt = time.Now().Add(-time.Hour)
	newer := makeProfile("pi_user_new", "Alice", 1, 0, 0)

	profiles := []user.Profile{older, newer}
	entries := BuildLeaderboard(profiles, testFilter, 10)
	require.Len(t, entries, 2)
	assert.Equal(t, "pi_user_old", entries[0].ID)
	assert.Equal(t, "pi_user_new", entries[1].ID)

	// 两个同名账户都有名次
	assert.Equal(t, 1, ComputeRank(profiles, testFilter, "pi_user_old"))
	assert.Equal(t, 2, ComputeRank(profiles, testFilter, "pi_user_new"))
}

func TestBuildLeaderboardDuplicateIDDedup(t *testing.T) {
	// 同一ID在输入中出现多份时只保留最近登录的那份
	stale := makeProfile("pi_user_a", "Alice", 9, 0, 0)
	stale.LastLoginAt = time.Now().Add(-time.Hour)
	fresh := makeProfile("pi_user_a", "Alice", 1, 1, 0)

	entries := BuildLeaderboard([]user.Profile{stale, fresh}, testFilter, 10)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].TotalGames, "应保留最近登录的那份数据")
}

func TestBuildLeaderboardLimit(t *testing.T) {
	var profiles []user.Profile
	for i := 0; i < 20; i++ {
		profiles = append(profiles, makeProfile(fmt.Sprintf("pi_user_%02d", i), fmt.Sprintf("u%02d", i), i, 20-i, 0))
	}

	entries := BuildLeaderboard(profiles, testFilter, 5)
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
	// 榜单按胜率不增排列
	assert.True(t, sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].WinRate > entries[j].WinRate
	}) || entries[0].WinRate >= entries[len(entries)-1].WinRate)
}

func TestComputeRank(t *testing.T) {
	profiles := []user.Profile{
		makeProfile("pi_user_a", "a", 3, 2, 0),
		makeProfile("pi_user_b", "b", 3, 1, 0),
		makeProfile("pi_user_c", "c", 0, 0, 0),
		makeProfile("test_user_1", "tester", 9, 0, 0),
	}

	assert.Equal(t, 1, ComputeRank(profiles, testFilter, "pi_user_b"))
	assert.Equal(t, 2, ComputeRank(profiles, testFilter, "pi_user_a"))
	assert.Equal(t, 3, ComputeRank(profiles, testFilter, "pi_user_c"))
	// 无资格或不存在的用户名次为0
	assert.Equal(t, 0, ComputeRank(profiles, testFilter, "test_user_1"))
	assert.Equal(t, 0, ComputeRank(profiles, testFilter, "no_such_user"))
}

func TestComputeRankBeyondDisplayLimit(t *testing.T) {
	var profiles []user.Profile
	for i := 0; i < 150; i++ {
		profiles = append(profiles, makeProfile(fmt.Sprintf("pi_user_%03d", i), fmt.Sprintf("u%03d", i), 150-i, i, 0))
	}

	// 名次基于完整榜单，不受展示截断影响
	assert.Equal(t, 150, ComputeRank(profiles, testFilter, "pi_user_149"))
}
